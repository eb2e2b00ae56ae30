package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var m map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestSlogBridge_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Service: "geomd"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithFeature(ctx, "roads", "r-1")
	ctx = WithOperation(ctx, "feature_put")
	log.With("attempt", 2).WarnContext(ctx, "store slow", "err", errors.New("timeout"))

	m := lastLine(t, &buf)
	want := map[string]any{
		"level":      "warn",
		"msg":        "store slow",
		"service":    "geomd",
		"request_id": "req-1",
		"layer":      "roads",
		"feature_id": "r-1",
		"operation":  "feature_put",
		"err":        "timeout",
		"attempt":    float64(2),
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s=%v want %v (line %v)", k, m[k], v, m)
		}
	}
	if _, ok := m["timestamp"]; !ok {
		t.Fatalf("missing timestamp: %v", m)
	}
}

func TestSlogBridge_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	log := NewSlog(&zl)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
	log.Error("kept")
	if m := lastLine(t, &buf); m["msg"] != "kept" {
		t.Fatalf("line=%v", m)
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if id := RequestID(ctx); len(id) != 16 {
		t.Fatalf("generated id %q", id)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zerolog.Level{
		"DEBUG": zerolog.DebugLevel,
		" warn": zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.InfoLevel,
	} {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
}
