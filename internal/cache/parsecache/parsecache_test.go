package parsecache

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

func TestParse_HitsAfterFirstParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	observability.Init(reg, true)
	t.Cleanup(func() { observability.Init(nil, false) })

	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const text = "SRID=4326;POINT (18.07 59.33)"
	g1, err := c.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	g2, err := c.Parse(text)
	if err != nil {
		t.Fatalf("Parse again: %v", err)
	}
	if g1.Kind() != geometry.KindPoint || g2.Base().SRID != 4326 {
		t.Fatalf("unexpected geometry %#v", g2)
	}
	if c.Len() != 1 {
		t.Fatalf("Len=%d want 1", c.Len())
	}

	n, err := testutil.GatherAndCount(reg, "wkt_parse_cache_results_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected hit and miss series, got %d", n)
	}
}

func TestParse_ErrorsNotCached(t *testing.T) {
	c, err := New(4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for range 2 {
		if _, err := c.Parse("POINT (1)"); !errors.Is(err, wkt.ErrMalformed) {
			t.Fatalf("err=%v want ErrMalformed", err)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("malformed input was cached")
	}
}

func TestParse_EvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, s := range []string{"POINT (1 1)", "POINT (2 2)", "POINT (3 3)"} {
		if _, err := c.Parse(s); err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("Len=%d want 2", c.Len())
	}
}

func TestDisabledAndNil(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New(0): %v", err)
	}
	if _, err := c.Parse("LINESTRING (0 0, 1 1)"); err != nil {
		t.Fatalf("Parse with disabled cache: %v", err)
	}
	var nilCache *Cache
	if _, err := nilCache.Parse("POINT EMPTY"); err != nil {
		t.Fatalf("Parse on nil cache: %v", err)
	}
	if c.Len() != 0 || nilCache.Len() != 0 {
		t.Fatalf("disabled caches must stay empty")
	}
}
