// Command feature-producer publishes feature change events read from stdin.
//
// Each input line is "<layer> <id> <EWKT>" for an upsert or
// "<layer> <id> DELETE" for a removal. Blank lines and lines starting with
// '#' are ignored.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/geomcore/internal/ingest"
	"github.com/mohammed-shakir/geomcore/internal/logger"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	brokers := flag.String("brokers", getenv("KAFKA_BROKERS", "localhost:9092"), "comma separated broker list")
	topic := flag.String("topic", getenv("KAFKA_TOPIC", "feature-changes"), "topic to publish to")
	flag.Parse()

	zl := logger.Build(logger.Config{Level: getenv("LOG_LEVEL", "info"), Console: true, Service: "feature-producer"}, os.Stderr)
	log := logger.NewSlog(&zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	prod, err := sarama.NewSyncProducer(strings.Split(*brokers, ","), cfg)
	if err != nil {
		log.Error("producer create", "err", err)
		os.Exit(1)
	}
	defer func() { _ = prod.Close() }()

	n, err := publish(ctx, prod, *topic, os.Stdin, time.Now, log)
	if err != nil {
		log.Error("publish stopped", "sent", n, "err", err)
		os.Exit(1)
	}
	log.Info("done", "sent", n)
}

// publish sends one event per input line. Versions start at the current
// Unix millisecond and increase per line, so reruns supersede earlier runs.
func publish(ctx context.Context, p sarama.SyncProducer, topic string, r io.Reader, now func() time.Time, log *slog.Logger) (int, error) {
	version := now().UnixMilli()
	sent := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 16<<20)
	for lineNo := 1; sc.Scan(); lineNo++ {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := parseLine(line, version, now().UTC())
		if err != nil {
			return sent, fmt.Errorf("line %d: %w", lineNo, err)
		}
		body, err := json.Marshal(ev)
		if err != nil {
			return sent, fmt.Errorf("line %d: encode: %w", lineNo, err)
		}
		part, off, err := p.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(ev.Key()),
			Value: sarama.ByteEncoder(body),
		})
		if err != nil {
			return sent, fmt.Errorf("line %d: send: %w", lineNo, err)
		}
		log.Debug("event sent", "op", ev.Op, "layer", ev.Layer, "feature_id", ev.FeatureID,
			"version", ev.Version, "partition", part, "offset", off)
		sent++
		version++
	}
	if err := sc.Err(); err != nil {
		return sent, fmt.Errorf("read input: %w", err)
	}
	return sent, nil
}

func parseLine(line string, version int64, ts time.Time) (ingest.Event, error) {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) != 3 {
		return ingest.Event{}, fmt.Errorf("want \"<layer> <id> <EWKT|DELETE>\", got %q", line)
	}
	ev := ingest.Event{
		Version:   version,
		Op:        ingest.OpUpdate,
		Layer:     fields[0],
		FeatureID: fields[1],
		TS:        ts,
		EWKT:      strings.TrimSpace(fields[2]),
	}
	if strings.EqualFold(ev.EWKT, "DELETE") {
		ev.Op = ingest.OpDelete
		ev.EWKT = ""
	}
	if err := ev.Validate(); err != nil {
		return ingest.Event{}, err
	}
	return ev, nil
}
