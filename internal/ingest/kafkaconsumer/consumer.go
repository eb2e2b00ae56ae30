// Package kafkaconsumer applies feature change events from Kafka to the
// feature store.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	obs "github.com/mohammed-shakir/geomcore/internal/core/observability"
	"github.com/mohammed-shakir/geomcore/internal/ingest"
	mylog "github.com/mohammed-shakir/geomcore/internal/logger"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

// Store is the part of the feature store the consumer writes to.
type Store interface {
	Put(ctx context.Context, layer, id string, g geometry.Geometry, version int64) (featurestore.Record, error)
	Delete(ctx context.Context, layer, id string) error
}

type Consumer struct {
	cfg      Config
	logger   *slog.Logger
	store    Store
	parser   ingest.Parser
	ver      *versionDedupe
	now      func() time.Time
	assigned atomic.Bool
	assignMu sync.RWMutex
	assign   map[int32]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

func New(cfg Config, logger *slog.Logger, store Store, parser ingest.Parser) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		store:  store,
		parser: parser,
		ver:    newVersionDedupe(cfg.DedupeSize),
		now:    time.Now,
		assign: map[int32]struct{}{},
	}
}

// Start joins the consumer group and consumes in the background until ctx
// is cancelled or Stop is called.
func (c *Consumer) Start(ctx context.Context) error {
	if c.store == nil || c.parser == nil {
		return errors.New("kafkaconsumer: missing dependencies (store/parser)")
	}
	if len(c.cfg.Brokers) == 0 || c.cfg.Topic == "" {
		return errors.New("kafkaconsumer: brokers and topic are required")
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		cancel()
		return fmt.Errorf("create consumer group: %w", err)
	}

	h := c.handler()
	ctx = mylog.WithComponent(ctx, "ingest")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if err := group.Close(); err != nil {
				c.logger.ErrorContext(ctx, "kafka consumer group close", "err", err)
			}
		}()
		for {
			if err := group.Consume(ctx, []string{c.cfg.Topic}, h); err != nil {
				obs.IncKafkaConsumerError("consume")
				c.logger.ErrorContext(ctx, "kafka consume error", "err", err)
				select {
				case <-time.After(2 * time.Second):
				case <-ctx.Done():
					return
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range group.Errors() {
			obs.IncKafkaConsumerError("group")
			c.logger.ErrorContext(ctx, "kafka group error", "err", err)
		}
	}()

	c.logger.InfoContext(ctx, "feature ingest consumer started",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)
	return nil
}

func (c *Consumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.logger.Info("feature ingest consumer stopped")
}

// Readiness reports whether the group currently owns partitions.
func (c *Consumer) Readiness() (ready bool, partitions []int32) {
	if !c.assigned.Load() {
		return false, nil
	}
	c.assignMu.RLock()
	defer c.assignMu.RUnlock()
	for p := range c.assign {
		partitions = append(partitions, p)
	}
	return true, partitions
}

func (c *Consumer) handler() *groupHandler {
	return &groupHandler{
		setup: func(sess sarama.ConsumerGroupSession) {
			c.assignMu.Lock()
			defer c.assignMu.Unlock()
			c.assigned.Store(true)
			c.assign = map[int32]struct{}{}
			for _, parts := range sess.Claims() {
				for _, p := range parts {
					c.assign[p] = struct{}{}
				}
			}
		},
		cleanup: func(sarama.ConsumerGroupSession) {
			c.assignMu.Lock()
			defer c.assignMu.Unlock()
			c.assigned.Store(false)
			c.assign = map[int32]struct{}{}
		},
		process: c.ProcessOne,
	}
}

// ProcessOne applies a single message. Messages that can never succeed
// (undecodable, invalid, malformed geometry) are logged, counted and
// skipped; store failures are returned so the message is retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev ingest.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.logger.WarnContext(ctx, "dropping undecodable event",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil
	}
	if err := ev.Validate(); err != nil {
		obs.IncIngestEvent(opLabel(ev.Op), "invalid")
		c.logger.WarnContext(ctx, "dropping invalid event",
			"offset", msg.Offset, "err", err)
		return nil
	}

	ctx = mylog.WithOperation(mylog.WithFeature(ctx, ev.Layer, ev.FeatureID), "ingest_"+ev.Op)
	c.observeLag(ev, msg)

	if c.ver.seen(ev.Key(), ev.Version) {
		obs.IncIngestEvent(ev.Op, "skipped")
		c.logger.DebugContext(ctx, "skipping already applied version", "version", ev.Version)
		return nil
	}

	result, err := c.apply(ctx, ev)
	if err != nil {
		obs.IncIngestEvent(ev.Op, "error")
		c.logger.ErrorContext(ctx, "apply feature event",
			"version", ev.Version, "offset", msg.Offset, "err", err)
		return err
	}
	c.ver.record(ev.Key(), ev.Version)
	obs.IncIngestEvent(ev.Op, result)
	c.logger.DebugContext(ctx, "feature event handled", "version", ev.Version, "result", result)
	return nil
}

// apply returns the outcome label for the event.
func (c *Consumer) apply(ctx context.Context, ev ingest.Event) (string, error) {
	if ev.Op == ingest.OpDelete {
		err := c.store.Delete(ctx, ev.Layer, ev.FeatureID)
		switch {
		case errors.Is(err, featurestore.ErrNotFound):
			return "skipped", nil
		case err != nil:
			return "", fmt.Errorf("delete: %w", err)
		}
		return "applied", nil
	}

	g, err := ev.Geometry(c.parser)
	if err != nil {
		if errors.Is(err, wkt.ErrMalformed) {
			obs.IncWKTParseError("ingest")
		}
		c.logger.WarnContext(ctx, "dropping event with unusable geometry", "err", err)
		return "invalid", nil
	}
	_, err = c.store.Put(ctx, ev.Layer, ev.FeatureID, g, ev.Version)
	switch {
	case errors.Is(err, featurestore.ErrStale):
		return "skipped", nil
	case err != nil:
		return "", fmt.Errorf("put: %w", err)
	}
	return "applied", nil
}

func (c *Consumer) observeLag(ev ingest.Event, msg *sarama.ConsumerMessage) {
	ts := ev.TS
	if !msg.Timestamp.IsZero() {
		ts = msg.Timestamp
	}
	obs.SetIngestLagSeconds(c.now().Sub(ts).Seconds())
}

func opLabel(op string) string {
	switch op {
	case ingest.OpInsert, ingest.OpUpdate, ingest.OpDelete:
		return op
	default:
		return "unknown"
	}
}
