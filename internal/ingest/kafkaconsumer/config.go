package kafkaconsumer

import (
	"time"

	"github.com/mohammed-shakir/geomcore/internal/core/config"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	DedupeSize          int
}

// FromIngest fills the group timeouts the service does not expose as
// settings.
func FromIngest(c config.IngestCfg) Config {
	return Config{
		Brokers:             c.Brokers,
		Topic:               c.Topic,
		GroupID:             c.GroupID,
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		InitialOffsetOldest: true,
		DedupeSize:          c.DedupeSize,
	}
}
