package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type IngestCfg struct {
	Enabled    bool
	Brokers    []string
	Topic      string
	GroupID    string
	DedupeSize int
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	LogSampleN     int
	RedisAddr      string
	RedisOpTimeout time.Duration
	FeatureTTL     time.Duration
	FeatureTTLOvr  map[string]time.Duration
	H3Res          int
	H3MaxCells     int
	ParseCacheSize int
	DefaultSRID    int
	MaxBodyBytes   int64
	Ingest         IngestCfg
	Metrics        MetricsCfg
}

func FromEnv() Config {
	res := getint("H3_RES", 8)
	if res < 0 || res > 15 {
		res = 8
	}

	return Config{
		Addr:           getenv("ADDR", ":8090"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogConsole:     getbool("LOG_CONSOLE", false),
		LogSampleN:     getint("LOG_SAMPLE_N", 0),
		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		RedisOpTimeout: getduration("REDIS_OP_TIMEOUT", 250*time.Millisecond),
		FeatureTTL:     getduration("FEATURE_TTL", 0),
		FeatureTTLOvr:  parseDurationMap(getenv("FEATURE_TTL_OVERRIDES", "")),
		H3Res:          res,
		H3MaxCells:     getint("H3_MAX_CELLS", 50_000),
		ParseCacheSize: getint("PARSE_CACHE_SIZE", 1024),
		DefaultSRID:    getint("DEFAULT_SRID", 4326),
		MaxBodyBytes:   int64(getint("MAX_BODY_BYTES", 4<<20)),
		Ingest: IngestCfg{
			Enabled:    getbool("INGEST_ENABLED", false),
			Brokers:    splitCSV(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:      getenv("KAFKA_TOPIC", "feature-changes"),
			GroupID:    getenv("KAFKA_GROUP_ID", "geomd-ingest"),
			DedupeSize: getint("INGEST_DEDUPE_SIZE", 8192),
		},
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

// TTLFor returns the feature TTL for layer; zero means no expiry.
func (c Config) TTLFor(layer string) time.Duration {
	if d, ok := c.FeatureTTLOvr[layer]; ok {
		return d
	}
	return c.FeatureTTL
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}

// parse "layer=5m,other=30s" into map
func parseDurationMap(s string) map[string]time.Duration {
	out := map[string]time.Duration{}
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			out[k] = d
		}
	}
	return out
}
