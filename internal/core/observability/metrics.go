// Package observability owns the service's Prometheus instruments. Init
// binds them to a registry; until then every helper is a no-op.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metricSet struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	geomOpsTotal    *prometheus.CounterVec
	geomOpDuration  *prometheus.HistogramVec
	wktParseErrors  *prometheus.CounterVec
	parseCacheTotal *prometheus.CounterVec

	redisOpDuration *prometheus.HistogramVec
	storeHits       prometheus.Counter
	storeMisses     prometheus.Counter
	storeCells      prometheus.Histogram

	ingestEvents     *prometheus.CounterVec
	kafkaErrors      *prometheus.CounterVec
	ingestLag        prometheus.Gauge
	layerUpdatedAtTS *prometheus.GaugeVec
}

var current atomic.Pointer[metricSet]

func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		current.Store(nil)
		return
	}
	f := promauto.With(reg)
	ms := &metricSet{
		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"method", "route", "status"}),

		geomOpsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "geometry_operations_total",
			Help: "Geometry operations by name, input kind and outcome.",
		}, []string{"op", "kind", "outcome"}),
		geomOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geometry_operation_duration_seconds",
			Help:    "Latency of geometry operations.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		wktParseErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wkt_parse_errors_total",
			Help: "Rejected WKT/EWKT inputs by source.",
		}, []string{"source"}),
		parseCacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wkt_parse_cache_results_total",
			Help: "Parsed-geometry cache lookups by outcome.",
		}, []string{"outcome"}),

		redisOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation latency.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op", "outcome"}),
		storeHits: f.NewCounter(prometheus.CounterOpts{
			Name: "feature_store_hits_total",
			Help: "Feature records found in the store.",
		}),
		storeMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "feature_store_misses_total",
			Help: "Feature lookups that found nothing.",
		}),
		storeCells: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "feature_store_query_cells",
			Help:    "H3 cells touched per bbox query.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),

		ingestEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_events_total",
			Help: "Feature change events by op and outcome.",
		}, []string{"op", "outcome"}),
		kafkaErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kafka_consumer_errors_total",
			Help: "Kafka consumer errors by kind.",
		}, []string{"kind"}),
		ingestLag: f.NewGauge(prometheus.GaugeOpts{
			Name: "ingest_lag_seconds",
			Help: "Seconds between event timestamp and application of the last event.",
		}),
		layerUpdatedAtTS: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "layer_updated_at_seconds",
			Help: "Unix time of the last applied change per layer.",
		}, []string{"layer"}),
	}
	current.Store(ms)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	ms := current.Load()
	if ms == nil {
		return
	}
	st := strconv.Itoa(status)
	ms.httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	ms.httpRequestDuration.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveGeometryOp(op, kind string, err error, durationSeconds float64) {
	ms := current.Load()
	if ms == nil {
		return
	}
	ms.geomOpsTotal.WithLabelValues(op, kind, outcome(err)).Inc()
	ms.geomOpDuration.WithLabelValues(op).Observe(durationSeconds)
}

func IncWKTParseError(source string) {
	if ms := current.Load(); ms != nil {
		ms.wktParseErrors.WithLabelValues(source).Inc()
	}
}

func IncParseCache(hit bool) {
	ms := current.Load()
	if ms == nil {
		return
	}
	if hit {
		ms.parseCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	ms.parseCacheTotal.WithLabelValues("miss").Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	if ms := current.Load(); ms != nil {
		ms.redisOpDuration.WithLabelValues(op, outcome(err)).Observe(durationSeconds)
	}
}

func AddCacheHits(n int) {
	if ms := current.Load(); ms != nil && n > 0 {
		ms.storeHits.Add(float64(n))
	}
}

func AddCacheMisses(n int) {
	if ms := current.Load(); ms != nil && n > 0 {
		ms.storeMisses.Add(float64(n))
	}
}

func ObserveQueryCells(n int) {
	if ms := current.Load(); ms != nil {
		ms.storeCells.Observe(float64(n))
	}
}

func IncIngestEvent(op, result string) {
	if ms := current.Load(); ms != nil {
		ms.ingestEvents.WithLabelValues(op, result).Inc()
	}
}

func IncKafkaConsumerError(kind string) {
	if ms := current.Load(); ms != nil {
		ms.kafkaErrors.WithLabelValues(kind).Inc()
	}
}

func SetIngestLagSeconds(v float64) {
	if ms := current.Load(); ms != nil {
		ms.ingestLag.Set(v)
	}
}

func SetLayerUpdatedAt(layer string, unixSeconds float64) {
	if ms := current.Load(); ms != nil {
		ms.layerUpdatedAtTS.WithLabelValues(layer).Set(unixSeconds)
	}
}
