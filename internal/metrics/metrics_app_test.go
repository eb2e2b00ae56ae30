package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mohammed-shakir/geomcore/internal/core/observability"
)

func assertHasMetricLine(t *testing.T, body, metric string, wantLabels ...string) {
	t.Helper()
	for ln := range strings.SplitSeq(body, "\n") {
		if !strings.HasPrefix(ln, metric+"{") {
			continue
		}
		ok := true
		for _, s := range wantLabels {
			if !strings.Contains(ln, s) {
				ok = false
				break
			}
		}
		if ok && (len(ln) > 0 && ln[len(ln)-1] >= '0' && ln[len(ln)-1] <= '9') {
			return
		}
	}
	t.Fatalf("expected a %s line with labels %v; got:\n%s", metric, wantLabels, body)
}

func Test_AppMetrics_CustomRegistry_Smoke(t *testing.T) {
	p := Init(Config{Build: BuildInfo{Version: "test"}})
	observability.Init(p.Registerer(), true)
	t.Cleanup(func() { observability.Init(nil, false) })

	start := time.Now()
	observability.ObserveGeometryOp("centroid", "MultiPolygon", nil, time.Since(start).Seconds())
	observability.ObserveGeometryOp("parse", "", errors.New("bad"), 0.001)

	observability.AddCacheHits(3)
	observability.AddCacheMisses(1)
	observability.ObserveCacheOp("mget", nil, 0.002)
	observability.IncKafkaConsumerError("decode")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	p.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	mustContain := []string{
		`geometry_operation_duration_seconds_bucket`,
		`redis_operation_duration_seconds_count`,
		`feature_store_hits_total 3`,
		`feature_store_misses_total 1`,
		`kafka_consumer_errors_total{kind="decode"} 1`,
	}
	for _, s := range mustContain {
		if !strings.Contains(body, s) {
			t.Fatalf("expected metrics to contain %q;\n---\n%s", s, body)
		}
	}

	assertHasMetricLine(t, body, "geometry_operations_total",
		`op="centroid"`, `kind="MultiPolygon"`, `outcome="ok"`)
	assertHasMetricLine(t, body, "geometry_operations_total",
		`op="parse"`, `outcome="error"`)
	assertHasMetricLine(t, body, "app_build_info",
		`version="test"`)
}
