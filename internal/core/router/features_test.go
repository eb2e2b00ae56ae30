package router

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	"github.com/mohammed-shakir/geomcore/internal/cache/parsecache"
	"github.com/mohammed-shakir/geomcore/internal/cache/redisstore"
	"github.com/mohammed-shakir/geomcore/internal/core/model"
	h3mapper "github.com/mohammed-shakir/geomcore/internal/mapper/h3"
)

func newFeatureRouter(t *testing.T) http.Handler {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cli, err := redisstore.New(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })

	pc, err := parsecache.New(32)
	if err != nil {
		t.Fatal(err)
	}
	cover := h3mapper.New()
	store := featurestore.New(cli, cover, 8, featurestore.WithParseCache(pc))

	r := chi.NewRouter()
	New(testConfig(), slog.New(slog.DiscardHandler), pc, cover, store).Mount(r)
	return r
}

func TestFeatures_Lifecycle(t *testing.T) {
	h := newFeatureRouter(t)

	rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/r-1", "LINESTRING (18.0 59.3, 18.1 59.4)")
	if rr.Code != http.StatusOK {
		t.Fatalf("put status=%d body=%s", rr.Code, rr.Body.String())
	}
	var f model.Feature
	decodeInto(t, rr, &f)
	if f.Version != 1 || f.EWKT != "SRID=4326;LINESTRING (18.0 59.3, 18.1 59.4)" || f.Bounds == nil {
		t.Fatalf("put feature=%+v", f)
	}

	if rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/p-1", "SRID=4326;POINT (30.0 10.0)"); rr.Code != http.StatusOK {
		t.Fatalf("put p-1 status=%d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/v1/layers/roads/features/r-1", "")
	decodeInto(t, rr, &f)
	if rr.Code != http.StatusOK || f.ID != "r-1" || f.Layer != "roads" {
		t.Fatalf("get status=%d feature=%+v", rr.Code, f)
	}

	rr = do(t, h, http.MethodGet, "/v1/layers/roads/features?bbox=17.9,59.2,18.2,59.5", "")
	var fc model.FeatureCollection
	decodeInto(t, rr, &fc)
	if rr.Code != http.StatusOK || len(fc.Features) != 1 || fc.Features[0].ID != "r-1" {
		t.Fatalf("query status=%d fc=%+v", rr.Code, fc)
	}

	if rr := do(t, h, http.MethodDelete, "/v1/layers/roads/features/r-1", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/layers/roads/features/r-1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status=%d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/v1/layers/roads/features/r-1", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func TestFeatures_Versioning(t *testing.T) {
	h := newFeatureRouter(t)

	if rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/a?version=5", "POINT (1 1)"); rr.Code != http.StatusOK {
		t.Fatalf("put v5 status=%d", rr.Code)
	}
	if rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/a?version=5", "POINT (2 2)"); rr.Code != http.StatusConflict {
		t.Fatalf("replayed version status=%d want 409", rr.Code)
	}
	rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/a", "POINT (2 2)")
	var f model.Feature
	decodeInto(t, rr, &f)
	if f.Version != 6 {
		t.Fatalf("implicit version=%d want 6", f.Version)
	}
	if rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/a?version=-1", "POINT (2 2)"); rr.Code != http.StatusBadRequest {
		t.Fatalf("negative version status=%d want 400", rr.Code)
	}
}

func TestFeatures_PutAcceptsRepeatedVertices(t *testing.T) {
	h := newFeatureRouter(t)
	for id, body := range map[string]string{
		"square": "POLYGON ((18 59, 18.1 59, 18.1 59, 18.1 59.1, 18 59.1, 18 59))",
		"loop":   "LINESTRING (18 59, 18.1 59, 18.1 59.1, 18 59)",
	} {
		if rr := do(t, h, http.MethodPut, "/v1/layers/roads/features/"+id, body); rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d want 200 (%s)", id, rr.Code, rr.Body.String())
		}
	}
}

func TestFeatures_BadRequests(t *testing.T) {
	h := newFeatureRouter(t)
	cases := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodPut, "/v1/layers/roads/features/a", "POINT (1 1", http.StatusBadRequest},
		{http.MethodPut, "/v1/layers/roads/features/a", "", http.StatusBadRequest},
		{http.MethodPut, "/v1/layers/roads/features/a", "LINESTRING (1 1)", http.StatusBadRequest},
		{http.MethodPut, "/v1/layers/bad:layer/features/a", "POINT (1 1)", http.StatusBadRequest},
		{http.MethodGet, "/v1/layers/roads/features", "", http.StatusBadRequest},
		{http.MethodGet, "/v1/layers/roads/features?bbox=1,2,3", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rr := do(t, h, tc.method, tc.target, tc.body); rr.Code != tc.want {
			t.Fatalf("%s %s: status=%d want %d (%s)", tc.method, tc.target, rr.Code, tc.want, rr.Body.String())
		}
	}
}
