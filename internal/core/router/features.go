package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	mylog "github.com/mohammed-shakir/geomcore/internal/logger"
	"github.com/mohammed-shakir/geomcore/pkg/geomfn"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

func featureCtx(r *http.Request, op string) (context.Context, string, string) {
	layer := chi.URLParam(r, "layer")
	id := chi.URLParam(r, "id")
	ctx := mylog.WithOperation(mylog.WithFeature(r.Context(), layer, id), op)
	return ctx, layer, id
}

// putFeature stores the EWKT request body. Text without an SRID takes the
// configured default. An optional ?version= must exceed the stored version.
func (h *Handlers) putFeature(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, layer, id := featureCtx(r, "feature_put")

	rec, g, err := func() (featurestore.Record, geometry.Geometry, error) {
		var version int64
		if v := r.URL.Query().Get("version"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n <= 0 {
				return featurestore.Record{}, nil, fmt.Errorf("%w: version must be a positive integer", ErrBadRequest)
			}
			version = n
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return featurestore.Record{}, nil, err
		}
		g, err := h.parse("body", strings.TrimSpace(string(body)), nil)
		if err != nil {
			return featurestore.Record{}, nil, err
		}
		if g.Base().SRID == 0 {
			g = geometry.WithSRID(g, h.cfg.DefaultSRID)
		}
		if !geomfn.IsValid(g) {
			return featurestore.Record{}, g, fmt.Errorf("%w: %s is not valid", ErrBadRequest, g.Kind())
		}
		rec, err := h.features.Put(ctx, layer, id, g, version)
		return rec, g, err
	}()
	observability.ObserveGeometryOp("feature_put", kindOf(g), err, time.Since(start).Seconds())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "feature stored", "version", rec.Version, "wide", rec.Wide, "cells", len(rec.Cells))
	writeJSON(w, http.StatusOK, rec.Feature())
}

func (h *Handlers) getFeature(w http.ResponseWriter, r *http.Request) {
	ctx, layer, id := featureCtx(r, "feature_get")
	rec, _, err := h.features.Get(ctx, layer, id)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Feature())
}

func (h *Handlers) deleteFeature(w http.ResponseWriter, r *http.Request) {
	ctx, layer, id := featureCtx(r, "feature_delete")
	if err := h.features.Delete(ctx, layer, id); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "feature deleted")
	w.WriteHeader(http.StatusNoContent)
}

// queryFeatures serves ?bbox=x1,y1,x2,y2 over one layer.
func (h *Handlers) queryFeatures(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, layer, _ := featureCtx(r, "feature_query")

	out, err := func() (model.FeatureCollection, error) {
		raw := strings.TrimSpace(r.URL.Query().Get("bbox"))
		if raw == "" {
			return model.FeatureCollection{}, fmt.Errorf("%w: missing required parameter: bbox", ErrBadRequest)
		}
		bb, err := model.ParseBBox(raw)
		if err != nil {
			return model.FeatureCollection{}, fmt.Errorf("%w: invalid bbox: %v", ErrBadRequest, err)
		}
		recs, err := h.features.QueryBbox(ctx, layer, bb.Geometry())
		if err != nil {
			return model.FeatureCollection{}, err
		}
		fc := model.FeatureCollection{Layer: layer, BBox: bb.String(), Features: make([]model.Feature, 0, len(recs))}
		for _, rec := range recs {
			fc.Features = append(fc.Features, rec.Feature())
		}
		return fc, nil
	}()
	observability.ObserveGeometryOp("feature_query", "", err, time.Since(start).Seconds())
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.DebugContext(ctx, "feature query", "bbox", out.BBox, "hits", len(out.Features))
	writeJSON(w, http.StatusOK, out)
}
