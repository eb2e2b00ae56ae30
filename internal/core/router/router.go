// Package router exposes the geometry functions and the feature store over
// HTTP.
package router

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/geomcore/internal/cache/featurestore"
	"github.com/mohammed-shakir/geomcore/internal/core/config"
	"github.com/mohammed-shakir/geomcore/internal/mapper"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// Parser turns WKT or EWKT into a geometry; *parsecache.Cache implements it.
type Parser interface {
	Parse(text string) (geometry.Geometry, error)
}

// FeatureStore is the storage behind the layer routes.
type FeatureStore interface {
	Put(ctx context.Context, layer, id string, g geometry.Geometry, version int64) (featurestore.Record, error)
	Get(ctx context.Context, layer, id string) (featurestore.Record, geometry.Geometry, error)
	Delete(ctx context.Context, layer, id string) error
	QueryBbox(ctx context.Context, layer string, b geometry.Bbox) ([]featurestore.Record, error)
}

type Handlers struct {
	cfg      config.Config
	logger   *slog.Logger
	parser   Parser
	cover    mapper.Interface
	features FeatureStore
}

// New wires the handlers. features may be nil, in which case the layer
// routes are not mounted.
func New(cfg config.Config, logger *slog.Logger, parser Parser, cover mapper.Interface, features FeatureStore) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{cfg: cfg, logger: logger, parser: parser, cover: cover, features: features}
}

func (h *Handlers) Mount(r chi.Router) {
	r.Route("/v1/geometry", func(r chi.Router) {
		r.Post("/inspect", serve(h, "inspect", h.inspect))
		r.Post("/intersects", serve(h, "intersects", h.intersects))
		r.Post("/equals", serve(h, "equals", h.equals))
		r.Post("/distance", serve(h, "distance", h.distance))
		r.Post("/transform", serve(h, "transform", h.transform))
		r.Post("/within", serve(h, "within", h.within))
		r.Post("/cells", serve(h, "cells", h.cells))
		r.Post("/polyline", serve(h, "polyline_encode", h.polylineEncode))
		r.Get("/polyline", h.polylineDecode)
	})
	if h.features == nil {
		return
	}
	r.Route("/v1/layers/{layer}/features", func(r chi.Router) {
		r.Get("/", h.queryFeatures)
		r.Put("/{id}", h.putFeature)
		r.Get("/{id}", h.getFeature)
		r.Delete("/{id}", h.deleteFeature)
	})
}
