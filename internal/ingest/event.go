// Package ingest defines the feature change events published on Kafka.
package ingest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammed-shakir/geomcore/internal/cache/keys"
	"github.com/mohammed-shakir/geomcore/pkg/geomfn"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// Event is one change to a stored feature. Version increases per feature;
// consumers drop anything not newer than what they already applied.
type Event struct {
	Version   int64     `json:"version"`
	Op        string    `json:"op"`
	Layer     string    `json:"layer"`
	FeatureID string    `json:"feature_id"`
	TS        time.Time `json:"ts"`
	EWKT      string    `json:"ewkt,omitempty"`
}

// Parser turns EWKT into a geometry; *parsecache.Cache implements it.
type Parser interface {
	Parse(text string) (geometry.Geometry, error)
}

func (e Event) Validate() error {
	if e.Version <= 0 {
		return fmt.Errorf("version must be positive")
	}
	switch e.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return fmt.Errorf("op must be insert|update|delete")
	}
	if !keys.ValidLayer(e.Layer) {
		return fmt.Errorf("layer %q is not a valid layer name", e.Layer)
	}
	if strings.TrimSpace(e.FeatureID) == "" {
		return fmt.Errorf("feature_id is required")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	hasGeom := strings.TrimSpace(e.EWKT) != ""
	if e.Op == OpDelete && hasGeom {
		return fmt.Errorf("delete must not carry ewkt")
	}
	if e.Op != OpDelete && !hasGeom {
		return fmt.Errorf("%s requires ewkt", e.Op)
	}
	return nil
}

// Geometry parses the event's EWKT and rejects geometries that fail
// geomfn.IsValid. Parse errors keep their wkt.ErrMalformed chain.
func (e Event) Geometry(p Parser) (geometry.Geometry, error) {
	g, err := p.Parse(e.EWKT)
	if err != nil {
		return nil, fmt.Errorf("parse ewkt: %w", err)
	}
	if !geomfn.IsValid(g) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGeometry, g.Kind())
	}
	return g, nil
}

// Key identifies the feature for per-feature ordering and dedupe.
func (e Event) Key() string {
	return e.Layer + "/" + e.FeatureID
}
