// Package featurestore keeps geometries per layer in Redis and answers
// bounding-box queries through the H3 cell index.
package featurestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mohammed-shakir/geomcore/internal/cache/cellindex"
	"github.com/mohammed-shakir/geomcore/internal/cache/keys"
	"github.com/mohammed-shakir/geomcore/internal/cache/parsecache"
	"github.com/mohammed-shakir/geomcore/internal/cache/redisstore"
	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/internal/core/observability"
	"github.com/mohammed-shakir/geomcore/internal/mapper"
	"github.com/mohammed-shakir/geomcore/pkg/bbox"
	"github.com/mohammed-shakir/geomcore/pkg/geomfn"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
	"github.com/mohammed-shakir/geomcore/pkg/wkt"
)

var (
	ErrNotFound     = errors.New("feature not found")
	ErrStale        = errors.New("stale feature version")
	ErrInvalidLayer = errors.New("invalid layer name")
	ErrInvalidID    = errors.New("invalid feature id")
)

// Record is the stored form of a feature.
type Record struct {
	Layer     string        `json:"layer"`
	ID        string        `json:"id"`
	EWKT      string        `json:"ewkt"`
	Bounds    *model.Bounds `json:"bounds,omitempty"`
	Cells     []string      `json:"cells,omitempty"`
	Wide      bool          `json:"wide,omitempty"`
	Version   int64         `json:"version"`
	UpdatedAt int64         `json:"updated_at"`
}

func (r Record) Feature() model.Feature {
	return model.Feature{
		Layer:     r.Layer,
		ID:        r.ID,
		EWKT:      r.EWKT,
		Bounds:    r.Bounds,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r Record) entry() cellindex.Entry {
	return cellindex.Entry{Cells: r.Cells, Wide: r.Wide}
}

type Option func(*Store)

// WithTTL sets a per-layer expiry for feature records; zero means none.
func WithTTL(fn func(layer string) time.Duration) Option {
	return func(s *Store) { s.ttl = fn }
}

func WithParseCache(c *parsecache.Cache) Option {
	return func(s *Store) { s.parse = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	cli   *redisstore.Client
	index *cellindex.Index
	cover mapper.Interface
	parse *parsecache.Cache
	ttl   func(layer string) time.Duration
	now   func() time.Time
}

func New(cli *redisstore.Client, cover mapper.Interface, res int, opts ...Option) *Store {
	s := &Store{
		cli:   cli,
		index: cellindex.New(cli, res),
		cover: cover,
		ttl:   func(string) time.Duration { return 0 },
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error { return s.cli.Ping(ctx) }

func validate(layer, id string) error {
	if !keys.ValidLayer(layer) {
		return fmt.Errorf("%w: %q", ErrInvalidLayer, layer)
	}
	if strings.TrimSpace(id) == "" || len(id) > 512 {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Put stores g under layer/id and re-indexes it. A positive version must be
// greater than the stored one or ErrStale is returned; version 0 takes the
// next version after the stored one.
func (s *Store) Put(ctx context.Context, layer, id string, g geometry.Geometry, version int64) (Record, error) {
	if err := validate(layer, id); err != nil {
		return Record{}, err
	}
	cells, wide, err := s.cellsFor(g)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		Layer: layer,
		ID:    id,
		EWKT:  wkt.MarshalEWKT(g),
		Cells: cells,
		Wide:  wide,
	}
	if b, ok := geomfn.Bounds(g); ok {
		rec.Bounds = model.BoundsOf(b)
	}

	key := keys.FeatureKey(layer, id)
	err = s.cli.Watch(ctx, "put", func(tx *redis.Tx) error {
		prev, found, err := readRecord(ctx, tx, key)
		if err != nil {
			return err
		}
		switch {
		case version > 0 && found && version <= prev.Version:
			return fmt.Errorf("%w: %d <= %d", ErrStale, version, prev.Version)
		case version > 0:
			rec.Version = version
		default:
			rec.Version = prev.Version + 1
		}
		rec.UpdatedAt = s.now().UnixMilli()
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("featurestore encode: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, payload, s.ttl(layer))
			s.index.QueueMove(ctx, p, layer, id, prev.entry(), rec.entry())
			return nil
		})
		return err
	}, key)
	if err != nil {
		return Record{}, fmt.Errorf("featurestore put %s/%s: %w", layer, id, err)
	}
	observability.SetLayerUpdatedAt(layer, float64(rec.UpdatedAt)/1000)
	return rec, nil
}

// cellsFor returns the index cells of g, or wide=true when g cannot be
// indexed by cell.
func (s *Store) cellsFor(g geometry.Geometry) ([]string, bool, error) {
	cells, err := s.cover.CellsForGeometry(g, s.index.Res())
	switch {
	case errors.Is(err, mapper.ErrTooManyCells), errors.Is(err, mapper.ErrNotGeographic):
		return nil, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("featurestore cells: %w", err)
	}
	return cells, false, nil
}

func (s *Store) Get(ctx context.Context, layer, id string) (Record, geometry.Geometry, error) {
	if err := validate(layer, id); err != nil {
		return Record{}, nil, err
	}
	recs, err := s.mget(ctx, layer, []string{id})
	if err != nil {
		return Record{}, nil, err
	}
	if len(recs) == 0 {
		return Record{}, nil, fmt.Errorf("%w: %s/%s", ErrNotFound, layer, id)
	}
	g, err := s.parse.Parse(recs[0].EWKT)
	if err != nil {
		return Record{}, nil, fmt.Errorf("featurestore decode %s/%s: %w", layer, id, err)
	}
	return recs[0], g, nil
}

func (s *Store) Delete(ctx context.Context, layer, id string) error {
	if err := validate(layer, id); err != nil {
		return err
	}
	key := keys.FeatureKey(layer, id)
	err := s.cli.Watch(ctx, "delete", func(tx *redis.Tx) error {
		prev, found, err := readRecord(ctx, tx, key)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, layer, id)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			s.index.QueueRemove(ctx, p, layer, id, prev.entry())
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("featurestore delete %s/%s: %w", layer, id, err)
	}
	observability.SetLayerUpdatedAt(layer, float64(s.now().UnixMilli())/1000)
	return nil
}

// QueryBbox returns the features of layer that intersect b, sorted by id.
// Candidates come from the cell index; when b cannot be covered by cells
// the whole layer is scanned. Every candidate is checked exactly.
func (s *Store) QueryBbox(ctx context.Context, layer string, b geometry.Bbox) ([]Record, error) {
	if !keys.ValidLayer(layer) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLayer, layer)
	}
	var ids []string
	cells, err := s.cover.CellsForBbox(b, s.index.Res())
	switch {
	case errors.Is(err, mapper.ErrTooManyCells), errors.Is(err, mapper.ErrNotGeographic):
		ids, err = s.index.All(ctx, layer)
	case err != nil:
		return nil, fmt.Errorf("featurestore query cells: %w", err)
	default:
		observability.ObserveQueryCells(len(cells))
		ids, err = s.index.Candidates(ctx, layer, cells)
	}
	if err != nil {
		return nil, err
	}

	recs, err := s.mget(ctx, layer, ids)
	if err != nil {
		return nil, err
	}
	window := bboxGeometry(b)
	out := recs[:0]
	for _, r := range recs {
		if r.Bounds == nil || !bbox.Intersects(boundsBbox(r.Bounds), b) {
			continue
		}
		g, err := s.parse.Parse(r.EWKT)
		if err != nil {
			return nil, fmt.Errorf("featurestore decode %s/%s: %w", layer, r.ID, err)
		}
		if geomfn.Intersects(g, window) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mget loads records for ids; expired or missing ids are skipped.
func (s *Store) mget(ctx context.Context, layer string, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ks := make([]string, len(ids))
	for i, id := range ids {
		ks[i] = keys.FeatureKey(layer, id)
	}
	raw, err := s.cli.MGet(ctx, ks)
	if err != nil {
		return nil, fmt.Errorf("featurestore MGET %d keys: %w", len(ks), err)
	}
	out := make([]Record, 0, len(raw))
	for _, k := range ks {
		v, ok := raw[k]
		if !ok {
			continue
		}
		var r Record
		if err := json.Unmarshal(v, &r); err != nil {
			return nil, fmt.Errorf("featurestore decode %q: %w", k, err)
		}
		out = append(out, r)
	}
	return out, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readRecord(ctx context.Context, c getter, key string) (Record, bool, error) {
	v, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("featurestore GET %q: %w", key, err)
	}
	var r Record
	if err := json.Unmarshal(v, &r); err != nil {
		return Record{}, false, fmt.Errorf("featurestore decode %q: %w", key, err)
	}
	return r, true, nil
}

func boundsBbox(b *model.Bounds) geometry.Bbox {
	return geometry.BboxFromCorners(geometry.C(b.MinX, b.MinY), geometry.C(b.MaxX, b.MaxY))
}

// bboxGeometry turns a query window into the lowest-dimension geometry that
// represents it, so zero-width windows still intersect.
func bboxGeometry(b geometry.Bbox) geometry.Geometry {
	lo, hi := b.Min(), b.Max()
	switch {
	case b.Width == 0 && b.Height == 0:
		return geometry.NewPoint(lo.X, lo.Y)
	case b.Width == 0 || b.Height == 0:
		return geometry.NewLineString(lo, hi)
	default:
		return geometry.NewPolygon(geometry.NewLinearRing(
			lo, geometry.C(hi.X, lo.Y), hi, geometry.C(lo.X, hi.Y), lo,
		))
	}
}
