// Package cellindex keeps, per layer, a Redis set of feature ids for every
// H3 cell a feature touches. Writes are queued onto a caller's transaction
// pipeline so the index moves together with the feature record.
package cellindex

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mohammed-shakir/geomcore/internal/cache/keys"
	"github.com/mohammed-shakir/geomcore/internal/cache/redisstore"
)

// Entry is where a feature currently sits in the index.
type Entry struct {
	Cells []string
	Wide  bool
}

type Index struct {
	cli *redisstore.Client
	res int
}

func New(cli *redisstore.Client, res int) *Index {
	return &Index{cli: cli, res: res}
}

// Res is the H3 resolution the index is built at.
func (ix *Index) Res() int { return ix.res }

// QueueMove moves id from one entry to another, touching only the cells
// that changed.
func (ix *Index) QueueMove(ctx context.Context, p redis.Pipeliner, layer, id string, from, to Entry) {
	keep := make(map[string]struct{}, len(to.Cells))
	for _, c := range to.Cells {
		keep[c] = struct{}{}
	}
	for _, c := range from.Cells {
		if _, ok := keep[c]; !ok {
			p.SRem(ctx, keys.CellKey(layer, ix.res, c), id)
		}
	}
	for _, c := range to.Cells {
		p.SAdd(ctx, keys.CellKey(layer, ix.res, c), id)
	}
	if to.Wide {
		p.SAdd(ctx, keys.WideKey(layer), id)
	} else if from.Wide {
		p.SRem(ctx, keys.WideKey(layer), id)
	}
	p.SAdd(ctx, keys.LayerIDsKey(layer), id)
}

// QueueRemove drops id from every set it belongs to.
func (ix *Index) QueueRemove(ctx context.Context, p redis.Pipeliner, layer, id string, from Entry) {
	for _, c := range from.Cells {
		p.SRem(ctx, keys.CellKey(layer, ix.res, c), id)
	}
	if from.Wide {
		p.SRem(ctx, keys.WideKey(layer), id)
	}
	p.SRem(ctx, keys.LayerIDsKey(layer), id)
}

// Candidates returns the ids indexed under any of cells plus every wide
// feature of the layer.
func (ix *Index) Candidates(ctx context.Context, layer string, cells []string) ([]string, error) {
	ks := make([]string, 0, len(cells)+1)
	for _, c := range cells {
		ks = append(ks, keys.CellKey(layer, ix.res, c))
	}
	ks = append(ks, keys.WideKey(layer))
	ids, err := ix.cli.SUnion(ctx, ks...)
	if err != nil {
		return nil, fmt.Errorf("cellindex candidates: %w", err)
	}
	return ids, nil
}

// All returns every id in the layer.
func (ix *Index) All(ctx context.Context, layer string) ([]string, error) {
	ids, err := ix.cli.SMembers(ctx, keys.LayerIDsKey(layer))
	if err != nil {
		return nil, fmt.Errorf("cellindex scan: %w", err)
	}
	return ids, nil
}
