package redisstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// prep fills n cell sets holding 8 ids each, half of them shared with the
// neighbouring set.
func prep(b *testing.B, n int) (*Client, []string, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	rc, err := New(ctx, mr.Addr())
	if err != nil {
		b.Fatalf("New: %v", err)
	}

	keys := make([]string, n)
	err = rc.Tx(ctx, "seed", func(p redis.Pipeliner) error {
		for i := range n {
			keys[i] = fmt.Sprintf("cell:bench:8:%06d", i)
			for j := range 8 {
				p.SAdd(ctx, keys[i], fmt.Sprintf("f%06d", i*4+j))
			}
		}
		return nil
	})
	if err != nil {
		b.Fatalf("seed: %v", err)
	}

	cleanup := func() {
		cancel()
		_ = rc.Close()
		mr.Close()
	}
	return rc, keys, cleanup
}

func benchSUnion(b *testing.B, n int) {
	rc, keys, cleanup := prep(b, n)
	defer cleanup()

	ctx := context.Background()
	b.ReportAllocs()

	for b.Loop() {
		if _, err := rc.SUnion(ctx, keys...); err != nil {
			b.Fatal(err)
		}
	}
}

func benchSMembersLoop(b *testing.B, n int) {
	rc, keys, cleanup := prep(b, n)
	defer cleanup()

	ctx := context.Background()
	b.ReportAllocs()

	for b.Loop() {
		seen := make(map[string]struct{})
		for _, k := range keys {
			ms, err := rc.SMembers(ctx, k)
			if err != nil {
				b.Fatal(err)
			}
			for _, m := range ms {
				seen[m] = struct{}{}
			}
		}
	}
}

func BenchmarkCellUnion_64(b *testing.B) {
	b.Run("SUNION", func(b *testing.B) { benchSUnion(b, 64) })
	b.Run("SMEMBERSx64", func(b *testing.B) { benchSMembersLoop(b, 64) })
}

func BenchmarkCellUnion_512(b *testing.B) {
	b.Run("SUNION", func(b *testing.B) { benchSUnion(b, 512) })
	b.Run("SMEMBERSx512", func(b *testing.B) { benchSMembersLoop(b, 512) })
}
