package worker

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ProcessFunc is the function signature for processing a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Workers returns the concurrency limit.
func (p *Pool[T, R]) Workers() int { return p.workers }

// Execute runs all inputs through the pool and returns results in input order.
// The first failure cancels the remaining work and is returned.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) ([]R, error) {
	results := make([]R, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.process(gctx, inputs[i])
			if err != nil {
				log.Debug().Err(err).Int("index", i).Msg("Task failed")
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// BatchBy splits items into consecutive batches holding at most maxCount items
// whose summed weight stays within maxWeight. An item heavier than maxWeight
// gets a batch of its own. A non-positive limit is not enforced.
func BatchBy[T any](items []T, maxCount, maxWeight int, weight func(T) int) [][]T {
	var batches [][]T
	start, total := 0, 0
	for i, item := range items {
		w := weight(item)
		full := maxCount > 0 && i-start >= maxCount
		heavy := maxWeight > 0 && i > start && total+w > maxWeight
		if full || heavy {
			batches = append(batches, items[start:i])
			start, total = i, 0
		}
		total += w
	}
	if start < len(items) {
		batches = append(batches, items[start:])
	}
	return batches
}
