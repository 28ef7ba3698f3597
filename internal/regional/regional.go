// Package regional runs independent per-region tasks concurrently and
// collects a tagged result for every region.
package regional

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit bounds how many regions are worked on at once
const DefaultLimit = 8

// Result is the outcome of a task in one region
type Result[T any] struct {
	Value T
	Err   error
}

// Run calls fn once per region and waits for every call to return. A failing
// region never cancels the others; its error is kept in its own Result.
func Run[T any](ctx context.Context, regions []string, limit int, fn func(ctx context.Context, region string) (T, error)) map[string]Result[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}

	// one slot per region so no two goroutines touch the same memory
	slots := make([]Result[T], len(regions))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, region := range regions {
		g.Go(func() error {
			value, err := fn(ctx, region)
			slots[i] = Result[T]{Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	results := make(map[string]Result[T], len(regions))
	for i, region := range regions {
		results[region] = slots[i]
	}
	return results
}
