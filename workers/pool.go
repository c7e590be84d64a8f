package workers

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapAsync runs fn over items with at most limit in flight. The first error
// cancels the remaining work; workers that want per-item tolerance log and
// return nil themselves.
func MapAsync[T any](ctx context.Context, limit int, items []T, fn func(ctx context.Context, item T) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, item)
		})
	}
	return g.Wait()
}
