package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Loader is anything that can be loaded, such as a *Resource.
type Loader interface {
	Load(ctx context.Context) error
}

// All loads every loader concurrently and returns the first error. A
// failure does not cancel the others: each resource degrades on its own.
func All(ctx context.Context, loaders ...Loader) error {
	var g errgroup.Group
	for _, l := range loaders {
		g.Go(func() error {
			return l.Load(ctx)
		})
	}
	return g.Wait()
}
