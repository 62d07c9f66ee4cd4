package database

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// FetchAll runs independent builders concurrently and returns their results
// in argument order. The first failure cancels the context passed to the
// remaining fetches and is returned.
//
// Each Select must be owned exclusively by this call while it runs.
func FetchAll(ctx context.Context, selects ...*Select) ([]*Result, error) {
	results := make([]*Result, len(selects))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range selects {
		g.Go(func() error {
			res, err := s.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("select %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
