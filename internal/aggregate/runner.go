package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll computes every registered aggregation against ds, running up to
// workers computations concurrently. Results come back in registry order
// with skipped aggregations removed. The context cancels remaining work.
func RunAll(ctx context.Context, ds *Dataset, workers int) ([]*Table, error) {
	if workers < 1 {
		workers = 1
	}
	aggs := All()
	slots := make([]*Table, len(aggs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, agg := range aggs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			slots[idx] = agg.Run(ds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*Table, 0, len(slots))
	for _, t := range slots {
		if t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}
