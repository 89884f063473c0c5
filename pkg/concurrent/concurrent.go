package concurrent

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MapErr applies fn to every element of in with at most workers goroutines and
// returns the results in input order. The first error cancels the context
// handed to the remaining calls and is returned.
func MapErr[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	if len(in) == 0 {
		return out, nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for idx, value := range in {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			r, err := fn(groupCtx, value)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
