package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// errSkipped marks an item that loaded fine but has nothing to report.
var errSkipped = errors.New("no rows")

// ItemResult is the outcome of one identifier in a batch query. Exactly one
// of Value and Err is meaningful.
type ItemResult[T any] struct {
	ID    string
	Value T
	Err   error
}

// OK reports whether the item succeeded.
func (r ItemResult[T]) OK() bool {
	return r.Err == nil
}

// Skipped reports whether the item was left out for having no rows.
func (r ItemResult[T]) Skipped() bool {
	return errors.Is(r.Err, errSkipped)
}

// collect runs fn for every id with at most limit calls in flight. Results
// are returned in the order of ids. fn errors are stored per item and never
// cancel the other items.
func collect[T any](ctx context.Context, ids []string, limit int, fn func(context.Context, string) (T, error)) []ItemResult[T] {
	results := make([]ItemResult[T], len(ids))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fn(ctx, id)
			results[i] = ItemResult[T]{ID: id, Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// successes keeps the values of the items that succeeded, in order.
func successes[T any](results []ItemResult[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}
