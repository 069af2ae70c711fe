package framework

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/airsstack/airssys-osl/pkg/osl"
)

// BatchResult pairs one batch operation with its outcome. Results keep
// the order of the submitted operations.
type BatchResult struct {
	Operation osl.Operation
	Result    *osl.ExecutionResult
	Err       error
}

// ExecuteBatch runs ops concurrently, at most limit at a time (unlimited
// when limit is not positive). Every operation runs to completion even
// when siblings fail; the returned error is the first failure, and the
// per-operation outcomes are in the results.
func (f *Framework) ExecuteBatch(ctx context.Context, ops []osl.Operation, limit int) ([]BatchResult, error) {
	results := make([]BatchResult, len(ops))

	g := &errgroup.Group{}
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, op := range ops {
		i, op := i, op
		g.Go(func() error {
			res, err := f.Execute(ctx, op)
			results[i] = BatchResult{Operation: op, Result: res, Err: err}
			return err
		})
	}
	err := g.Wait()
	return results, err
}
