package dag

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/tariffgraph/internal/profiler"
	"github.com/specialistvlad/tariffgraph/internal/value"
)

// BatchOptions configures Evaluator.EvaluateBatch.
type BatchOptions struct {
	// CollectErrors, when true, isolates a failing row: its result slot
	// is the absent value and the parallel Errors slice holds the
	// structured error, while every other row's result is unaffected.
	// When false (the default), the first error aborts the whole batch.
	CollectErrors bool

	// Parallelism bounds how many contexts are evaluated concurrently.
	// Each row evaluates against a fresh, independent cache/trace/stack,
	// so concurrency never affects the result; it is purely a throughput
	// knob. Zero or negative means sequential (the default).
	Parallelism int
}

// BatchResult is the outcome of evaluating one context within a batch.
type BatchResult struct {
	Value value.Value
	Err   error
}

// EvaluateBatch evaluates target against every context in contexts,
// independently, returning one BatchResult per context in the same
// order. Rows share the Graph and Tables but never share
// per-evaluation state, so a fresh cache/stack is allocated per row;
// this also means no memoization happens across rows, since differing
// inputs would invalidate it anyway.
func (e *Evaluator) EvaluateBatch(ctx context.Context, target string, contexts []Context, opts BatchOptions) ([]BatchResult, error) {
	results := make([]BatchResult, len(contexts))

	run := func(i int) error {
		v, err := e.Evaluate(ctx, target, contexts[i])
		if err != nil {
			if !opts.CollectErrors {
				return err
			}
			results[i] = BatchResult{Value: value.NewAbsent(), Err: err}
			return nil
		}
		results[i] = BatchResult{Value: v}
		return nil
	}

	if opts.Parallelism <= 1 {
		for i := range contexts {
			if err := run(i); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)
	for i := range contexts {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return run(i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EvaluateBatchTraced is EvaluateBatch's profiled variant: it runs
// sequentially (a shared *profiler.Profiler is not safe for concurrent
// use) and attaches a fresh *Trace per row when traceEach is true.
func (e *Evaluator) EvaluateBatchTraced(ctx context.Context, target string, contexts []Context, opts BatchOptions, prof *profiler.Profiler, traceEach bool) ([]BatchResult, []*Trace, error) {
	results := make([]BatchResult, len(contexts))
	traces := make([]*Trace, len(contexts))

	for i, rowCtx := range contexts {
		var trace *Trace
		if traceEach {
			trace = NewTrace()
		}
		v, err := e.EvaluateTraced(ctx, target, rowCtx, trace, prof)
		if err != nil {
			if !opts.CollectErrors {
				return nil, nil, err
			}
			results[i] = BatchResult{Value: value.NewAbsent(), Err: err}
			traces[i] = trace
			continue
		}
		results[i] = BatchResult{Value: v}
		traces[i] = trace
	}
	return results, traces, nil
}
