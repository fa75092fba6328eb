// Package update provides the parallel work-distribution layer.
package update

import (
	"context"
	"runtime"
	"sync"
)

// ProgressFunc is invoked under the dispatcher's lock once per processed
// package, so implementations may re-render a carriage-return progress line
// without interleaving with other workers.
type ProgressFunc func(done, total int)

// RunReport aggregates the results of one check cycle.
type RunReport struct {
	// Total is the number of packages submitted
	Total int
	// Processed is the final progress counter value; equals Total once
	// RunAll returns
	Processed int
	// Lines holds the rendered report lines for every non-up-to-date
	// outcome, in arrival order. No ordering across workers is guaranteed.
	Lines []string
	// Outcomes holds every outcome, in arrival order
	Outcomes []Outcome
}

// AllCurrent reports whether every package resolved up-to-date.
// An empty line log means the whole batch is current.
func (r *RunReport) AllCurrent() bool {
	return len(r.Lines) == 0
}

// Dispatcher partitions a package list across a fixed worker pool and runs
// the checker pipeline for every package, tracking shared progress and
// aggregating rendered result lines.
type Dispatcher struct {
	checker  *Checker
	workers  int
	progress ProgressFunc
}

// DispatcherOption is a functional option for configuring a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWorkers sets the worker pool size. Values below 1 are ignored.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n >= 1 {
			d.workers = n
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) DispatcherOption {
	return func(d *Dispatcher) {
		d.progress = fn
	}
}

// NewDispatcher creates a dispatcher for the given checker. The pool size
// defaults to the number of available CPUs and is always at least 1.
func NewDispatcher(checker *Checker, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		checker: checker,
		workers: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.workers < 1 {
		d.workers = 1
	}

	return d
}

// Workers returns the configured pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// RunAll checks every package and blocks until all workers have finished.
//
// The package list is split into pool-size contiguous chunks; all chunks
// hold total/workers packages except the last, which absorbs the remainder.
// When the pool is larger than the list, the excess workers receive empty
// chunks and complete immediately. Each worker processes its chunk strictly
// sequentially, so no two workers ever touch the same record.
//
// The progress counter and the result log are the only cross-worker shared
// state; one mutex guards the counter increment together with the progress
// re-render and the log append, so the final counter equals the total with
// no lost increments and lines never interleave.
func (d *Dispatcher) RunAll(ctx context.Context, pkgs []PackageRecord) *RunReport {
	total := len(pkgs)
	report := &RunReport{Total: total}

	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)

	per := total / d.workers

	for i := 0; i < d.workers; i++ {
		start := i * per
		end := start + per
		if i == d.workers-1 {
			end = total
		}

		wg.Add(1)
		go func(chunk []PackageRecord) {
			defer wg.Done()

			for _, pkg := range chunk {
				mu.Lock()
				done++
				if d.progress != nil {
					d.progress(done, total)
				}
				mu.Unlock()

				outcome := d.checker.Check(ctx, pkg)

				mu.Lock()
				report.Outcomes = append(report.Outcomes, outcome)
				if line := outcome.Line(); line != "" {
					report.Lines = append(report.Lines, line)
				}
				mu.Unlock()
			}
		}(pkgs[start:end])
	}

	wg.Wait()

	report.Processed = done
	return report
}
