package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"

	ilogger "github.com/kenryu42/tmuxifier-session-scripts/internal/logger"
)

// DefaultWorkers bounds how many update commands run at once.
const DefaultWorkers = 6

var (
	runTaskFn = RunTask

	progressMu sync.Mutex
	progressFn func(task.Task, task.Outcome)
)

// SetProgressFn registers a callback invoked once per task as its outcome
// arrives, in completion order. Calls are serialized.
func SetProgressFn(fn func(task.Task, task.Outcome)) (restore func()) {
	progressMu.Lock()
	prev := progressFn
	progressFn = fn
	progressMu.Unlock()
	return func() {
		progressMu.Lock()
		progressFn = prev
		progressMu.Unlock()
	}
}

func notifyProgress(t task.Task, out task.Outcome) {
	progressMu.Lock()
	fn := progressFn
	if fn != nil {
		fn(t, out)
	}
	progressMu.Unlock()
}

// ExecuteConcurrent runs every task with at most workers in flight and
// returns a Report with one entry per input task, in input order.
// Completion order is unspecified; outcomes are collected under a mutex
// keyed by task name and reassembled against the original slice at the end,
// so the report is deterministic for deterministic outcomes.
func ExecuteConcurrent(ctx context.Context, tasks []task.Task, workers int) task.Report {
	start := time.Now()

	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}
	ilogger.LogInfo(fmt.Sprintf("dispatching %d tasks across %d workers", len(tasks), workers))

	var (
		mu       sync.Mutex
		outcomes = make(map[string]task.Outcome, len(tasks))
	)

	jobs := make(chan task.Task)
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for t := range jobs {
				out := runGuarded(ctx, t)
				mu.Lock()
				outcomes[t.Name] = out
				mu.Unlock()
				notifyProgress(t, out)
			}
		}()
	}

	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)
	wg.Wait()

	report := task.Report{Entries: make([]task.Entry, 0, len(tasks))}
	for _, t := range tasks {
		out, ok := outcomes[t.Name]
		if !ok {
			// Should be unreachable; every submitted task records an
			// outcome. Keep the one-entry-per-task invariant anyway.
			out = task.Outcome{Output: "execution error: no outcome recorded"}
		}
		report.Entries = append(report.Entries, task.Entry{Task: t, Outcome: out})
	}
	report.Total = time.Since(start)

	ilogger.LogInfo(fmt.Sprintf("batch finished in %s", report.Total.Round(time.Millisecond)))
	return report
}

// runGuarded contains a single task's failure, including a panic in the
// execution machinery itself, so it can never take down the batch or
// another task's outcome.
func runGuarded(ctx context.Context, t task.Task) (out task.Outcome) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			ilogger.LogError(fmt.Sprintf("[%s] worker panic: %v", t.Name, r))
			out = task.Outcome{
				Output:   fmt.Sprintf("execution error: panic: %v", r),
				Duration: time.Since(started),
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		return task.Outcome{Output: "cancelled"}
	}
	return runTaskFn(ctx, t)
}
