package executor

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/shell"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/utils"

	ilogger "github.com/kenryu42/tmuxifier-session-scripts/internal/logger"
)

// outputTailLimit caps how much combined stdout+stderr is retained per task.
const outputTailLimit = 256 * 1024

// forceKillDelay is the grace period, in seconds, between SIGTERM and
// SIGKILL when a task times out or the run is cancelled.
var forceKillDelay atomic.Int32

func init() {
	forceKillDelay.Store(5)
}

var shellForTaskFn = shell.ForTask

// RunTask executes one task's command as a child process and returns its
// Outcome. It never returns an error: nonzero exits, timeouts and spawn
// failures all become a failing Outcome with the failure category embedded
// in the output text.
func RunTask(ctx context.Context, t task.Task) task.Outcome {
	start := time.Now()

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = task.DefaultTimeout
	}

	sh := shellForTaskFn(t)
	args := sh.BuildArgs(t.Command)
	ilogger.LogInfo(fmt.Sprintf("[%s] starting: shell=%s timeout=%s", t.Name, sh.Name(), timeout))

	capture := &tailBuffer{limit: outputTailLimit}
	stream := newLogWriter("["+t.Name+"] ", outputLogLineLimit)
	sink := io.MultiWriter(capture, stream)

	runner := newCommandRunner(ctx, sh.Command(), args...)
	runner.SetStdout(sink)
	runner.SetStderr(sink)

	if err := runner.Start(); err != nil {
		ilogger.LogError(fmt.Sprintf("[%s] execution error: %v", t.Name, err))
		return task.Outcome{
			Output:   fmt.Sprintf("execution error: %v", err),
			Duration: time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() { done <- runner.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var waitErr error
	timedOut := false
	cancelled := false

	select {
	case waitErr = <-done:
	case <-timer.C:
		timedOut = true
		waitErr = terminate(runner, done)
	case <-ctx.Done():
		cancelled = true
		waitErr = terminate(runner, done)
	}
	stream.Flush()

	elapsed := time.Since(start)
	output := strings.TrimSpace(utils.SanitizeOutput(capture.String()))

	switch {
	case timedOut:
		ilogger.LogWarn(fmt.Sprintf("[%s] timed out after %s", t.Name, timeout))
		return task.Outcome{Output: withDetail(fmt.Sprintf("timeout after %s", timeout), output), Duration: elapsed}
	case cancelled:
		ilogger.LogWarn(fmt.Sprintf("[%s] cancelled", t.Name))
		return task.Outcome{Output: withDetail("cancelled", output), Duration: elapsed}
	}

	if output == "" {
		output = task.NoOutput
	}
	if waitErr != nil {
		ilogger.LogWarn(fmt.Sprintf("[%s] completed with warnings/errors: %v", t.Name, waitErr))
		return task.Outcome{Output: output, Duration: elapsed}
	}

	ilogger.LogInfo(fmt.Sprintf("[%s] completed successfully in %s", t.Name, elapsed.Round(time.Millisecond)))
	return task.Outcome{Success: true, Output: output, Duration: elapsed}
}

func withDetail(msg, output string) string {
	if output == "" {
		return msg
	}
	return msg + "\n" + output
}

// terminate asks the process to exit with SIGTERM, escalates to SIGKILL
// after the grace delay, and waits for Wait to return so the child is never
// left orphaned past a bounded period.
func terminate(runner commandRunner, done <-chan error) error {
	proc := runner.Process()
	_ = sendTermSignal(proc)

	grace := time.Duration(forceKillDelay.Load()) * time.Second
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
	}

	if proc != nil {
		_ = proc.Kill()
	}
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		return fmt.Errorf("process did not exit after kill")
	}
}
