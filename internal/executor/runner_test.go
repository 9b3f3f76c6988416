package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/shell"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
)

type fakeShell struct {
	path string
}

func (f fakeShell) Name() string    { return "fake" }
func (f fakeShell) Command() string { return f.path }
func (f fakeShell) BuildArgs(command string) []string {
	return []string{"-c", command}
}

func TestRunTaskSuccess(t *testing.T) {
	out := RunTask(context.Background(), task.Task{
		Name:    "echo",
		Command: "printf 'hello world\\n'",
		Timeout: 10 * time.Second,
	})

	if !out.Success {
		t.Fatalf("expected success, got failure with output %q", out.Output)
	}
	if out.Output != "hello world" {
		t.Errorf("output = %q, want %q (trimmed)", out.Output, "hello world")
	}
	if out.Duration <= 0 {
		t.Errorf("duration = %s, want > 0", out.Duration)
	}
}

func TestRunTaskNonzeroExitCapturesStderr(t *testing.T) {
	out := RunTask(context.Background(), task.Task{
		Name:    "fail",
		Command: "echo boom >&2; exit 3",
		Timeout: 10 * time.Second,
	})

	if out.Success {
		t.Fatal("expected failure for nonzero exit")
	}
	if !strings.Contains(out.Output, "boom") {
		t.Errorf("output %q does not contain captured stderr", out.Output)
	}
}

func TestRunTaskEmptyOutputSentinel(t *testing.T) {
	out := RunTask(context.Background(), task.Task{
		Name:    "quiet",
		Command: "exit 0",
		Timeout: 10 * time.Second,
	})

	if !out.Success {
		t.Fatalf("expected success, got output %q", out.Output)
	}
	if out.Output != task.NoOutput {
		t.Errorf("output = %q, want sentinel %q", out.Output, task.NoOutput)
	}
}

func TestRunTaskCombinesStdoutAndStderr(t *testing.T) {
	out := RunTask(context.Background(), task.Task{
		Name:    "both",
		Command: "echo out; echo err >&2; exit 1",
		Timeout: 10 * time.Second,
	})

	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Output, "out") || !strings.Contains(out.Output, "err") {
		t.Errorf("output %q missing stdout or stderr content", out.Output)
	}
}

func TestRunTaskTimeout(t *testing.T) {
	restore := SetForceKillDelay(1)
	defer restore()

	start := time.Now()
	out := RunTask(context.Background(), task.Task{
		Name:    "slow",
		Command: "sleep 30",
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	if out.Success {
		t.Fatal("expected timeout failure")
	}
	if !strings.HasPrefix(out.Output, "timeout after") {
		t.Errorf("output = %q, want timeout message", out.Output)
	}
	// RunTask must return within the timeout plus the kill grace period,
	// which also proves the child was reaped rather than orphaned.
	if elapsed > 3*time.Second {
		t.Errorf("RunTask took %s, want bounded return after timeout", elapsed)
	}
}

func TestRunTaskExecutionError(t *testing.T) {
	restoreShell := SetShellForTaskFn(func(task.Task) shell.Shell {
		return fakeShell{path: "/nonexistent/definitely-not-a-shell"}
	})
	defer restoreShell()

	out := RunTask(context.Background(), task.Task{
		Name:    "missing",
		Command: "true",
		Timeout: 10 * time.Second,
	})

	if out.Success {
		t.Fatal("expected failure when the shell binary cannot be started")
	}
	if !strings.HasPrefix(out.Output, "execution error:") {
		t.Errorf("output = %q, want execution error category", out.Output)
	}
}

func TestRunTaskCancelled(t *testing.T) {
	restore := SetForceKillDelay(1)
	defer restore()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	out := RunTask(ctx, task.Task{
		Name:    "cancelme",
		Command: "sleep 30",
		Timeout: 30 * time.Second,
	})
	elapsed := time.Since(start)

	if out.Success {
		t.Fatal("expected failure for cancelled task")
	}
	if !strings.HasPrefix(out.Output, "cancelled") {
		t.Errorf("output = %q, want cancelled message", out.Output)
	}
	if elapsed > 3*time.Second {
		t.Errorf("RunTask took %s after cancellation, want bounded return", elapsed)
	}
}

func TestRunTaskDefaultTimeoutApplied(t *testing.T) {
	// A zero timeout must not mean "no timeout"; it falls back to the
	// default. The command finishes immediately, so this just verifies the
	// path doesn't error.
	out := RunTask(context.Background(), task.Task{Name: "zero", Command: "true"})
	if !out.Success {
		t.Errorf("expected success, got %q", out.Output)
	}
}

func TestRunTaskStripsANSI(t *testing.T) {
	out := RunTask(context.Background(), task.Task{
		Name:    "color",
		Command: `printf '\033[31mred\033[0m\n'`,
		Timeout: 10 * time.Second,
	})

	if !out.Success {
		t.Fatalf("expected success, got %q", out.Output)
	}
	if out.Output != "red" {
		t.Errorf("output = %q, want ANSI-stripped %q", out.Output, "red")
	}
}
