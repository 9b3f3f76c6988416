package executor

import (
	"context"
	"os/exec"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/shell"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
)

type CommandRunner = commandRunner
type ProcessHandle = processHandle

func SetForceKillDelay(seconds int32) (restore func()) {
	prev := forceKillDelay.Load()
	forceKillDelay.Store(seconds)
	return func() { forceKillDelay.Store(prev) }
}

func SetRunTaskFn(fn func(context.Context, task.Task) task.Outcome) (restore func()) {
	prev := runTaskFn
	if fn != nil {
		runTaskFn = fn
	} else {
		runTaskFn = RunTask
	}
	return func() { runTaskFn = prev }
}

func SetShellForTaskFn(fn func(task.Task) shell.Shell) (restore func()) {
	prev := shellForTaskFn
	if fn != nil {
		shellForTaskFn = fn
	} else {
		shellForTaskFn = shell.ForTask
	}
	return func() { shellForTaskFn = prev }
}

func SetCommandContextFn(fn func(context.Context, string, ...string) *exec.Cmd) (restore func()) {
	prev := commandContext
	if fn != nil {
		commandContext = fn
	} else {
		commandContext = exec.CommandContext
	}
	return func() { commandContext = prev }
}

func SetNewCommandRunner(fn func(context.Context, string, ...string) CommandRunner) (restore func()) {
	prev := newCommandRunner
	if fn != nil {
		newCommandRunner = fn
	} else {
		newCommandRunner = func(ctx context.Context, name string, args ...string) commandRunner {
			return &realCmd{cmd: commandContext(ctx, name, args...)}
		}
	}
	return func() { newCommandRunner = prev }
}
