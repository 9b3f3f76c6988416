package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// commandContext is injectable so tests can swap the process launcher.
var commandContext = exec.CommandContext

type processHandle interface {
	Signal(sig os.Signal) error
	Kill() error
}

// commandRunner abstracts exec.Cmd for tests.
type commandRunner interface {
	Start() error
	Wait() error
	Process() processHandle
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
}

type realCmd struct {
	cmd *exec.Cmd
}

func (r *realCmd) Start() error { return r.cmd.Start() }

func (r *realCmd) Wait() error { return r.cmd.Wait() }

func (r *realCmd) Process() processHandle {
	if r.cmd.Process == nil {
		return nil
	}
	return r.cmd.Process
}

func (r *realCmd) SetStdout(w io.Writer) { r.cmd.Stdout = w }

func (r *realCmd) SetStderr(w io.Writer) { r.cmd.Stderr = w }

var newCommandRunner = func(ctx context.Context, name string, args ...string) commandRunner {
	return &realCmd{cmd: commandContext(ctx, name, args...)}
}
