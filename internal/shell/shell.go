package shell

import "github.com/kenryu42/tmuxifier-session-scripts/internal/task"

// Shell defines the contract for wrapping an update command in a concrete
// shell invocation. Each shell supplies the executable and builds the
// argument list for a given command string.
type Shell interface {
	Name() string
	Command() string
	BuildArgs(command string) []string
}

// ForTask picks the shell a task asked for: a login shell when the command
// depends on rc-file aliases or functions, plain sh otherwise.
func ForTask(t task.Task) Shell {
	if t.LoginShell {
		return LoginShell{}
	}
	return PosixShell{}
}
