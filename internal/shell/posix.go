package shell

// PosixShell runs a command through plain /bin/sh. Suitable for anything
// resolvable as a standalone executable on PATH.
type PosixShell struct{}

func (PosixShell) Name() string    { return "posix" }
func (PosixShell) Command() string { return "/bin/sh" }

func (PosixShell) BuildArgs(command string) []string {
	return []string{"-c", command}
}
