package shell

// rcPreamble sources the user's shell config so aliases and functions
// (nvm, omz, ...) resolve. Failures to source are ignored on purpose.
const rcPreamble = "source ~/.zshrc 2>/dev/null || source ~/.bashrc 2>/dev/null || true\n"

// LoginShell runs a command through zsh with the user's rc files sourced
// first, mirroring what an interactive session would see.
type LoginShell struct{}

func (LoginShell) Name() string    { return "login" }
func (LoginShell) Command() string { return "/bin/zsh" }

func (LoginShell) BuildArgs(command string) []string {
	return []string{"-c", rcPreamble + command}
}
