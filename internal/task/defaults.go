package task

// Defaults returns the built-in update commands. Commands that only exist
// as shell functions or aliases (nvm, omz) need a login shell with the rc
// files sourced; the rest resolve as plain executables.
func Defaults() []Task {
	return []Task{
		{
			Name:    "Updating Homebrew",
			Command: "brew update && brew upgrade && brew cleanup && brew doctor || true",
			Timeout: DefaultTimeout,
		},
		{
			Name:       "Updating NVM",
			Command:    "nvm upgrade",
			LoginShell: true,
			Timeout:    DefaultTimeout,
		},
		{
			Name:    "Updating PNPM",
			Command: "pnpm up -g --latest",
			Timeout: DefaultTimeout,
		},
		{
			Name:    "Updating Claude",
			Command: "claude update",
			Timeout: DefaultTimeout,
		},
		{
			Name:    "Updating Deno",
			Command: "deno upgrade",
			Timeout: DefaultTimeout,
		},
		{
			Name:       "Updating Oh My Zsh",
			Command:    "omz update",
			LoginShell: true,
			Timeout:    DefaultTimeout,
		},
	}
}
