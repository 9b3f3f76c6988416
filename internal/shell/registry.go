package shell

import (
	"fmt"
	"strings"
)

var registry = map[string]Shell{
	"posix": PosixShell{},
	"login": LoginShell{},
}

// Registry exposes the available shells. Intended for internal inspection/tests.
func Registry() map[string]Shell {
	return registry
}

func Select(name string) (Shell, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "posix"
	}
	if sh, ok := registry[key]; ok {
		return sh, nil
	}
	return nil, fmt.Errorf("unsupported shell %q", name)
}
