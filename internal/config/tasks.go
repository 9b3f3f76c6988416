package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
)

// taskSpec is the config-file shape of one task override.
type taskSpec struct {
	Name           string `json:"name"`
	Command        string `json:"command"`
	LoginShell     bool   `json:"login_shell"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// TasksFromViper returns the task list from the config file's "tasks" array
// when one is present, or the built-in defaults otherwise. Names must be
// unique and non-empty since outcomes are keyed by name.
func TasksFromViper(v *viper.Viper) ([]task.Task, error) {
	if v == nil || !v.IsSet("tasks") {
		return task.Defaults(), nil
	}

	// Round-trip through JSON to turn viper's generic []interface{} into
	// typed specs.
	raw, err := json.Marshal(v.Get("tasks"))
	if err != nil {
		return nil, fmt.Errorf("read tasks config: %w", err)
	}
	var specs []taskSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse tasks config: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("tasks config is empty")
	}

	seen := make(map[string]struct{}, len(specs))
	tasks := make([]task.Task, 0, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("task #%d missing name", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("task #%d has duplicate name: %s", i+1, name)
		}
		seen[name] = struct{}{}

		command := strings.TrimSpace(spec.Command)
		if command == "" {
			return nil, fmt.Errorf("task %q missing command", name)
		}

		timeout := task.DefaultTimeout
		if spec.TimeoutSeconds > 0 {
			timeout = time.Duration(NormalizeTimeoutSeconds(spec.TimeoutSeconds)) * time.Second
		}

		tasks = append(tasks, task.Task{
			Name:       name,
			Command:    command,
			LoginShell: spec.LoginShell,
			Timeout:    timeout,
		})
	}

	return tasks, nil
}
