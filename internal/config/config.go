package config

import (
	"os"
	"strings"
	"time"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
)

const (
	// DefaultWorkers bounds concurrent update commands.
	DefaultWorkers  = 6
	maxWorkersLimit = 32

	// DefaultTimeoutSeconds is the per-task limit (5 minutes).
	DefaultTimeoutSeconds = 300
	maxTimeoutSeconds     = 3600
)

// Config holds the resolved run configuration.
type Config struct {
	Workers   int
	Timeout   time.Duration
	NoSummary bool
	JSON      bool
	Model     string
	Tasks     []task.Task
}

// EnvFlagEnabled returns true when the environment variable exists and is
// not explicitly set to a falsey value ("0/false/no/off").
func EnvFlagEnabled(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		return false
	}
	return ParseBoolFlag(val, true)
}

func ParseBoolFlag(val string, defaultValue bool) bool {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// NormalizeWorkers clamps a configured worker count to something sane;
// zero or negative means "use the default".
func NormalizeWorkers(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	if n > maxWorkersLimit {
		return maxWorkersLimit
	}
	return n
}

// NormalizeTimeoutSeconds clamps a configured per-task timeout; zero or
// negative means "use the default".
func NormalizeTimeoutSeconds(n int) int {
	if n <= 0 {
		return DefaultTimeoutSeconds
	}
	if n > maxTimeoutSeconds {
		return maxTimeoutSeconds
	}
	return n
}
