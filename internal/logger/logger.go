package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const recentEntryLimit = 50

// Logger writes structured lines to a per-run log file and keeps a small
// in-memory ring of recent warnings and errors for the failure dump printed
// on a nonzero exit.
type Logger struct {
	mu     sync.Mutex
	zl     zerolog.Logger
	file   *os.File
	path   string
	recent []string
}

// NewLogger opens a log file named after the tool and the current pid in
// the system temp directory. The pid in the name is what stale-log cleanup
// keys on.
func NewLogger() (*Logger, error) {
	return NewLoggerWithSuffix("")
}

// NewLoggerWithSuffix opens a log file with an extra name suffix, used when
// several loggers must coexist within one process (tests, subtasks).
func NewLoggerWithSuffix(suffix string) (*Logger, error) {
	name := fmt.Sprintf("%s-%d", PrimaryLogPrefix(), os.Getpid())
	if s := SanitizeLogSuffix(suffix); s != "" {
		name += "-" + s
	}
	path := filepath.Join(os.TempDir(), name+".log")

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) // #nosec G304 -- path is built from the tool name and pid
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	zl := zerolog.New(file).With().Timestamp().Logger()
	return &Logger{zl: zl, file: file, path: path}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

func (l *Logger) Debug(msg string) {
	if l == nil {
		return
	}
	l.zl.Debug().Msg(msg)
}

func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.zl.Info().Msg(msg)
}

func (l *Logger) Warn(msg string) {
	if l == nil {
		return
	}
	l.zl.Warn().Msg(msg)
	l.remember("WARN: " + msg)
}

func (l *Logger) Error(msg string) {
	if l == nil {
		return
	}
	l.zl.Error().Msg(msg)
	l.remember("ERROR: " + msg)
}

func (l *Logger) remember(entry string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, entry)
	if len(l.recent) > recentEntryLimit {
		l.recent = l.recent[len(l.recent)-recentEntryLimit:]
	}
}

// ExtractRecentErrors returns up to n of the most recent warning/error
// entries, oldest first.
func (l *Logger) ExtractRecentErrors(n int) []string {
	if l == nil || n <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.recent) <= n {
		return append([]string(nil), l.recent...)
	}
	return append([]string(nil), l.recent[len(l.recent)-n:]...)
}

// Flush forces buffered log data to disk.
func (l *Logger) Flush() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Sync()
}

// Close closes the underlying log file. The file itself is left in place;
// callers decide whether to remove it.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// RemoveLogFile deletes this run's log file.
func (l *Logger) RemoveLogFile() error {
	if l == nil || l.path == "" {
		return nil
	}
	return removeLogFileFn(l.path)
}

// SanitizeLogSuffix keeps only characters safe for a file name.
func SanitizeLogSuffix(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
