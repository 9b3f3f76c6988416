package logger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Injectable for tests; see testhooks.go.
var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = getProcessStartTime
	removeLogFileFn     = os.Remove
	globLogFiles        = filepath.Glob
	fileStatFn          = os.Lstat
)

// staleLogMaxAge is the fallback age threshold for log files whose owning
// pid cannot be determined from the name.
const staleLogMaxAge = 24 * time.Hour

// CleanupStats reports what a cleanup pass did.
type CleanupStats struct {
	Scanned int
	Deleted int
	Skipped int
}

// CleanupOldLogs removes log files left behind by runs that are no longer
// alive. A file is stale when its embedded pid is not running, or when the
// process under that pid started after the file was last written (pid
// reuse). Files without a parseable pid are removed once old enough.
func CleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats
	var firstErr error

	for _, prefix := range LogPrefixes() {
		pattern := filepath.Join(os.TempDir(), prefix+"-*.log")
		matches, err := globLogFiles(pattern)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, path := range matches {
			stats.Scanned++
			pid, ok := pidFromLogName(prefix, path)
			if ok && pid == os.Getpid() {
				stats.Skipped++
				continue
			}

			if stale, err := isStaleLog(path, pid, ok); err != nil {
				stats.Skipped++
				if firstErr == nil {
					firstErr = err
				}
			} else if !stale {
				stats.Skipped++
			} else if err := removeLogFileFn(path); err != nil {
				stats.Skipped++
				if firstErr == nil {
					firstErr = err
				}
			} else {
				stats.Deleted++
			}
		}
	}

	return stats, firstErr
}

func isStaleLog(path string, pid int, pidKnown bool) (bool, error) {
	info, err := fileStatFn(path)
	if err != nil {
		return false, err
	}

	if !pidKnown {
		return time.Since(info.ModTime()) > staleLogMaxAge, nil
	}

	if !processRunningCheck(pid) {
		return true, nil
	}

	// The pid is alive but may have been recycled: a process that started
	// after the log was last written cannot be the one that created it.
	started := processStartTimeFn(pid)
	if !started.IsZero() && started.After(info.ModTime()) {
		return true, nil
	}
	return false, nil
}

// pidFromLogName extracts the pid from "<prefix>-<pid>[-suffix].log".
func pidFromLogName(prefix, path string) (int, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".log")
	rest, found := strings.CutPrefix(base, prefix+"-")
	if !found || rest == "" {
		return 0, false
	}
	if idx := strings.IndexByte(rest, '-'); idx >= 0 {
		rest = rest[:idx]
	}
	pid, err := strconv.Atoi(rest)
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}
