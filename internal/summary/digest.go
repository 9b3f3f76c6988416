package summary

import (
	"strings"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/utils"
)

const digestLineLimit = 150

// FailureDigest builds a short local digest of what went wrong, used as the
// fallback when the remote summarizer is unavailable. The raw report has
// already been printed; this just pulls the key error line out of each
// failing task.
func FailureDigest(r task.Report) string {
	failed := r.Failed()
	if len(failed) == 0 {
		return "All updates completed successfully."
	}

	var b strings.Builder
	b.WriteString("Failed updates:\n")
	for _, e := range failed {
		detail := extractErrorDetail(e.Outcome.Output, digestLineLimit)
		if detail == "" {
			detail = "no output captured"
		}
		b.WriteString("- " + e.Task.Name + ": " + detail + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// extractErrorDetail pulls the most error-looking lines out of a task's
// captured output. Falls back to the last few nonempty lines when nothing
// matches.
func extractErrorDetail(message string, maxLen int) string {
	if message == "" || maxLen <= 0 {
		return ""
	}

	lines := strings.Split(message, "\n")
	var errorLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") ||
			strings.Contains(lower, "fail") ||
			strings.Contains(lower, "timeout") ||
			strings.Contains(lower, "cancelled") ||
			strings.Contains(lower, "not found") ||
			strings.Contains(lower, "cannot") ||
			strings.Contains(lower, "denied") {
			errorLines = append(errorLines, line)
		}
	}

	if len(errorLines) == 0 {
		start := len(lines) - 3
		if start < 0 {
			start = 0
		}
		for _, line := range lines[start:] {
			line = strings.TrimSpace(line)
			if line != "" {
				errorLines = append(errorLines, line)
			}
		}
	}

	return utils.SafeTruncate(strings.Join(errorLines, " | "), maxLen)
}
