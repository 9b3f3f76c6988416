package task

import "time"

// DefaultTimeout matches the per-command limit the updater has always used.
const DefaultTimeout = 5 * time.Minute

// NoOutput is the sentinel used when a command produced no output at all.
const NoOutput = "No output"

// Task is one external update command. The Name doubles as the display
// label and the unique key outcomes are collected under, so it must be
// unique within a run. Tasks are immutable once created; the order of the
// input slice is the canonical display order.
type Task struct {
	Name       string        `json:"name"`
	Command    string        `json:"command"`
	LoginShell bool          `json:"login_shell,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
}

// Outcome is the captured result of running one Task. It is created exactly
// once by the runner and never mutated afterwards.
type Outcome struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Entry pairs a Task with its Outcome in the final report.
type Entry struct {
	Task    Task    `json:"task"`
	Outcome Outcome `json:"outcome"`
}

// Report is the ordered aggregation of all Outcomes for a run. Entries are
// always in the original task-list order regardless of completion order,
// and every input Task has exactly one Entry.
type Report struct {
	Entries []Entry       `json:"entries"`
	Total   time.Duration `json:"total"`
}

// Failed returns the entries whose command did not succeed.
func (r Report) Failed() []Entry {
	var failed []Entry
	for _, e := range r.Entries {
		if !e.Outcome.Success {
			failed = append(failed, e)
		}
	}
	return failed
}
