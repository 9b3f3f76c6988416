package task

import (
	"strings"
	"unicode/utf8"
)

const reportBanner = "SYSTEM UPDATE REPORT"

// Render produces the plain-text report that gets printed and fed to the
// summarizer. The output depends only on the entries, in order, so a given
// set of outcomes always renders byte-identically.
func (r Report) Render() string {
	var b strings.Builder
	b.WriteString(reportBanner + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")

	for _, e := range r.Entries {
		b.WriteString("\n" + e.Task.Name + ":\n")
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(e.Task.Name)) + "\n")

		out := e.Outcome.Output
		if out == "" {
			out = NoOutput
		}
		b.WriteString(out + "\n")

		if !e.Outcome.Success {
			b.WriteString("⚠️ Command failed or had issues\n")
		}
	}

	return b.String()
}
