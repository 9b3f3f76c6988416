package logger

// ToolName is the fixed name for this tool.
const ToolName = "sysupdate"

// CurrentToolName returns the tool name (always "sysupdate").
func CurrentToolName() string { return ToolName }

// LogPrefixes returns the log file name prefixes to look for.
func LogPrefixes() []string { return []string{ToolName} }

// PrimaryLogPrefix returns the preferred filename prefix for log files.
func PrimaryLogPrefix() string { return ToolName }
