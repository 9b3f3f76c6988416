package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/config"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/summary"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"

	ilogger "github.com/kenryu42/tmuxifier-session-scripts/internal/logger"
)

var exitFn = os.Exit

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	Workers    int
	Timeout    int
	NoSummary  bool
	JSON       bool
	Model      string
	Version    bool
	Cleanup    bool
	ConfigFile string
}

func Main() {
	Run()
}

// Run is the program entrypoint for cmd/sysupdate/main.go.
func Run() {
	exitFn(run())
}

func run() int {
	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	name := ilogger.CurrentToolName()
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           name + " [flags]",
		Short:         "Run system update commands concurrently and summarize the results",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Printf("%s version %s\n", name, version)
				return nil
			}
			if opts.Cleanup {
				code := runCleanupMode()
				if code == 0 {
					return nil
				}
				return exitError{code: code}
			}

			exitCode := runWithLoggerAndCleanup(func() int {
				config.LoadEnvFile()

				v, err := config.NewViper(opts.ConfigFile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
					ilogger.LogError(err.Error())
					return 1
				}

				cfg, err := buildConfig(cmd, opts, v)
				if err != nil {
					fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
					ilogger.LogError(err.Error())
					return 1
				}

				ilogger.LogInfo(fmt.Sprintf("Parsed config: tasks=%d, workers=%d, timeout=%s", len(cfg.Tasks), cfg.Workers, cfg.Timeout))
				return runUpdates(cfg)
			})

			if exitCode == 0 {
				return nil
			}
			return exitError{code: exitCode}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.Flags(), opts)
	cmd.AddCommand(newVersionCommand(name), newCleanupCommand())

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.sysupdate/config.*)")
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")
	fs.BoolVar(&opts.Cleanup, "cleanup", false, "Clean up old logs and exit")

	fs.IntVar(&opts.Workers, "workers", config.DefaultWorkers, "Maximum update commands to run at once")
	fs.IntVar(&opts.Timeout, "timeout", config.DefaultTimeoutSeconds, "Per-command timeout in seconds")
	fs.BoolVar(&opts.NoSummary, "no-summary", false, "Skip the API summary; print only the raw report")
	fs.BoolVar(&opts.JSON, "json", false, "Emit the report as JSON")
	fs.StringVar(&opts.Model, "model", summary.DefaultModel, "Summarizer model name")
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Clean up old logs and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runCleanupMode()
			if code == 0 {
				return nil
			}
			return exitError{code: code}
		},
	}
}

func runCleanupMode() int {
	stats, err := ilogger.CleanupOldLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: log cleanup failed: %v\n", err)
		return 1
	}
	fmt.Printf("Scanned %d log file(s): deleted %d, kept %d\n", stats.Scanned, stats.Deleted, stats.Skipped)
	return 0
}

func runWithLoggerAndCleanup(fn func() int) (exitCode int) {
	logger, err := ilogger.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to initialize logger: %v\n", err)
		return 1
	}
	ilogger.SetLogger(logger)

	defer func() {
		logger := ilogger.ActiveLogger()
		if logger != nil {
			logger.Flush()
		}
		if err := ilogger.CloseLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to close logger: %v\n", err)
		}
		if logger == nil {
			return
		}

		keepLog := config.EnvFlagEnabled("SYSUPDATE_KEEP_LOGS")
		if exitCode != 0 {
			if entries := logger.ExtractRecentErrors(10); len(entries) > 0 {
				fmt.Fprintln(os.Stderr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(os.Stderr, entry)
				}
				if keepLog {
					fmt.Fprintf(os.Stderr, "Log file: %s\n", logger.Path())
				} else {
					fmt.Fprintf(os.Stderr, "Log file: %s (deleted)\n", logger.Path())
				}
			}
		}
		if !keepLog {
			_ = logger.RemoveLogFile()
		}
	}()

	// Clean up stale logs from previous runs.
	if stats, err := ilogger.CleanupOldLogs(); err == nil && stats.Deleted > 0 {
		ilogger.LogInfo(fmt.Sprintf("Removed %d stale log file(s)", stats.Deleted))
	}

	return fn()
}

func buildConfig(cmd *cobra.Command, opts *cliOptions, v *viper.Viper) (*config.Config, error) {
	workers := config.DefaultWorkers
	if cmd.Flags().Changed("workers") {
		workers = opts.Workers
	} else if v.IsSet("workers") {
		workers = v.GetInt("workers")
	}
	workers = config.NormalizeWorkers(workers)

	timeoutSec := config.DefaultTimeoutSeconds
	if cmd.Flags().Changed("timeout") {
		timeoutSec = opts.Timeout
	} else if v.IsSet("timeout") {
		timeoutSec = v.GetInt("timeout")
	}
	timeoutSec = config.NormalizeTimeoutSeconds(timeoutSec)
	timeout := time.Duration(timeoutSec) * time.Second

	noSummary := opts.NoSummary
	if !cmd.Flags().Changed("no-summary") && v.IsSet("no-summary") {
		noSummary = v.GetBool("no-summary")
	}

	jsonOut := opts.JSON
	if !cmd.Flags().Changed("json") && v.IsSet("json") {
		jsonOut = v.GetBool("json")
	}

	model := opts.Model
	if !cmd.Flags().Changed("model") {
		if val := v.GetString("model"); val != "" {
			model = val
		}
	}

	tasks, err := config.TasksFromViper(v)
	if err != nil {
		return nil, err
	}

	// The global timeout applies to every task that didn't set its own.
	for i := range tasks {
		if tasks[i].Timeout == task.DefaultTimeout {
			tasks[i].Timeout = timeout
		}
	}

	return &config.Config{
		Workers:   workers,
		Timeout:   timeout,
		NoSummary: noSummary,
		JSON:      jsonOut,
		Model:     model,
		Tasks:     tasks,
	}, nil
}
