package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/pterm/pterm"

	"github.com/kenryu42/tmuxifier-session-scripts/internal/config"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/executor"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/summary"
	"github.com/kenryu42/tmuxifier-session-scripts/internal/task"

	ilogger "github.com/kenryu42/tmuxifier-session-scripts/internal/logger"
)

// exitCodeInterrupted follows the shell convention for SIGINT.
const exitCodeInterrupted = 130

func runUpdates(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.JSON {
		pterm.DefaultSection.Println("🚀 Starting System Updates")
	}

	restore := executor.SetProgressFn(func(t task.Task, out task.Outcome) {
		if cfg.JSON {
			return
		}
		elapsed := out.Duration.Round(time.Second)
		if out.Success {
			pterm.Success.Printfln("%s completed successfully (%s)", t.Name, elapsed)
		} else {
			pterm.Warning.Printfln("%s completed with warnings/errors (%s)", t.Name, elapsed)
		}
	})
	defer restore()

	report := executor.ExecuteConcurrent(ctx, cfg.Tasks, cfg.Workers)
	interrupted := ctx.Err() != nil

	if cfg.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			ilogger.LogError(fmt.Sprintf("Failed to encode report: %v", err))
			fmt.Fprintf(os.Stderr, "ERROR: failed to encode report: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
	} else {
		pterm.DefaultSection.Println("Full Update Output")
		fmt.Println(report.Render())

		if !cfg.NoSummary {
			printSummary(ctx, cfg, report)
		}
	}

	if interrupted {
		ilogger.LogWarn("Run interrupted; report covers completed tasks only")
		if !cfg.JSON {
			pterm.Error.Println("Interrupted; report covers completed tasks only")
		}
		return exitCodeInterrupted
	}

	if !cfg.JSON {
		pterm.Success.Println("🎉 System update process completed!")
	}
	return 0
}

// printSummary is best-effort: the raw report is already on screen, so any
// summarizer failure degrades to a warning plus a locally-built digest.
func printSummary(ctx context.Context, cfg *config.Config, report task.Report) {
	pterm.DefaultSection.Println("Generating Summary")

	client := summary.NewClient(summary.WithModel(cfg.Model))
	text, err := client.Summarize(ctx, report.Render())
	if err != nil {
		ilogger.LogWarn(fmt.Sprintf("Summary unavailable: %v", err))
		pterm.Warning.Printfln("Summary unavailable: %v", err)
		fmt.Println(summary.FailureDigest(report))
		return
	}

	fmt.Println("📋 SUMMARY:")
	fmt.Println(strings.Repeat("-", 20))
	fmt.Println(text)
}
