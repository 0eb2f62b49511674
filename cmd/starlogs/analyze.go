package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/starlogs/starlogs-go/internal/analyzer"
	"github.com/starlogs/starlogs-go/pkg/starlogs"
)

var (
	// analyze flags
	analyzeIncludeTypes []string
	analyzeExcludeTypes []string
	analyzeSince        string
	analyzeUntil        string
	analyzeFormat       string
	analyzeReport       bool
	analyzeStopOnError  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <logfile>",
	Short: "Analyze a Game.log file offline",
	Long: `Analyze a complete Star Citizen Game.log file and output its events.

Unlike 'serve', this command processes a finished file without real-time
following. Events are printed as JSON Lines by default; --report produces
a single JSON document with per-type statistics and system information
scraped from the log header.

Examples:
  # Stream all events as JSON Lines
  starlogs analyze Game.log

  # Human-readable output
  starlogs analyze --format pretty Game.log

  # Only vehicle destructions
  starlogs analyze --include-types vehicle_destroy_soft,vehicle_destroy_full Game.log

  # Full report with stats and system info
  starlogs analyze --report Game.log

  # Pipe to jq for filtering
  starlogs analyze Game.log | jq 'select(.type == "pvp_kill")'`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeIncludeTypes, "include-types", nil,
		"Event types to include (comma-separated: kill,pvp_kill,fps_death)")
	analyzeCmd.Flags().StringSliceVar(&analyzeExcludeTypes, "exclude-types", nil,
		"Event types to exclude (comma-separated)")
	analyzeCmd.Flags().StringVar(&analyzeSince, "since", "",
		"Only events at/after timestamp (RFC3339 format, e.g., 2025-10-15T12:00:00Z)")
	analyzeCmd.Flags().StringVar(&analyzeUntil, "until", "",
		"Only events before timestamp (RFC3339 format)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	analyzeCmd.Flags().BoolVar(&analyzeReport, "report", false,
		"Output a single JSON report with stats and system info")
	analyzeCmd.Flags().BoolVar(&analyzeStopOnError, "stop-on-error", false,
		"Stop on first error instead of skipping")

	registerEventTypeCompletion(analyzeCmd, "include-types")
	registerEventTypeCompletion(analyzeCmd, "exclude-types")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Validate format
	if !ValidFormats[analyzeFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", analyzeFormat)
	}

	// Normalize and validate event types
	includes, err := NormalizeEventTypes(analyzeIncludeTypes)
	if err != nil {
		return err
	}
	excludes, err := NormalizeEventTypes(analyzeExcludeTypes)
	if err != nil {
		return err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return err
	}

	// Parse time range
	sinceTime, untilTime, err := parseTimeRange(analyzeSince, analyzeUntil)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build parse options
	var opts []starlogs.ParseOption
	if len(includes) > 0 {
		opts = append(opts, starlogs.WithParseIncludeKinds(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, starlogs.WithParseExcludeKinds(excludes...))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, starlogs.WithParseTimeRange(sinceTime, untilTime))
	}
	if analyzeStopOnError {
		opts = append(opts, starlogs.WithParseStopOnError(true))
	}

	path := args[0]

	if analyzeReport {
		report, err := analyzer.Analyze(ctx, path, opts...)
		if err != nil {
			return fmt.Errorf("analyze error: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for ev, err := range starlogs.ParseFile(ctx, path, opts...) {
		if err != nil {
			// Ctrl+C: exit silently
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("parse error: %w", err)
		}

		if err := OutputEvent(analyzeFormat, ev, os.Stdout); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	return nil
}

// parseTimeRange parses since and until strings into time.Time values.
func parseTimeRange(since, until string) (time.Time, time.Time, error) {
	var sinceTime, untilTime time.Time
	var err error

	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since format: %w (expected RFC3339, e.g., 2025-10-15T12:00:00Z)", err)
		}
	}

	if until != "" {
		untilTime, err = time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until format: %w (expected RFC3339, e.g., 2025-10-15T12:00:00Z)", err)
		}
	}

	// Validate that since is before until
	if !sinceTime.IsZero() && !untilTime.IsZero() && sinceTime.After(untilTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceTime, untilTime, nil
}
