package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "starlogs",
	Short: "Star Citizen log monitor and analyzer",
	Long: `starlogs monitors and analyzes Star Citizen Game.log files.

It classifies combat, death, and vehicle destruction events, correlates
vehicle destructions with occupant deaths, and streams everything to
connected clients with bounded history replay. Log files can also be
analyzed offline to a JSON report.

This is an unofficial tool and is not affiliated with Cloud Imperium Games.`,
	SilenceUsage: true, // Don't show usage on error
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("starlogs %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
