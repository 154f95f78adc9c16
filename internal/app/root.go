// Package app contains the Cobra command tree for focuswatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuswatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "focuswatch",
	Short: "Activity classification and escalating break reminders",
	Long: `focuswatch classifies what you are doing from screen and camera change
rates, tracks continuous work and entertainment episodes, and escalates
reminders when you have worked too long or drifted off for too long.

Signals are read from a newline-delimited JSON feed written by a capture
process (see 'focuswatch watch --help').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.AutoColor(os.Stdout, flagNoColor)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("focuswatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  watch     Run the engine against a sample feed")
		fmt.Println("  mcp       Run the engine behind an MCP stdio control server")
		fmt.Println("  history   List logged reminders and status episodes")
		fmt.Println("  classify  Classify a single sample")
		fmt.Println("  suggest   Preview the suggestions attached to a reminder")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/focuswatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
