// Package app contains the Cobra command tree for formwatch.
package app

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/formwatch/internal/config"
	"github.com/blackwell-systems/formwatch/internal/logging"
	"github.com/blackwell-systems/formwatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor     bool
	flagJSON        bool
	flagVerbose     bool
	flagConfig      string
	flagMetricsFile string
)

// cfg is loaded once per invocation in PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "formwatch",
	Short: "Exercise form analysis from body-pose landmarks",
	Long: `formwatch scores squat, push-up and plank form from tracked body
joints. It segments movement into reps, aggregates each rep, and summarizes
a session with insights and coaching recommendations.

Pose input is JSON Lines, one capture per line, with 2D landmarks, 3D joint
transforms, or both.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("formwatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  analyze   Analyze a recorded pose stream (batch mode)")
		fmt.Println("  live      Analyze a pose stream as it arrives (real-time mode)")
		fmt.Println("  bands     Print and validate the scoring tables")
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
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/formwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
}

// setup loads configuration and applies logging and color settings.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logging.Setup(logging.SetupParams{
		FileName:   cfg.Log.File,
		ToConsole:  cfg.Log.Stdout,
		Level:      level,
		FormatJSON: cfg.Log.JSON,
	})

	if flagMetricsFile != "" {
		cfg.Metrics.File = flagMetricsFile
	}

	output.SetNoColor(flagNoColor || !cfg.Output.Color || !stdoutIsTerminal())

	log.WithField("version", appVersion).Debug("formwatch starting")
	return nil
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
