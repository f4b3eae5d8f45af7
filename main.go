// gridlife runs rule-driven agents on an unbounded color grid.
//
// Usage:
//
//	gridlife run                 - Run a simulation in the terminal
//	gridlife serve               - Run a simulation and stream ticks over websocket
//	gridlife validate <file>     - Check a rule list
//	gridlife presets [name]      - List or print built-in rule lists
//	gridlife rules ...           - Manage the rulebook
//	gridlife replay <trace>      - Summarize a recorded trace
//	gridlife config              - Print the effective configuration
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nstehr/gridlife/config"
)

const banner = `
 ██████╗ ██████╗ ██╗██████╗ ██╗     ██╗███████╗███████╗
██╔════╝ ██╔══██╗██║██╔══██╗██║     ██║██╔════╝██╔════╝
██║  ███╗██████╔╝██║██║  ██║██║     ██║█████╗  █████╗
██║   ██║██╔══██╗██║██║  ██║██║     ██║██╔══╝  ██╔══╝
╚██████╔╝██║  ██║██║██████╔╝███████╗██║██║     ███████╗
 ╚═════╝ ╚═╝  ╚═╝╚═╝╚═════╝ ╚══════╝╚═╝╚═╝     ╚══════╝

Rule-Driven Grid Agents`

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
	flagDBPath    string

	// cfg is loaded before any subcommand runs.
	cfg config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gridlife",
	Short: "Rule-driven agents on an unbounded color grid",
	Long: `gridlife places agents on a grid of colored cells. Every tick each agent
runs the first rule of its JSON rule list whose condition matches, painting
cells, turning, moving and spawning new agents.

Examples:
  gridlife run --preset langton --ticks 1000
  gridlife run --rules ./mine.json --at 0,0 --at 10,10 --trace run.zst
  gridlife serve --addr :8080
  gridlife validate ./mine.json
  gridlife rules save mine ./mine.json`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: ~/.gridlife/config.yaml, ./gridlife.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: text, json, pretty (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to rulebook database (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(configCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, path, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	cfg = loaded

	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}

	logger, err := newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if path == "" {
		path = "embedded default"
	}
	slog.Debug("config loaded", "source", path, "command", cmd.Name())
	return nil
}
