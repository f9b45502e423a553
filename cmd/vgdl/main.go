// vgdl runs rule-driven sprite games headless and keeps their results.
//
// Usage:
//
//	vgdl list                - List bundled games and agents
//	vgdl describe <game>     - Show a game's types, interactions and terminations
//	vgdl run <game>          - Play a game with an agent
//	vgdl runs <game>         - Show stored results for a game
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible games
//	--db <path>          - Set database path (default: ~/.vgdl/runs.db)
//	--config <path>      - Engine config file
//	--log-level <level>  - debug, info, warn or error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/vgdl-arcade/internal/config"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string

	logger *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vgdl",
	Short: "Run rule-driven sprite games headless",
	Long: `vgdl loads declarative sprite games, plays them with built-in agents
and stores the results.

Available commands:
  list      - Show bundled games and agents
  describe  - Explain a game's rules
  run       - Play a game
  runs      - View stored results

Examples:
  vgdl list
  vgdl describe aliens
  vgdl run sonar --agent qlearn --episodes 20
  vgdl runs sonar`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "vgdl",
		})
		logger.SetLevel(diag.ParseLevel(flagLogLevel))
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.vgdl/runs.db", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Engine config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadEngine reads the engine config selected by --config.
func loadEngine() (config.EngineConfig, error) {
	cfg, err := config.LoadEngine(flagConfig)
	if err != nil {
		return cfg, fmt.Errorf("loading engine config: %w", err)
	}
	return cfg, nil
}
