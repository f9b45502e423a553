package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/vgdl-arcade/internal/games"
	"github.com/vovakirdan/vgdl-arcade/internal/storage"
)

var (
	flagLimit int
	flagClear bool
)

var runsCmd = &cobra.Command{
	Use:   "runs <game>",
	Short: "Show stored results for a game",
	Long: `Displays statistics, the best scores and the most recent runs of a game.

Examples:
  vgdl runs aliens
  vgdl runs sonar --limit 20
  vgdl runs duel --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries per table")
	runsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all stored runs of the game")
}

func runRuns(cmd *cobra.Command, args []string) {
	gameName := args[0]

	if !games.Exists(gameName) {
		fmt.Fprintf(os.Stderr, "Error: unknown game '%s'\n", gameName)
		fmt.Fprintln(os.Stderr, "Run 'vgdl list' to see available games.")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRuns(gameName); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared all runs of %s.\n", gameName)
		return
	}

	stats, err := store.GameStats(gameName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stats: %v\n", err)
		os.Exit(1)
	}
	if stats.Runs == 0 {
		fmt.Printf("No runs recorded for %s yet.\n", gameName)
		fmt.Printf("Run 'vgdl run %s' to play!\n", gameName)
		return
	}

	printTitle(fmt.Sprintf("%s statistics", gameName))
	printTable([]string{"Runs", "Wins", "High score", "Avg score", "Avg ticks", "Last played"}, [][]string{{
		strconv.Itoa(stats.Runs),
		strconv.Itoa(stats.Wins),
		formatScore(stats.HighScore),
		fmt.Sprintf("%.1f", stats.AvgScore),
		fmt.Sprintf("%.0f", stats.AvgTicks),
		stats.LastPlayed.Format("2006-01-02 15:04"),
	}})
	fmt.Println()

	scores, err := store.BestScores(gameName, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scores: %v\n", err)
		os.Exit(1)
	}
	var rows [][]string
	for i, e := range scores {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatScore(e.Score),
			strconv.Itoa(e.Player + 1),
			e.Outcome.String(),
			e.Level,
			e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	printTitle("Best scores")
	printTable([]string{"Rank", "Score", "Player", "Outcome", "Level", "Date"}, rows)
	fmt.Println()

	runs, err := store.RecentRuns(gameName, flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading runs: %v\n", err)
		os.Exit(1)
	}
	rows = rows[:0]
	for _, r := range runs {
		results := make([]string, len(r.Players))
		for i, p := range r.Players {
			results[i] = fmt.Sprintf("%s %s", p.Outcome, formatScore(p.Score))
		}
		status := ""
		if r.Aborted {
			status = "aborted"
		}
		rows = append(rows, []string{
			r.ID.String(),
			r.Level,
			r.Controller,
			strconv.Itoa(r.Ticks),
			strings.Join(results, " / "),
			status,
		})
	}
	printTitle("Recent runs")
	printTable([]string{"Run", "Level", "Agent", "Ticks", "Results", ""}, rows)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
