package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/vgdl-arcade/internal/agent"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/games"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bundled games and agents",
	Long:  `Shows every bundled game with its levels, and the agents that can play them.`,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	names := games.List()
	if len(names) == 0 {
		fmt.Println("No games available.")
		return nil
	}

	var rows [][]string
	for _, name := range names {
		g, err := games.Load(name, diag.NewWithLogger(logger.WithPrefix(name)))
		if err != nil {
			return err
		}
		loader, err := games.Levels(name)
		if err != nil {
			return err
		}
		ids, err := loader.ListIDs()
		if err != nil {
			return err
		}
		rows = append(rows, []string{name, strconv.Itoa(g.Players), strconv.Itoa(len(ids)), g.Description})
	}
	printTitle("Games")
	printTable([]string{"Game", "Players", "Levels", "Description"}, rows)
	fmt.Println()

	rows = rows[:0]
	for _, info := range agent.List() {
		rows = append(rows, []string{info.Name, info.Description})
	}
	printTitle("Agents")
	printTable([]string{"Agent", "Description"}, rows)

	fmt.Println()
	fmt.Println("Run 'vgdl run <game> --agent <agent>' to play a game.")
	return nil
}
