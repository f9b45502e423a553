package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/vgdl-arcade/internal/agent"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/games"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
	"github.com/vovakirdan/vgdl-arcade/internal/storage"
)

var (
	flagLevel      string
	flagAgent      string
	flagEpisodes   int
	flagMaxTicks   int
	flagActions    string
	flagFrameDelay time.Duration
	flagNoStore    bool
)

var runCmd = &cobra.Command{
	Use:   "run <game>",
	Short: "Play a game with an agent",
	Long: `Plays one or more episodes of a bundled game. Every player slot is
driven by a fresh instance of the chosen agent; learning agents keep
what they learned across episodes.

Examples:
  vgdl run aliens
  vgdl run sonar --level trench --agent qlearn --episodes 50
  vgdl run duel --agent replay --actions moves.txt --no-store`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&flagLevel, "level", "l", "", "Level ID (default: first level)")
	runCmd.Flags().StringVarP(&flagAgent, "agent", "a", "random", "Agent driving every player")
	runCmd.Flags().IntVarP(&flagEpisodes, "episodes", "n", 1, "Number of games to play")
	runCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Override the engine tick limit")
	runCmd.Flags().StringVar(&flagActions, "actions", "", "Action file for the replay agent")
	runCmd.Flags().DurationVar(&flagFrameDelay, "frame-delay", 0, "Pause between ticks")
	runCmd.Flags().BoolVar(&flagNoStore, "no-store", false, "Do not record results")
}

func runRun(cmd *cobra.Command, args []string) error {
	name := args[0]
	if !games.Exists(name) {
		return fmt.Errorf("unknown game %q, run 'vgdl list' to see available games", name)
	}
	if !agent.Exists(flagAgent) {
		return fmt.Errorf("unknown agent %q, run 'vgdl list' to see available agents", flagAgent)
	}
	if flagEpisodes < 1 {
		return fmt.Errorf("--episodes must be at least 1")
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}
	if flagMaxTicks > 0 {
		engine.MaxTicks = flagMaxTicks
	}
	if cmd.Flags().Changed("frame-delay") {
		engine.FrameDelay = flagFrameDelay
	}

	sink := diag.NewWithLogger(logger.WithPrefix(name))
	g, err := games.Load(name, sink)
	if err != nil {
		return err
	}
	loader, err := games.Levels(name)
	if err != nil {
		return err
	}
	levelID := flagLevel
	if levelID == "" {
		ids, err := loader.ListIDs()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("game %q has no levels", name)
		}
		levelID = ids[0]
	}
	lvl, err := loader.LoadByID(levelID)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	controllers := make([]sim.Controller, g.Players)
	for i := range controllers {
		c, err := agent.New(flagAgent, agent.Options{
			Seed:        seed + int64(i),
			ActionsFile: flagActions,
		})
		if err != nil {
			return err
		}
		controllers[i] = c
	}

	var store *storage.Store
	if !flagNoStore {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var rows [][]string
	for ep := 0; ep < flagEpisodes && ctx.Err() == nil; ep++ {
		epSeed := seed + int64(ep)
		for _, c := range controllers {
			if r, ok := c.(*agent.Replay); ok {
				r.Rewind()
			}
		}

		// Each episode gets its own sink on the game's logger.
		sess := g.NewSession(lvl, engine.Runtime(epSeed), nil)
		results := sim.Run(ctx, sess, controllers, sim.RunOptions{FrameDelay: engine.FrameDelay})
		logger.Debug("episode finished", "episode", ep+1, "ticks", sess.Tick(), "aborted", sess.Aborted())

		id := "-"
		if store != nil {
			runID, err := store.SaveRun(storage.Run{
				ID:         ulid.Make(),
				Game:       name,
				Level:      lvl.ID,
				Seed:       epSeed,
				Controller: flagAgent,
				Ticks:      sess.Tick(),
				Aborted:    sess.Aborted(),
				Players:    playerResults(results),
			})
			if err != nil {
				return err
			}
			id = runID.String()
		}

		for _, r := range results {
			rows = append(rows, []string{
				strconv.Itoa(ep + 1),
				strconv.Itoa(int(r.Player) + 1),
				r.Outcome.String(),
				formatScore(r.Score),
				strconv.Itoa(r.Tick),
				id,
			})
		}
	}

	printTitle(fmt.Sprintf("%s / %s (%s)", name, lvl.ID, flagAgent))
	printTable([]string{"Episode", "Player", "Outcome", "Score", "Ticks", "Run"}, rows)
	if ctx.Err() != nil {
		fmt.Println()
		fmt.Println("Interrupted.")
	}
	return nil
}

func playerResults(results []sim.Result) []storage.PlayerResult {
	out := make([]storage.PlayerResult, len(results))
	for i, r := range results {
		out[i] = storage.PlayerResult{
			Player:  int(r.Player),
			Outcome: r.Outcome,
			Score:   r.Score,
			Tick:    r.Tick,
		}
	}
	return out
}
