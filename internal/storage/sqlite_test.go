package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func soloRun(game, level string, outcome core.Outcome, score float64, ticks int) Run {
	return Run{
		Game:       game,
		Level:      level,
		Seed:       1,
		Controller: "random",
		Ticks:      ticks,
		Players:    []PlayerResult{{Player: 0, Outcome: outcome, Score: score, Tick: ticks}},
	}
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveRunAndRecent(t *testing.T) {
	store := openTestStore(t)

	first, err := store.SaveRun(soloRun("aliens", "lvl0", core.OutcomeLose, 3, 120))
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	second, err := store.SaveRun(soloRun("aliens", "lvl1", core.OutcomeWin, 14, 300))
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if _, err := store.SaveRun(soloRun("sonar", "reef", core.OutcomeWin, 10, 80)); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	if first == (ulid.ULID{}) || first.Compare(second) >= 0 {
		t.Errorf("run ids %s and %s should be fresh and increasing", first, second)
	}

	runs, err := store.RecentRuns("aliens", 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[1].ID != first {
		t.Errorf("runs should be newest first, got %s then %s", runs[0].ID, runs[1].ID)
	}
	if runs[0].Level != "lvl1" || runs[0].Ticks != 300 || runs[0].Controller != "random" {
		t.Errorf("unexpected run %+v", runs[0])
	}
	if len(runs[0].Players) != 1 || runs[0].Players[0].Outcome != core.OutcomeWin || runs[0].Players[0].Score != 14 {
		t.Errorf("unexpected players %+v", runs[0].Players)
	}

	limited, err := store.RecentRuns("aliens", 1)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 run with limit, got %d", len(limited))
	}
}

func TestSaveRunKeepsGivenID(t *testing.T) {
	store := openTestStore(t)
	id := ulid.Make()

	run := soloRun("duel", "arena", core.OutcomeWin, 5, 90)
	run.ID = id
	run.Aborted = true
	run.Players = append(run.Players, PlayerResult{Player: 1, Outcome: core.OutcomeLose, Score: 2, Tick: 90})

	got, err := store.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if got != id {
		t.Errorf("SaveRun() = %s, expected %s", got, id)
	}

	runs, err := store.RecentRuns("duel", 5)
	if err != nil || len(runs) != 1 {
		t.Fatalf("RecentRuns() = %v, %v", runs, err)
	}
	if !runs[0].Aborted || len(runs[0].Players) != 2 || runs[0].Players[1].Player != 1 {
		t.Errorf("unexpected run %+v", runs[0])
	}

	if _, err := store.SaveRun(run); err == nil {
		t.Error("saving the same id twice should fail")
	}
}

func TestBestScores(t *testing.T) {
	store := openTestStore(t)

	for _, r := range []Run{
		soloRun("sonar", "reef", core.OutcomeWin, 10, 50),
		soloRun("sonar", "reef", core.OutcomeLose, -5, 70),
		soloRun("sonar", "trench", core.OutcomeWin, 25, 90),
		soloRun("sonar", "trench", core.OutcomeDisqualified, core.ScoreDisqualified, 3),
	} {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	scores, err := store.BestScores("sonar", 10)
	if err != nil {
		t.Fatalf("BestScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores without the disqualification, got %d", len(scores))
	}
	if scores[0].Score != 25 || scores[0].Level != "trench" {
		t.Errorf("Expected best score 25 on trench, got %+v", scores[0])
	}
	if scores[2].Score != -5 || scores[2].Outcome != core.OutcomeLose {
		t.Errorf("Expected lowest score -5, got %+v", scores[2])
	}
}

func TestGameStats(t *testing.T) {
	store := openTestStore(t)

	// No runs yet
	stats, err := store.GameStats("aliens")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if stats.Runs != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", stats)
	}

	store.SaveRun(soloRun("aliens", "lvl0", core.OutcomeWin, 12, 100))
	store.SaveRun(soloRun("aliens", "lvl0", core.OutcomeLose, 4, 300))

	stats, err = store.GameStats("aliens")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if stats.Runs != 2 || stats.Wins != 1 {
		t.Errorf("Expected 2 runs and 1 win, got %+v", stats)
	}
	if stats.HighScore != 12 || stats.AvgScore != 8 || stats.AvgTicks != 200 {
		t.Errorf("unexpected aggregates %+v", stats)
	}
	if stats.LastPlayed.IsZero() {
		t.Error("LastPlayed should be set")
	}
}

func TestClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(soloRun("aliens", "lvl0", core.OutcomeWin, 1, 10))
	store.SaveRun(soloRun("sonar", "reef", core.OutcomeWin, 1, 10))

	if err := store.ClearRuns("aliens"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.RecentRuns("aliens", 10)
	if len(runs) != 0 {
		t.Errorf("Expected 0 aliens runs after clear, got %d", len(runs))
	}
	scores, _ := store.BestScores("aliens", 10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 aliens scores after clear, got %d", len(scores))
	}
	runs, _ = store.RecentRuns("sonar", 10)
	if len(runs) != 1 {
		t.Errorf("sonar runs should survive, got %d", len(runs))
	}
}
