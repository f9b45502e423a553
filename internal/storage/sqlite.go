// Package storage provides SQLite-based persistence for game run results.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// Run is one finished game.
type Run struct {
	ID         ulid.ULID
	Game       string
	Level      string
	Seed       int64
	Controller string
	Ticks      int
	Aborted    bool
	CreatedAt  time.Time
	Players    []PlayerResult
}

// PlayerResult is the final state of one player in a run.
type PlayerResult struct {
	Player  int
	Outcome core.Outcome
	Score   float64
	Tick    int
}

// ScoreEntry is one player's score in a stored run.
type ScoreEntry struct {
	RunID     ulid.ULID
	Level     string
	Player    int
	Outcome   core.Outcome
	Score     float64
	CreatedAt time.Time
}

// GameStats contains aggregated statistics for a game.
type GameStats struct {
	Game       string
	Runs       int
	Wins       int
	HighScore  float64
	AvgScore   float64
	AvgTicks   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			level TEXT NOT NULL,
			seed INTEGER NOT NULL,
			controller TEXT NOT NULL,
			ticks INTEGER NOT NULL,
			aborted INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_game ON runs(game);

		CREATE TABLE IF NOT EXISTS run_players (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			player INTEGER NOT NULL,
			outcome INTEGER NOT NULL,
			score REAL NOT NULL,
			tick INTEGER NOT NULL,
			PRIMARY KEY (run_id, player)
		);
		CREATE INDEX IF NOT EXISTS idx_run_players_score ON run_players(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run with its player results. A zero run ID is
// replaced by a fresh ULID. Returns the ID the run was stored under.
func (s *Store) SaveRun(run Run) (ulid.ULID, error) {
	if run.ID == (ulid.ULID{}) {
		run.ID = ulid.Make()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, game, level, seed, controller, ticks, aborted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Game, run.Level, run.Seed, run.Controller, run.Ticks, run.Aborted,
	)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("storage: cannot save run: %w", err)
	}

	for _, p := range run.Players {
		_, err = tx.Exec(
			`INSERT INTO run_players (run_id, player, outcome, score, tick) VALUES (?, ?, ?, ?, ?)`,
			run.ID.String(), p.Player, int(p.Outcome), p.Score, p.Tick,
		)
		if err != nil {
			return ulid.ULID{}, fmt.Errorf("storage: cannot save player %d: %w", p.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ulid.ULID{}, fmt.Errorf("storage: cannot commit run: %w", err)
	}
	return run.ID, nil
}

// RecentRuns retrieves the latest runs of a game, newest first.
// ULIDs sort by creation time, so ordering by id is chronological.
func (s *Store) RecentRuns(game string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, game, level, seed, controller, ticks, aborted, created_at
		 FROM runs
		 WHERE game = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		game, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var id string
		var createdAt any
		if err := rows.Scan(&id, &r.Game, &r.Level, &r.Seed, &r.Controller, &r.Ticks, &r.Aborted, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if r.ID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("storage: bad run id %q: %w", id, err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	for i := range runs {
		players, err := s.runPlayers(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Players = players
	}
	return runs, nil
}

func (s *Store) runPlayers(id ulid.ULID) ([]PlayerResult, error) {
	rows, err := s.db.Query(
		`SELECT player, outcome, score, tick FROM run_players WHERE run_id = ? ORDER BY player`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query players: %w", err)
	}
	defer rows.Close()

	var out []PlayerResult
	for rows.Next() {
		var p PlayerResult
		var outcome int
		if err := rows.Scan(&p.Player, &outcome, &p.Score, &p.Tick); err != nil {
			return nil, fmt.Errorf("storage: cannot scan player: %w", err)
		}
		p.Outcome = core.Outcome(outcome)
		out = append(out, p)
	}
	return out, rows.Err()
}

// BestScores retrieves the top N player scores of a game.
// Results are ordered by score descending, earlier runs first on ties.
func (s *Store) BestScores(game string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.level, p.player, p.outcome, p.score, r.created_at
		 FROM run_players p JOIN runs r ON r.id = p.run_id
		 WHERE r.game = ? AND p.outcome != ?
		 ORDER BY p.score DESC, r.id ASC
		 LIMIT ?`,
		game, int(core.OutcomeDisqualified), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var id string
		var outcome int
		var createdAt any
		if err := rows.Scan(&id, &e.Level, &e.Player, &outcome, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if e.RunID, err = ulid.Parse(id); err != nil {
			return nil, fmt.Errorf("storage: bad run id %q: %w", id, err)
		}
		e.Outcome = core.Outcome(outcome)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// GameStats retrieves aggregated statistics for a specific game.
// Only player 1 results are counted so multi-player games count each run once.
func (s *Store) GameStats(game string) (*GameStats, error) {
	stats := &GameStats{Game: game}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN p.outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(p.score), 0), COALESCE(AVG(p.score), 0),
		        COALESCE(AVG(r.ticks), 0), MAX(r.created_at)
		 FROM runs r JOIN run_players p ON p.run_id = r.id AND p.player = 0
		 WHERE r.game = ?`,
		int(core.OutcomeWin), game,
	).Scan(&stats.Runs, &stats.Wins, &stats.HighScore, &stats.AvgScore, &stats.AvgTicks, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// ClearRuns deletes every stored run of a game.
func (s *Store) ClearRuns(game string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM run_players WHERE run_id IN (SELECT id FROM runs WHERE game = ?)`, game); err != nil {
		return fmt.Errorf("storage: cannot clear players: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE game = ?`, game); err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return tx.Commit()
}

// parseTime handles the datetime column arriving as time.Time or string.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
