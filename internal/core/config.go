package core

import "time"

// RuntimeConfig contains configuration passed to a simulation session.
// Sessions use this for limits, world scale and deterministic simulation.
type RuntimeConfig struct {
	Seed         int64         // RNG seed for deterministic gameplay
	BlockSize    int           // Size of one grid cell in world pixels
	MaxTicks     int           // Absolute tick ceiling, the game ends when reached
	MaxSprites   int           // Global cap on live sprite instances
	MaxWarnings  int           // Diagnostic ceiling before a game is forcibly ended
	HistoryTicks int           // Event history retention in ticks (0 = keep everything)
	ActTimeout   time.Duration // Controller decision budget (0 = unlimited)
	IncludeNil   bool          // Whether the NIL action is offered to controllers
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Seed:         0,
		BlockSize:    10,
		MaxTicks:     2000,
		MaxSprites:   10000,
		MaxWarnings:  50,
		HistoryTicks: 0,
		ActTimeout:   0,
		IncludeNil:   true,
	}
}
