// Package config provides YAML-based engine configuration loading for the
// simulator.
package config

import (
	"time"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

// EngineConfig contains the limits and pacing shared by every game.
type EngineConfig struct {
	MaxTicks     int           `yaml:"max_ticks"`
	MaxSprites   int           `yaml:"max_sprites"`
	MaxWarnings  int           `yaml:"max_warnings"`
	BlockSize    int           `yaml:"block_size"`    // World pixels per grid cell
	HistoryTicks int           `yaml:"history_ticks"` // 0 keeps the whole event history
	ActTimeout   time.Duration `yaml:"act_timeout"`   // 0 disables the controller budget
	FrameDelay   time.Duration `yaml:"frame_delay"`   // Pause between ticks, 0 for headless speed
	IncludeNil   bool          `yaml:"include_nil_action"`
}

// Runtime converts the configuration into what a session consumes.
func (c EngineConfig) Runtime(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		Seed:         seed,
		BlockSize:    c.BlockSize,
		MaxTicks:     c.MaxTicks,
		MaxSprites:   c.MaxSprites,
		MaxWarnings:  c.MaxWarnings,
		HistoryTicks: c.HistoryTicks,
		ActTimeout:   c.ActTimeout,
		IncludeNil:   c.IncludeNil,
	}
}

// Validate reports settings that cannot work.
func (c EngineConfig) Validate() error {
	switch {
	case c.BlockSize <= 0:
		return errInvalid("block_size must be positive")
	case c.MaxTicks < 0:
		return errInvalid("max_ticks must not be negative")
	case c.MaxSprites < 0:
		return errInvalid("max_sprites must not be negative")
	case c.HistoryTicks < 0:
		return errInvalid("history_ticks must not be negative")
	case c.ActTimeout < 0 || c.FrameDelay < 0:
		return errInvalid("durations must not be negative")
	}
	return nil
}
