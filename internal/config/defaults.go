package config

import (
	_ "embed"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	rc := core.DefaultConfig()
	return EngineConfig{
		MaxTicks:     rc.MaxTicks,
		MaxSprites:   rc.MaxSprites,
		MaxWarnings:  rc.MaxWarnings,
		BlockSize:    rc.BlockSize,
		HistoryTicks: rc.HistoryTicks,
		ActTimeout:   rc.ActTimeout,
		IncludeNil:   rc.IncludeNil,
	}
}
