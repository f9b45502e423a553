package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("config: invalid engine config")

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}

const engineFile = "engine.yaml"

// LoadEngine loads the engine configuration.
// Search order: customPath -> ~/.vgdl/configs/engine.yaml -> ./configs/engine.yaml -> embedded default
// Keys missing from a file keep their default values.
func LoadEngine(customPath string) (EngineConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parseEngine(data)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(engineFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parseEngine(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", engineFile)); err == nil {
		if cfg, err := parseEngine(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parseEngine(defaultEngineYAML)
	if err != nil {
		return DefaultEngineConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseEngine decodes data over the hard-coded defaults and validates the result.
func parseEngine(data []byte) (EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to a config file in the user's home directory.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vgdl", "configs", filename)
}
