package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := parseEngine(defaultEngineYAML)
	if err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	if cfg != DefaultEngineConfig() {
		t.Errorf("embedded = %+v, hard-coded = %+v", cfg, DefaultEngineConfig())
	}
}

func TestLoadEngineCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	data := "max_ticks: 300\nact_timeout: 40ms\nframe_delay: 1s\ninclude_nil_action: false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadEngine(path)
	if err != nil {
		t.Fatalf("LoadEngine failed: %v", err)
	}
	if cfg.MaxTicks != 300 || cfg.ActTimeout != 40*time.Millisecond || cfg.FrameDelay != time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.IncludeNil {
		t.Error("include_nil_action should be false")
	}
	if cfg.BlockSize != DefaultEngineConfig().BlockSize {
		t.Errorf("missing keys should keep defaults, block_size = %d", cfg.BlockSize)
	}
}

func TestLoadEngineErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadEngine(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing custom file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("block_size: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadEngine(bad)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestRuntime(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.MaxTicks = 77
	rc := cfg.Runtime(42)

	if rc.Seed != 42 || rc.MaxTicks != 77 || rc.BlockSize != cfg.BlockSize {
		t.Errorf("Runtime() = %+v", rc)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
		ok     bool
	}{
		{"defaults", func(*EngineConfig) {}, true},
		{"zero block size", func(c *EngineConfig) { c.BlockSize = 0 }, false},
		{"negative ticks", func(c *EngineConfig) { c.MaxTicks = -1 }, false},
		{"negative sprites", func(c *EngineConfig) { c.MaxSprites = -1 }, false},
		{"negative history", func(c *EngineConfig) { c.HistoryTicks = -2 }, false},
		{"negative timeout", func(c *EngineConfig) { c.ActTimeout = -time.Second }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, expected ok=%v", err, tc.ok)
			}
		})
	}
}
