// Package formats provides pluggable level file format parsers.
package formats

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLLevel represents the YAML structure for a level file.
type YAMLLevel struct {
	ID       string              `yaml:"id"`
	Name     string              `yaml:"name"`
	Grid     string              `yaml:"grid"`
	Mapping  map[string][]string `yaml:"mapping,omitempty"`
	Metadata map[string]string   `yaml:"metadata,omitempty"`
}

// Level represents a parsed level ready for use.
type Level struct {
	ID       string
	Name     string
	Rows     []string
	Mapping  map[rune][]string // Level-specific additions to the game's mapping
	Metadata map[string]string
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	rows := splitRows(yl.Grid)
	if len(rows) == 0 {
		return Level{}, fmt.Errorf("level %q has an empty grid", yl.ID)
	}

	level := Level{
		ID:       yl.ID,
		Name:     yl.Name,
		Rows:     rows,
		Metadata: yl.Metadata,
	}

	if len(yl.Mapping) > 0 {
		level.Mapping = make(map[rune][]string, len(yl.Mapping))
		for key, names := range yl.Mapping {
			r := []rune(key)
			if len(r) != 1 {
				return Level{}, fmt.Errorf("mapping key %q must be a single character", key)
			}
			level.Mapping[r[0]] = names
		}
	}

	return level, nil
}

// ParseText parses a bare character grid, one row per line. The id is left
// empty for the caller to fill in.
func ParseText(data []byte) (Level, error) {
	rows := splitRows(string(data))
	if len(rows) == 0 {
		return Level{}, fmt.Errorf("empty level grid")
	}
	return Level{Rows: rows}, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml", ".txt"}
}

// splitRows splits a grid into rows, dropping trailing blank lines.
func splitRows(grid string) []string {
	grid = strings.ReplaceAll(grid, "\r\n", "\n")
	rows := strings.Split(grid, "\n")
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	for len(rows) > 0 && strings.TrimSpace(rows[0]) == "" {
		rows = rows[1:]
	}
	return rows
}
