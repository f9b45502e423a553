// Package levels provides level loading for game descriptions.
// Levels are character grids; which sprites a character stands for is decided
// by the game description, optionally extended per level.
package levels

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/vgdl-arcade/internal/levels/formats"
)

// ErrLevelNotFound is returned by LoadByID for unknown ids.
var ErrLevelNotFound = errors.New("level not found")

// Level represents a complete level definition.
type Level struct {
	ID       string
	Name     string
	Rows     []string
	Mapping  map[rune][]string
	Metadata map[string]string
	FilePath string
}

// Width returns the length of the longest row in cells.
func (l *Level) Width() int {
	w := 0
	for _, row := range l.Rows {
		if n := utf8.RuneCountInString(row); n > w {
			w = n
		}
	}
	return w
}

// Height returns the number of rows.
func (l *Level) Height() int {
	return len(l.Rows)
}

// Loader handles loading levels from a file tree.
type Loader struct {
	fsys fs.FS
	Root string
}

// NewLoader creates a loader for a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{fsys: os.DirFS(root), Root: "."}
}

// NewFSLoader creates a loader for the tree under root in fsys.
func NewFSLoader(fsys fs.FS, root string) *Loader {
	return &Loader{fsys: fsys, Root: root}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, l.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(path.Ext(p))
		if !isSupportedExtension(ext) {
			return nil
		}

		level, err := l.LoadFile(p)
		if err != nil {
			// Skip invalid files
			return nil
		}

		levels = append(levels, level)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	// Sort by ID for determinism
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})

	return levels, nil
}

// LoadFile loads a single level file. Files without an id take the file name.
func (l *Loader) LoadFile(p string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", p, err)
	}

	ext := strings.ToLower(path.Ext(p))
	parsed, err := parseByExtension(data, ext)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", p, err)
	}

	id := parsed.ID
	if id == "" {
		id = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	name := parsed.Name
	if name == "" {
		name = id
	}

	return Level{
		ID:       id,
		Name:     name,
		Rows:     parsed.Rows,
		Mapping:  parsed.Mapping,
		Metadata: parsed.Metadata,
		FilePath: p,
	}, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}

	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}

	return Level{}, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// parseByExtension routes to the correct parser.
func parseByExtension(data []byte, ext string) (formats.Level, error) {
	switch ext {
	case ".yaml", ".yml":
		return formats.ParseYAML(data)
	case ".txt":
		return formats.ParseText(data)
	default:
		return formats.Level{}, fmt.Errorf("unsupported extension: %s", ext)
	}
}
