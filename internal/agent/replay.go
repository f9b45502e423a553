package agent

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/sim"
)

// Replay plays back a recorded action sequence, one action per tick.
// Once the recording is exhausted it returns NIL.
type Replay struct {
	actions []core.Action
	pos     int
}

// NewReplay reads one action name per line. Blank lines and lines starting
// with '#' are skipped.
func NewReplay(r io.Reader) (*Replay, error) {
	var actions []core.Action
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		a, ok := core.ParseAction(text)
		if !ok {
			return nil, fmt.Errorf("agent: line %d: unknown action %q", line, text)
		}
		actions = append(actions, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("agent: reading actions: %w", err)
	}
	return &Replay{actions: actions}, nil
}

// LoadReplay reads a recording from disk.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	defer f.Close()
	return NewReplay(f)
}

// Act returns the next recorded action.
func (r *Replay) Act(sim.Observation) core.Action {
	if r.pos >= len(r.actions) {
		return core.ActionNil
	}
	a := r.actions[r.pos]
	r.pos++
	return a
}

// Remaining returns how many recorded actions are left.
func (r *Replay) Remaining() int {
	return len(r.actions) - r.pos
}

// Rewind starts the recording over, for multi-episode runs.
func (r *Replay) Rewind() {
	r.pos = 0
}
