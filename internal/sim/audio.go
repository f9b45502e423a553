package sim

import (
	"sort"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// AudioObservation is one sound heard by the primary avatar.
type AudioObservation struct {
	Type      registry.TypeID
	Intensity float64 // In (0, 1], 1 at the listener's position
	Sound     string
}

// Intensity maps a world distance to a loudness in (0, 1].
func Intensity(distance float64, blockSize int) float64 {
	if distance < 0 {
		distance = 0
	}
	return 1 / (1 + distance/float64(blockSize))
}

// AudioObservations derives the sounds of the current tick, quietest first.
// Reading consumes the sprites' "used" flags.
func (s *Session) AudioObservations() []AudioObservation {
	listener := s.listenerPosition()
	out := []AudioObservation{}
	hear := func(t registry.TypeID, at core.Point, sound string) {
		out = append(out, AudioObservation{
			Type:      t,
			Intensity: Intensity(core.Distance(listener, at), s.cfg.BlockSize),
			Sound:     sound,
		})
	}

	for _, g := range s.store.groups {
		for _, sp := range g.sprites {
			if s.store.isKilled(sp) {
				continue
			}
			if sp.AudioMove != "" && sp.Rect != sp.LastRect {
				hear(sp.Type, sp.Position(), sp.AudioMove)
			}
			if sp.AudioUse != "" && sp.used {
				hear(sp.Type, sp.Position(), sp.AudioUse)
				sp.used = false
			}
			if sp.Beacon != "" {
				hear(sp.Type, sp.Position(), sp.Beacon)
			}
		}
	}
	for _, ev := range s.history.since(s.tick - 1) {
		if ev.Sound != "" {
			hear(ev.ActiveType, ev.Position, ev.Sound)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Intensity < out[j].Intensity
	})
	return out
}

// listenerPosition is the primary avatar's position, or the last one seen.
func (s *Session) listenerPosition() core.Point {
	if len(s.players) > 0 && s.players[0].Avatar != nil {
		return s.players[0].Avatar.Position()
	}
	return s.lastListener
}
