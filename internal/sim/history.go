package sim

import (
	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// HistoricEvent records one avatar-related collision. It keeps ids and a
// position snapshot, never a sprite pointer.
type HistoricEvent struct {
	Tick        int
	FromAvatar  bool // The active sprite was produced by an avatar, not an avatar itself
	ActiveType  registry.TypeID
	PassiveType registry.TypeID
	ActiveID    InstanceID
	PassiveID   InstanceID
	Position    core.Point
	Sound       string
}

type history struct {
	events    []HistoricEvent
	retention int
}

// record appends an event when either participant is avatar-linked. The
// linked sprite always becomes the active side, checking a before b and the
// avatar itself before its projectiles, so the event does not depend on the
// order a rule names its types in.
func (h *history) record(tick int, a, b *Sprite, sound string) {
	switch {
	case a.IsAvatar(), a.FromAvatar():
	case b.IsAvatar(), b.FromAvatar():
		a, b = b, a
	default:
		return
	}
	h.events = append(h.events, HistoricEvent{
		Tick:        tick,
		FromAvatar:  !a.IsAvatar() && a.FromAvatar(),
		ActiveType:  a.Type,
		PassiveType: b.Type,
		ActiveID:    a.ID,
		PassiveID:   b.ID,
		Position:    a.Position(),
		Sound:       sound,
	})
}

// since returns the events recorded at or after tick.
func (h *history) since(tick int) []HistoricEvent {
	i := len(h.events)
	for i > 0 && h.events[i-1].Tick >= tick {
		i--
	}
	out := make([]HistoricEvent, len(h.events)-i)
	copy(out, h.events[i:])
	return out
}

// prune drops events older than the retention window. The last two ticks
// are always kept since audio reads them.
func (h *history) prune(tick int) {
	if h.retention <= 0 {
		return
	}
	keep := h.retention
	if keep < 2 {
		keep = 2
	}
	cut := 0
	for cut < len(h.events) && h.events[cut].Tick <= tick-keep {
		cut++
	}
	if cut > 0 {
		h.events = append([]HistoricEvent(nil), h.events[cut:]...)
	}
}

// Events returns the retained event history.
func (s *Session) Events() []HistoricEvent {
	return append([]HistoricEvent(nil), s.history.events...)
}

// RecentEvents returns the events of the current and the previous tick.
func (s *Session) RecentEvents() []HistoricEvent {
	return s.history.since(s.tick - 1)
}
