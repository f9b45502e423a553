package sim

import (
	"math/rand"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

// Player is the per-player state of a session.
type Player struct {
	ID           core.PlayerID
	Avatar       *Sprite
	Score        float64
	Outcome      core.Outcome
	Disqualified bool
	LastAction   core.Action
}

// Placement puts one sprite of Type at cell (X, Y).
type Placement struct {
	Type registry.TypeID
	X, Y int
}

// Level is a play area in cells and its initial sprites.
type Level struct {
	Width, Height int
	Placements    []Placement
}

// Options configures a new session.
type Options struct {
	Players  int
	Counters int
	Config   core.RuntimeConfig
	Sink     *diag.Sink
}

// Session is one running game. It exclusively owns all sprite collections,
// the rule tables, scores, counters and the event history.
type Session struct {
	cfg     core.RuntimeConfig
	catalog *Catalog
	sink    *diag.Sink
	rng     *rand.Rand

	store        *store
	table        *interactionTable
	timedSeq     int
	shields      map[shieldKey]bool
	terminations []Termination
	history      *history

	players  []*Player
	counters []int
	screen   core.Rect

	tick         int
	ended        bool
	aborted      bool
	stochastic   bool
	lastListener core.Point
}

// NewSession creates an empty session for a catalog and loads rules into it.
func NewSession(cat *Catalog, rules Rules, opts Options) *Session {
	cfg := opts.Config
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = core.DefaultConfig().BlockSize
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.Discard()
	}
	players := opts.Players
	if players <= 0 {
		players = 1
	}

	s := &Session{
		cfg:      cfg,
		catalog:  cat,
		sink:     sink,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		store:    newStore(cat, sink, cfg.BlockSize, cfg.MaxSprites),
		table:    newInteractionTable(),
		shields:  make(map[shieldKey]bool),
		history:  &history{retention: cfg.HistoryTicks},
		counters: make([]int, opts.Counters),
		tick:     -1,
	}
	for i := 0; i < players; i++ {
		s.players = append(s.players, &Player{ID: core.PlayerID(i)})
	}
	s.LoadRules(rules)
	return s
}

// BuildLevel sets the play area and spawns the initial placements, then
// binds avatars to players.
func (s *Session) BuildLevel(l Level) {
	bs := s.cfg.BlockSize
	s.screen = core.NewRect(0, 0, l.Width*bs, l.Height*bs)
	for _, p := range l.Placements {
		sp := s.store.spawn(p.Type, core.Point{X: p.X * bs, Y: p.Y * bs}, false)
		if sp != nil {
			s.markStochastic(sp)
		}
	}
	s.bindAvatars()
	if av := s.players[0].Avatar; av != nil {
		s.lastListener = av.Position()
	}
}

// bindAvatars assigns the avatar sprites, enumerated in draw order, to
// players in order.
func (s *Session) bindAvatars() {
	var avatars []*Sprite
	for _, t := range s.catalog.DrawOrder() {
		for _, sp := range s.store.groups[t].sprites {
			if sp.IsAvatar() {
				avatars = append(avatars, sp)
			}
		}
	}
	for i, pl := range s.players {
		if i >= len(avatars) {
			s.sink.Warn("no avatar for player", "player", i)
			break
		}
		pl.Avatar = avatars[i]
		avatars[i].Player = pl.ID
	}
}

func (s *Session) markStochastic(sp *Sprite) {
	if sp.Flags.Has(FlagStochastic) {
		s.stochastic = true
	}
}

// Spawn creates a sprite of type t at pixel position pos.
// It returns nil when the sprite cap or a singleton ancestor forbids it.
func (s *Session) Spawn(t registry.TypeID, pos core.Point, force bool) *Sprite {
	sp := s.store.spawn(t, pos, force)
	if sp != nil {
		s.markStochastic(sp)
	}
	return sp
}

// Kill schedules sp for removal at the end of the tick. Avatars killed
// without transformation are disabled instead.
func (s *Session) Kill(sp *Sprite, transformed bool) {
	s.store.kill(sp, transformed)
}

// IsKilled reports whether sp is waiting for the end-of-tick purge.
func (s *Session) IsKilled(sp *Sprite) bool {
	return s.store.isKilled(sp)
}

// Purge removes killed sprites, clears avatar slots that pointed at them and
// drops all shields. Calling it again without new kills changes nothing.
func (s *Session) Purge() {
	removed := s.store.purge()
	for _, sp := range removed {
		for _, pl := range s.players {
			if pl.Avatar != sp {
				continue
			}
			if pl.ID == core.Player1 {
				s.lastListener = sp.Position()
			}
			pl.Avatar = nil
		}
	}
	if len(s.shields) > 0 {
		s.shields = make(map[shieldKey]bool)
	}
}

// place moves sp to r and invalidates the spatial index.
func (s *Session) place(sp *Sprite, r core.Rect) {
	if sp.Rect == r {
		return
	}
	sp.Rect = r
	s.store.touch()
}

// move shifts sp by speed cells along dir.
func (s *Session) move(sp *Sprite, dir core.Direction, speed int) {
	if dir.IsNone() || speed <= 0 {
		return
	}
	d := speed * s.cfg.BlockSize
	s.place(sp, sp.Rect.Translate(dir.DX*d, dir.DY*d))
}

// Tick returns the current tick, -1 before the first Step.
func (s *Session) Tick() int {
	return s.tick
}

// Ended reports whether the game is over.
func (s *Session) Ended() bool {
	return s.ended
}

// Aborted reports whether the game was stopped from outside.
func (s *Session) Aborted() bool {
	return s.aborted
}

// Abort ends the game immediately. Effects already applied stay applied.
func (s *Session) Abort() {
	s.ended = true
	s.aborted = true
}

// Disqualify ends the game and marks player p as disqualified.
func (s *Session) Disqualify(p core.PlayerID) {
	if int(p) < 0 || int(p) >= len(s.players) {
		return
	}
	pl := s.players[p]
	pl.Disqualified = true
	pl.Outcome = core.OutcomeDisqualified
	s.ended = true
}

// IsStochastic reports whether any sprite so far draws from the RNG.
func (s *Session) IsStochastic() bool {
	return s.stochastic
}

// Screen returns the play area in world pixels.
func (s *Session) Screen() core.Rect {
	return s.screen
}

// Config returns the runtime configuration of the session.
func (s *Session) Config() core.RuntimeConfig {
	return s.cfg
}

// Catalog returns the type hierarchy the session runs on.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Sink returns the session's diagnostic sink.
func (s *Session) Sink() *diag.Sink {
	return s.sink
}

// Players returns the player states. Callers must not modify them.
func (s *Session) Players() []*Player {
	return s.players
}

// Player returns the state of player p.
func (s *Session) Player(p core.PlayerID) *Player {
	return s.players[p]
}

// Counters returns a copy of the game counters.
func (s *Session) Counters() []int {
	return append([]int(nil), s.counters...)
}

// Count returns the number of instances of t, disabled ones included.
func (s *Session) Count(t registry.TypeID, includeSubtypes bool) int {
	if !s.catalog.Valid(t) {
		return 0
	}
	return s.store.countOf(t, includeSubtypes)
}

// DisabledCount returns the number of disabled instances of t.
func (s *Session) DisabledCount(t registry.TypeID, includeSubtypes bool) int {
	if !s.catalog.Valid(t) {
		return 0
	}
	if !includeSubtypes {
		return s.store.groups[t].Disabled()
	}
	n := 0
	for _, st := range s.catalog.Subtypes(t) {
		n += s.store.groups[st].Disabled()
	}
	return n
}

// NumSprites returns the number of sprites in the session.
func (s *Session) NumSprites() int {
	return s.store.count
}

// Group returns the group of exactly type t.
func (s *Session) Group(t registry.TypeID) *SpriteGroup {
	return s.store.groups[t]
}

// Groups returns all sprite groups in draw order.
func (s *Session) Groups() []*SpriteGroup {
	out := make([]*SpriteGroup, 0, len(s.store.groups))
	for _, t := range s.catalog.DrawOrder() {
		out = append(out, s.store.groups[t])
	}
	return out
}
