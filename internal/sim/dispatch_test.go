package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/vgdl-arcade/internal/core"
	"github.com/vovakirdan/vgdl-arcade/internal/diag"
	"github.com/vovakirdan/vgdl-arcade/internal/registry"
)

func TestCollisionDeclaredOnAncestorFires(t *testing.T) {
	f := newFixture()
	f.add("obstacle", ClassPassive, "")
	rock := f.add("rock", ClassPassive, "obstacle")
	pebble := f.add("pebble", ClassPassive, "rock")
	f.add("hazard", ClassImmovable, "")
	lava := f.add("lava", ClassImmovable, "hazard")
	obstacle, _ := f.names.Resolve("obstacle")
	hazard, _ := f.names.Resolve("hazard")

	rules := Rules{Collisions: []CollisionRule{
		{A: obstacle, B: hazard, Effect: effect(KindKillSprite)},
	}}
	s := f.session(t, rules, grid(place(rock, 1, 1), place(pebble, 3, 3), place(lava, 1, 1), place(lava, 3, 3), place(rock, 6, 6)), testConfig())

	s.Step()

	if n := s.Count(rock, false); n != 1 {
		t.Errorf("Count(rock) = %d, expected only the rock away from lava to survive", n)
	}
	if n := s.Count(pebble, false); n != 0 {
		t.Errorf("Count(pebble) = %d, expected 0", n)
	}
	if n := s.Count(lava, false); n != 2 {
		t.Errorf("Count(lava) = %d, the passive side must survive", n)
	}
}

func TestKilledSpriteLeavesLaterCollisions(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassPassive, "")
	spike := f.add("spike", ClassImmovable, "")
	coin := f.add("coin", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: box, B: spike, Effect: effect(KindKillSprite)},
		{A: box, B: coin, Effect: effect(KindAddScore, scored(5))},
		{A: coin, B: box, Effect: effect(KindAddScore, scored(7))},
	}}
	s := f.session(t, rules, grid(place(box, 2, 2), place(spike, 2, 2), place(coin, 2, 2)), testConfig())

	b := s.Group(box).Sprites()[0]
	b.Flags |= FlagFromAvatar
	boxID := b.ID

	s.Step()

	if score := s.Player(core.Player1).Score; score != 0 {
		t.Errorf("score = %v, a killed sprite must not collide again in the same tick", score)
	}
	if s.Count(box, false) != 0 {
		t.Error("box should be purged")
	}

	events := s.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	ev := events[0]
	if ev.ActiveID != boxID || ev.ActiveType != box || ev.PassiveType != spike || !ev.FromAvatar {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Position != (core.Point{X: 20, Y: 20}) {
		t.Errorf("event position = %+v, expected the box position", ev.Position)
	}
}

func TestShieldSuppressesEffectForOneTick(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassImmovable, "")
	spike := f.add("spike", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: box, B: spike, Effect: effect(KindAddScore, scored(1))},
	}}
	s := f.session(t, rules, grid(place(box, 2, 2), place(spike, 2, 2)), testConfig())

	s.AddShield(box, spike, KindAddScore.Hash())
	s.Step()
	if score := s.Player(core.Player1).Score; score != 0 {
		t.Fatalf("score = %v, shielded effect fired", score)
	}
	if s.Shielded(box, spike, KindAddScore.Hash()) {
		t.Fatal("shield should be cleared by the purge")
	}

	s.Step()
	if score := s.Player(core.Player1).Score; score != 1 {
		t.Errorf("score = %v, expected the effect to fire once the shield is gone", score)
	}
}

func TestShieldMatchesExactPairAndSignature(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassImmovable, "")
	spike := f.add("spike", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: box, B: spike, Effect: effect(KindAddScore, scored(1))},
	}}
	s := f.session(t, rules, grid(place(box, 2, 2), place(spike, 2, 2)), testConfig())

	s.AddShield(spike, box, KindAddScore.Hash())
	s.AddShield(box, spike, KindKillSprite.Hash())
	s.Step()
	if score := s.Player(core.Player1).Score; score != 1 {
		t.Errorf("score = %v, unrelated shields must not suppress the effect", score)
	}
}

func TestShieldFromEffect(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassImmovable, "")
	spike := f.add("spike", ClassImmovable, "")
	gem := f.add("gem", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: box, B: gem, Effect: effect(KindShieldFrom, func(e *Effect) {
			e.Stype = spike
			e.Shielded = KindKillSprite
		})},
		{A: box, B: spike, Effect: effect(KindKillSprite)},
	}}
	s := f.session(t, rules, grid(place(box, 2, 2), place(spike, 2, 2), place(gem, 2, 2)), testConfig())

	s.Step()
	if s.Count(box, false) != 1 {
		t.Fatal("shielded box was killed")
	}

	// Without the gem the shield is not renewed.
	s.Kill(s.Group(gem).Sprites()[0], false)
	s.Purge()
	s.Step()
	if s.Count(box, false) != 0 {
		t.Error("box should die once the shield lapses")
	}
}

func TestBatchEffectScoresPerPartner(t *testing.T) {
	tests := []struct {
		name  string
		batch bool
		want  float64
	}{
		{"batch", true, 3},
		{"single", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			box := f.add("box", ClassImmovable, "")
			spike := f.add("spike", ClassImmovable, "")

			e := effect(KindKillSprite, scored(1))
			e.InBatch = tt.batch
			rules := Rules{Collisions: []CollisionRule{{A: box, B: spike, Effect: e}}}
			s := f.session(t, rules, grid(
				place(box, 4, 4), place(spike, 4, 4), place(spike, 4, 4), place(spike, 4, 4),
			), testConfig())

			s.Step()
			if score := s.Player(core.Player1).Score; score != tt.want {
				t.Errorf("score = %v, expected %v", score, tt.want)
			}
			if s.Count(box, false) != 0 {
				t.Error("box should be killed")
			}
		})
	}
}

func TestBatchCountersScale(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassImmovable, "")
	spike := f.add("spike", ClassImmovable, "")

	e := effect(KindAddScore, batch, func(e *Effect) { e.Counters = []int{2, 0} })
	rules := Rules{Collisions: []CollisionRule{{A: box, B: spike, Effect: e}}}
	s := f.session(t, rules, grid(place(box, 4, 4), place(spike, 4, 4), place(spike, 4, 4)), testConfig())

	s.Step()
	if c := s.Counters(); c[0] != 4 || c[1] != 0 {
		t.Errorf("Counters() = %v, expected [4 0]", c)
	}
}

func TestBatchWithoutBatchFormScoresZero(t *testing.T) {
	f := newFixture()
	box := f.add("box", ClassImmovable, "")
	spike := f.add("spike", ClassImmovable, "")
	gold := f.add("gold", ClassImmovable, "")

	e := effect(KindTransformTo, scored(1), batch, func(e *Effect) { e.Stype = gold })
	rules := Rules{Collisions: []CollisionRule{{A: box, B: spike, Effect: e}}}
	s := f.session(t, rules, grid(place(box, 4, 4), place(spike, 4, 4), place(spike, 4, 4)), testConfig())
	before := s.Sink().Count()

	s.Step()
	if score := s.Player(core.Player1).Score; score != 0 {
		t.Errorf("score = %v, expected 0", score)
	}
	if s.Sink().Count() <= before {
		t.Error("expected a diagnostic for the invalid batch count")
	}
	if s.Count(box, false) != 1 || s.Count(gold, false) != 0 {
		t.Error("an unimplemented batch effect must not transform anything")
	}
}

func TestTimedEffects(t *testing.T) {
	t.Run("global repeating", func(t *testing.T) {
		f := newFixture()
		e := effect(KindAddScore, scored(1), func(e *Effect) {
			e.Timer = 3
			e.Repeating = true
		})
		s := f.session(t, Rules{Timed: []TimedRule{{Owner: registry.NoType, Effect: e}}}, grid(), testConfig())

		for i := 0; i < 10; i++ {
			s.Step()
		}
		if score := s.Player(core.Player1).Score; score != 3 {
			t.Errorf("score = %v after ticks 0..9, expected 3", score)
		}
	})

	t.Run("one shot", func(t *testing.T) {
		f := newFixture()
		e := effect(KindAddScore, scored(1), func(e *Effect) { e.Timer = 2 })
		s := f.session(t, Rules{Timed: []TimedRule{{Owner: registry.NoType, Effect: e}}}, grid(), testConfig())

		for i := 0; i < 10; i++ {
			s.Step()
		}
		if score := s.Player(core.Player1).Score; score != 1 {
			t.Errorf("score = %v, expected 1", score)
		}
		if len(s.TimedEffects()) != 0 {
			t.Error("one-shot effect should be dropped after firing")
		}
	})

	t.Run("disabled is dropped when due", func(t *testing.T) {
		f := newFixture()
		e := effect(KindAddScore, scored(1), func(e *Effect) {
			e.Timer = 2
			e.Repeating = true
		})
		s := f.session(t, Rules{Timed: []TimedRule{{Owner: registry.NoType, Effect: e}}}, grid(), testConfig())
		timed := s.TimedEffects()
		timed[0].SetEnabled(false)

		s.Step()
		if len(s.TimedEffects()) != 1 {
			t.Fatal("effect should stay scheduled until it comes due")
		}
		s.Step()
		s.Step()
		if score := s.Player(core.Player1).Score; score != 0 {
			t.Errorf("score = %v, disabled effect fired", score)
		}
		if len(s.TimedEffects()) != 0 {
			t.Fatal("disabled repeating effect should be dropped once due")
		}

		timed[0].SetEnabled(true)
		for i := 0; i < 5; i++ {
			s.Step()
		}
		if score := s.Player(core.Player1).Score; score != 0 {
			t.Errorf("score = %v, a dropped effect must not come back", score)
		}
	})

	t.Run("owned by a type", func(t *testing.T) {
		f := newFixture()
		f.add("plant", ClassImmovable, "")
		fern := f.add("fern", ClassImmovable, "plant")
		moss := f.add("moss", ClassImmovable, "plant")
		plant, _ := f.names.Resolve("plant")

		e := effect(KindKillSprite, scored(1), func(e *Effect) { e.Timer = 2 })
		s := f.session(t, Rules{Timed: []TimedRule{{Owner: plant, Effect: e}}},
			grid(place(fern, 1, 1), place(fern, 2, 1), place(moss, 3, 1)), testConfig())

		s.Step()
		s.Step()
		if n := s.Count(plant, true); n != 3 {
			t.Fatalf("Count(plant) = %d before the timer, expected 3", n)
		}
		s.Step()
		if n := s.Count(plant, true); n != 0 {
			t.Errorf("Count(plant) = %d, expected every descendant instance killed", n)
		}
		if score := s.Player(core.Player1).Score; score != 3 {
			t.Errorf("score = %v, expected one point per instance", score)
		}
	})
}

func TestEdgeEffectKillsLeavingSprites(t *testing.T) {
	f := newFixture()
	drone := f.add("drone", ClassMissile, "", func(d *TypeDef) { d.Orientation = core.DirRight })
	rules := Rules{Edges: []EdgeRule{{Type: drone, Effect: effect(KindKillSprite)}}}
	s := f.session(t, rules, grid(place(drone, 8, 0), place(drone, 0, 5)), testConfig())

	s.Step()
	if n := s.Count(drone, false); n != 2 {
		t.Fatalf("Count(drone) = %d, expected both still inside", n)
	}
	s.Step()
	if n := s.Count(drone, false); n != 1 {
		t.Errorf("Count(drone) = %d, expected the drone that left to be killed", n)
	}
}

func TestEdgeEffectSpawningSameTypeIsGuarded(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()
	drone := f.add("drone", ClassMissile, "", func(d *TypeDef) { d.Orientation = core.DirRight })
	rules := Rules{Edges: []EdgeRule{{Type: drone, Effect: effect(KindCloneSprite)}}}

	s := NewSession(f.catalog(t), rules, Options{
		Config: testConfig(),
		Sink:   diag.NewWithLogger(log.New(&buf)),
	})
	s.BuildLevel(grid(place(drone, 9, 0), place(drone, 9, 1)))

	s.Step()

	if !strings.Contains(buf.String(), "cannot spawn sprites outside of the screen") {
		t.Errorf("expected the spawn guard diagnostic, got %q", buf.String())
	}
	// The guard stops after the first clone.
	if n := s.Count(drone, false); n != 3 {
		t.Errorf("Count(drone) = %d, expected 3", n)
	}
}

func TestConditionalEffectUsesElseCounters(t *testing.T) {
	f := newFixture()
	avatar := f.add("avatar", ClassMovingAvatar, "")
	key := f.add("key", ClassResource, "")
	door := f.add("door", ClassImmovable, "")

	e := effect(KindKillIfHasMore, func(e *Effect) {
		e.Resource = key
		e.Limit = 1
		e.Counters = []int{1}
		e.CountersElse = []int{0, 1}
	})
	rules := Rules{Collisions: []CollisionRule{{A: door, B: avatar, Effect: e}}}
	s := f.session(t, rules, grid(place(avatar, 2, 2), place(door, 2, 2)), testConfig())

	s.Step()
	if c := s.Counters(); c[0] != 0 || c[1] != 1 {
		t.Errorf("Counters() = %v, expected the else branch", c)
	}
	if s.Count(door, false) != 1 {
		t.Error("door without keys should not be removed")
	}

	s.Group(door).Sprites()[0].Resources[key] = 1
	s.Step()
	if c := s.Counters(); c[0] != 1 || c[1] != 1 {
		t.Errorf("Counters() = %v, expected the primary branch", c)
	}
	if s.Count(door, false) != 0 {
		t.Error("door should be removed")
	}
}

func TestTransformRebindsAvatar(t *testing.T) {
	f := newFixture()
	avatar := f.add("avatar", ClassMovingAvatar, "")
	mushroom := f.add("mushroom", ClassImmovable, "")
	giant := f.add("giant", ClassMovingAvatar, "", func(d *TypeDef) { d.Speed = 2 })

	e := effect(KindTransformTo, func(e *Effect) { e.Stype = giant })
	rules := Rules{Collisions: []CollisionRule{{A: avatar, B: mushroom, Effect: e}}}
	s := f.session(t, rules, grid(place(avatar, 1, 1), place(mushroom, 2, 1)), testConfig())

	s.Step(core.ActionRight)

	av := s.Player(core.Player1).Avatar
	if av == nil || av.Type != giant {
		t.Fatalf("avatar slot = %+v, expected the giant", av)
	}
	if av.Position() != (core.Point{X: 20, Y: 10}) {
		t.Errorf("giant at %+v, expected the old avatar position", av.Position())
	}
	if s.Count(avatar, false) != 0 {
		t.Error("old avatar should be removed")
	}

	s.Step(core.ActionDown)
	if av.Position() != (core.Point{X: 20, Y: 30}) {
		t.Errorf("giant at %+v after moving, expected speed 2", av.Position())
	}
}

func TestShootingConsumesAmmo(t *testing.T) {
	f := newFixture()
	ammo := f.add("ammo", ClassResource, "")
	bullet := f.add("bullet", ClassMissile, "")
	avatar := f.add("avatar", ClassShootAvatar, "", func(d *TypeDef) {
		d.Stype = bullet
		d.Ammo = ammo
	})
	s := f.session(t, Rules{}, grid(place(avatar, 5, 8)), testConfig())
	av := s.Player(core.Player1).Avatar
	av.Resources[ammo] = 1

	s.Step(core.ActionUse)
	if n := s.Count(bullet, false); n != 1 {
		t.Fatalf("Count(bullet) = %d, expected 1", n)
	}
	shot := s.Group(bullet).Sprites()[0]
	if !shot.FromAvatar() || shot.Orientation != core.DirUp {
		t.Errorf("unexpected shot %+v", shot)
	}
	if av.Resources[ammo] != 0 {
		t.Errorf("ammo = %d, expected 0", av.Resources[ammo])
	}

	s.Step(core.ActionUse)
	if n := s.Count(bullet, false); n != 1 {
		t.Errorf("Count(bullet) = %d, shooting without ammo should fail", n)
	}
}

func TestCollectResource(t *testing.T) {
	f := newFixture()
	avatar := f.add("avatar", ClassMovingAvatar, "")
	gem := f.add("gem", ClassResource, "", func(d *TypeDef) {
		d.Value = 2
		d.Limit = 3
	})
	rules := Rules{Collisions: []CollisionRule{{A: gem, B: avatar, Effect: effect(KindCollectResource)}}}
	s := f.session(t, rules, grid(place(avatar, 1, 1), place(gem, 2, 1), place(gem, 3, 1)), testConfig())

	s.Step(core.ActionRight)
	av := s.Player(core.Player1).Avatar
	if av.Resource(gem) != 2 {
		t.Fatalf("gems = %d, expected 2", av.Resource(gem))
	}
	s.Step(core.ActionRight)
	if av.Resource(gem) != 2 {
		t.Errorf("gems = %d, collecting past the limit should fail", av.Resource(gem))
	}
	if s.Count(gem, false) != 1 {
		t.Errorf("Count(gem) = %d, the uncollected gem should stay", s.Count(gem, false))
	}
}

func TestTeleportToExit(t *testing.T) {
	f := newFixture()
	avatar := f.add("avatar", ClassMovingAvatar, "")
	exit := f.add("exit", ClassPortal, "")
	door := f.add("door", ClassPortal, "", func(d *TypeDef) { d.Stype = exit })

	rules := Rules{Collisions: []CollisionRule{{A: avatar, B: door, Effect: effect(KindTeleportToExit)}}}
	s := f.session(t, rules, grid(place(avatar, 1, 1), place(door, 2, 1), place(exit, 7, 7)), testConfig())

	s.Step(core.ActionRight)
	if pos := s.Player(core.Player1).Avatar.Position(); pos != (core.Point{X: 70, Y: 70}) {
		t.Errorf("avatar at %+v, expected at the exit", pos)
	}
}

func TestEventsOnlyForAvatarLinkedCollisions(t *testing.T) {
	f := newFixture()
	avatar := f.add("avatar", ClassMovingAvatar, "")
	rock := f.add("rock", ClassImmovable, "")
	moss := f.add("moss", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: rock, B: avatar, Effect: effect(KindSound, func(e *Effect) { e.Audio = "thud" })},
		{A: rock, B: moss, Effect: effect(KindSound, func(e *Effect) { e.Audio = "squish" })},
	}}
	s := f.session(t, rules, grid(place(avatar, 1, 1), place(rock, 1, 1), place(moss, 1, 1)), testConfig())

	s.Step()
	events := s.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	if events[0].Sound != "thud" || events[0].FromAvatar || events[0].ActiveType != avatar || events[0].PassiveType != rock {
		t.Errorf("unexpected event %+v", events[0])
	}
	if len(s.RecentEvents()) != 1 {
		t.Error("event should be in the recent window")
	}

	s.Kill(s.Group(rock).Sprites()[0], false)
	s.Purge()
	s.Step()
	s.Step()
	if len(s.RecentEvents()) != 0 {
		t.Error("recent window should only cover the last two ticks")
	}
}

func TestEventRolesIgnoreDeclarationOrder(t *testing.T) {
	for _, avatarFirst := range []bool{true, false} {
		name := "rock first"
		if avatarFirst {
			name = "avatar first"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			avatar := f.add("avatar", ClassMovingAvatar, "")
			rock := f.add("rock", ClassImmovable, "")

			rule := CollisionRule{A: rock, B: avatar}
			if avatarFirst {
				rule = CollisionRule{A: avatar, B: rock}
			}
			rule.Effect = effect(KindSound, func(e *Effect) { e.Audio = "thud" })
			s := f.session(t, Rules{Collisions: []CollisionRule{rule}}, grid(place(avatar, 1, 1), place(rock, 1, 1)), testConfig())
			avID := s.Player(core.Player1).Avatar.ID

			s.Step()
			events := s.Events()
			if len(events) != 1 {
				t.Fatalf("got %d events, expected 1", len(events))
			}
			ev := events[0]
			if ev.ActiveType != avatar || ev.ActiveID != avID || ev.PassiveType != rock {
				t.Errorf("expected the avatar on the active side, got %+v", ev)
			}
			if ev.FromAvatar {
				t.Error("the avatar itself is not produced by an avatar")
			}

			for _, o := range s.AudioObservations() {
				if o.Sound == "thud" && o.Type != avatar {
					t.Errorf("thud attributed to type %d, expected the avatar", o.Type)
				}
			}
		})
	}
}

func TestEventLinkedToProjectileOnEitherSide(t *testing.T) {
	f := newFixture()
	dart := f.add("dart", ClassPassive, "")
	target := f.add("target", ClassImmovable, "")

	rules := Rules{Collisions: []CollisionRule{
		{A: target, B: dart, Effect: effect(KindSound, func(e *Effect) { e.Audio = "thunk" })},
	}}
	s := f.session(t, rules, grid(place(dart, 3, 2), place(target, 3, 2)), testConfig())
	shot := s.Group(dart).Sprites()[0]
	shot.Flags |= FlagFromAvatar

	s.Step()
	events := s.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, expected 1", len(events))
	}
	ev := events[0]
	if ev.ActiveID != shot.ID || ev.ActiveType != dart || ev.PassiveType != target || !ev.FromAvatar {
		t.Errorf("expected the projectile on the active side, got %+v", ev)
	}
	if ev.Position != (core.Point{X: 30, Y: 20}) {
		t.Errorf("event position = %+v, expected the projectile position", ev.Position)
	}
}
