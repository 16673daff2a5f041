package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/battle"
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/mechanics"
	"github.com/cory-johannsen/warband/internal/game/targeting"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

func soldier(id string, team, x, y int) unit.Unit {
	return unit.Unit{
		ID: "soldier", InstanceID: id, Team: team, Alive: true,
		HP: 30, MaxHP: 30, Attack: 8, AttackCount: 1, Armor: 2,
		Initiative: 10, Speed: 3, Range: 1,
		Position: grid.Position{X: x, Y: y},
	}
}

func pipeline(t *testing.T, cfg mechanics.MechanicsConfig) *mechanics.Pipeline {
	t.Helper()
	pipe, err := mechanics.NewPipeline(cfg)
	require.NoError(t, err)
	return pipe
}

func skirmish() unit.BattleState {
	a := soldier("red-1", 0, 0, 0)
	a.Initiative = 12
	b := soldier("red-2", 0, 0, 1)
	c := soldier("blue-1", 1, 6, 0)
	c.Attack = 5
	return unit.BattleState{Units: []unit.Unit{a, b, c}}
}

func TestRunner_OutnumberedSideLoses(t *testing.T) {
	r := battle.NewRunner(pipeline(t, mechanics.MVPPreset()), nil)

	out := r.Run(skirmish(), 42)
	assert.Equal(t, 0, out.Winner)
	assert.Greater(t, out.Rounds, 0)
	assert.True(t, out.Final.TeamDefeated(1))
	assert.False(t, out.Final.TeamDefeated(0))
}

func TestRunner_InputStateUntouched(t *testing.T) {
	r := battle.NewRunner(pipeline(t, mechanics.MVPPreset()), nil)
	st := skirmish()

	r.Run(st, 42)
	for _, u := range st.Units {
		assert.Equal(t, u.MaxHP, u.HP)
		assert.True(t, u.Alive)
	}
	assert.Empty(t, st.Events)
}

// TestRunner_Deterministic verifies the postcondition: identical state
// and seed resolve to a bit-identical outcome, for both the minimal and
// the full mechanics set.
func TestRunner_Deterministic(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  mechanics.MechanicsConfig
	}{
		{"mvp", mechanics.MVPPreset()},
		{"roguelike", mechanics.RoguelikePreset()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := battle.NewRunner(pipeline(t, tc.cfg), nil)
			first := r.Run(skirmish(), 7)
			second := r.Run(skirmish(), 7)
			assert.Equal(t, first, second)
		})
	}
}

func TestRunner_SharedPipeline(t *testing.T) {
	pipe := pipeline(t, mechanics.RoguelikePreset())
	a := battle.NewRunner(pipe, nil)
	b := battle.NewRunner(pipe, nil)
	assert.Equal(t, a.Run(skirmish(), 7), b.Run(skirmish(), 7))
}

func TestRunner_RoundCapDraws(t *testing.T) {
	r := battle.NewRunner(pipeline(t, mechanics.MVPPreset()), nil)
	r.MaxRounds = 3
	// A pacifist hook: no damage ever lands, so nobody can win.
	r.Hook = func(_, _ unit.Unit, _ int) int { return 0 }

	out := r.Run(skirmish(), 42)
	assert.Equal(t, -1, out.Winner)
	assert.Equal(t, 3, out.Rounds)
	assert.False(t, out.Final.TeamDefeated(0))
	assert.False(t, out.Final.TeamDefeated(1))
}

func TestRunner_HookAdjustsDamage(t *testing.T) {
	r := battle.NewRunner(pipeline(t, mechanics.MVPPreset()), nil)
	r.MaxRounds = 1
	r.Hook = func(_, _ unit.Unit, _ int) int { return 1 }

	out := r.Run(skirmish(), 42)
	for _, e := range out.Final.Events {
		if e.Type == "attack" {
			assert.Equal(t, 1, e.Amount)
		}
	}
}

func TestRunner_NegativeHookClamped(t *testing.T) {
	r := battle.NewRunner(pipeline(t, mechanics.MVPPreset()), nil)
	r.MaxRounds = 2
	r.Hook = func(_, _ unit.Unit, _ int) int { return -5 }

	out := r.Run(skirmish(), 42)
	for _, u := range out.Final.Units {
		assert.Equal(t, u.MaxHP, u.HP, "negative hook results apply as zero damage")
	}
}

// TestRunner_HardInterceptHaltsCharge verifies the full movement phase
// against a spear wall beside the charge lane: the wall strikes the
// charging cavalry for floor(atk x 1.5) and the movement ends at the
// blocked cell, adjacent to the wall.
func TestRunner_HardInterceptHaltsCharge(t *testing.T) {
	cav := unit.Unit{
		ID: "lancer", InstanceID: "lancer-0-0", Team: 0, Alive: true,
		HP: 60, MaxHP: 60, Attack: 10, AttackCount: 1,
		Initiative: 20, Speed: 6, Range: 1,
		Position: grid.Position{X: 0, Y: 0},
		Tags:     []string{mechanics.TagCavalry},
	}
	wall := unit.Unit{
		ID: "pikeman", InstanceID: "pikeman-1-0", Team: 1, Alive: true,
		HP: 40, MaxHP: 40, Attack: 10, AttackCount: 1,
		Initiative: 5, Speed: 0, Range: 1,
		Position: grid.Position{X: 2, Y: 1},
		Tags:     []string{mechanics.TagSpearWall},
	}
	// The taunter pulls the cavalry past the wall instead of into it.
	bait := unit.Unit{
		ID: "drummer", InstanceID: "drummer-1-1", Team: 1, Alive: true,
		HP: 40, MaxHP: 40, Attack: 1, AttackCount: 1,
		Initiative: 1, Speed: 0, Range: 1,
		Position: grid.Position{X: 8, Y: 0},
		Tags:     []string{targeting.TagTaunt},
	}

	r := battle.NewRunner(pipeline(t, mechanics.MechanicsConfig{
		mechanics.Charge:    {Enabled: true},
		mechanics.Intercept: {Enabled: true},
	}), nil)
	r.MaxRounds = 1

	out := r.Run(unit.BattleState{Units: []unit.Unit{cav, wall, bait}}, 42)

	halted, ok := out.Final.Get("lancer-0-0")
	require.True(t, ok)
	assert.Equal(t, grid.Position{X: 2, Y: 0}, halted.Position)
	assert.False(t, halted.Charge.Charging)
	assert.True(t, halted.Engage.Engaged)

	var hits []unit.Event
	for _, e := range out.Final.Events {
		if e.Type == "hard_intercept" {
			hits = append(hits, e)
		}
	}
	require.Len(t, hits, 1)
	assert.Equal(t, "pikeman-1-0", hits[0].Actor)
	assert.Equal(t, "lancer-0-0", hits[0].Target)
	assert.Equal(t, 15, hits[0].Amount)
}

// TestRunner_PointBlankShotSpendsAmmo verifies that a ranged unit firing
// at an adjacent enemy draws on the same ammunition pool as any other
// shot and is blocked once the pool is empty.
func TestRunner_PointBlankShotSpendsAmmo(t *testing.T) {
	archer := unit.Unit{
		ID: "archer", InstanceID: "archer-0-0", Team: 0, Alive: true,
		HP: 50, MaxHP: 50, Attack: 5, AttackCount: 1,
		Initiative: 10, Speed: 0, Range: 5,
		Position: grid.Position{X: 0, Y: 0},
	}
	brawler := unit.Unit{
		ID: "brawler", InstanceID: "brawler-1-0", Team: 1, Alive: true,
		HP: 50, MaxHP: 50, Attack: 2, AttackCount: 1,
		Initiative: 5, Speed: 0, Range: 1,
		Position: grid.Position{X: 1, Y: 0},
	}

	r := battle.NewRunner(pipeline(t, mechanics.MechanicsConfig{
		mechanics.Ammunition: {Enabled: true, Options: map[string]float64{"max_ammo": 1}},
	}), nil)
	r.MaxRounds = 2

	out := r.Run(unit.BattleState{Units: []unit.Unit{archer, brawler}}, 42)

	spent, ok := out.Final.Get("archer-0-0")
	require.True(t, ok)
	assert.Equal(t, 0, spent.Ammo.Remaining)

	var attacks, blocked int
	for _, e := range out.Final.Events {
		if e.Actor != "archer-0-0" {
			continue
		}
		switch e.Type {
		case "attack":
			attacks++
		case "attack_blocked":
			blocked++
			assert.Equal(t, string(mechanics.ReasonNoAmmo), e.Note)
		}
	}
	assert.Equal(t, 1, attacks)
	assert.Equal(t, 1, blocked)
}

// TestRunner_SeedProperty verifies determinism across arbitrary seeds
// under the full mechanics set.
func TestRunner_SeedProperty(t *testing.T) {
	pipe := pipeline(t, mechanics.RoguelikePreset())
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		r := battle.NewRunner(pipe, nil)
		first := r.Run(skirmish(), seed)
		second := r.Run(skirmish(), seed)
		if first.Winner != second.Winner || first.Rounds != second.Rounds {
			t.Fatalf("divergent outcomes for seed %d", seed)
		}
	})
}
