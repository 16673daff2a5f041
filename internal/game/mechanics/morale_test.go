package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/warband/internal/game/mechanics"
)

func moraleProc(opts map[string]float64) *mechanics.MoraleProcessor {
	return mechanics.NewMoraleProcessor(enabledWith(mechanics.Morale, opts))
}

func TestMorale_InitState(t *testing.T) {
	p := moraleProc(nil)
	st := p.InitState(state(melee("a", 0, 0, 0)))
	a, _ := st.Get("a")
	assert.Equal(t, 100, a.Morale.Resolve)
}

func TestLoseResolve_FloorsAtZero(t *testing.T) {
	p := moraleProc(nil)
	st := p.InitState(state(melee("a", 0, 0, 0)))
	st = p.LoseResolve(st, "a", 500)
	a, _ := st.Get("a")
	assert.Zero(t, a.Morale.Resolve)
	assert.True(t, a.Morale.Routing)
}

func TestLoseResolve_RoutsBelowThreshold(t *testing.T) {
	p := moraleProc(nil)
	st := p.InitState(state(melee("a", 0, 0, 0)))

	st = p.LoseResolve(st, "a", 75)
	a, _ := st.Get("a")
	assert.Equal(t, 25, a.Morale.Resolve)
	assert.False(t, a.Morale.Routing, "resolve at the threshold holds")

	st = p.LoseResolve(st, "a", 1)
	a, _ = st.Get("a")
	assert.True(t, a.Morale.Routing)

	var routEvents int
	for _, e := range st.Events {
		if e.Type == "rout" {
			routEvents++
		}
	}
	assert.Equal(t, 1, routEvents)
}

func TestAttemptRally_CertainChance(t *testing.T) {
	p := moraleProc(map[string]float64{"rally_chance": 1})
	st := p.InitState(state(melee("a", 0, 0, 0)))
	st = p.LoseResolve(st, "a", 90)

	st = p.AttemptRally(st, "a", 7)
	a, _ := st.Get("a")
	assert.False(t, a.Morale.Routing)
	assert.Equal(t, 25, a.Morale.Resolve, "rally restores resolve to the threshold")
}

func TestAttemptRally_ZeroChanceNeverRallies(t *testing.T) {
	p := moraleProc(map[string]float64{"rally_chance": 0})
	st := p.InitState(state(melee("a", 0, 0, 0)))
	st = p.LoseResolve(st, "a", 90)

	for seed := uint64(0); seed < 200; seed++ {
		out := p.AttemptRally(st, "a", seed)
		a, _ := out.Get("a")
		assert.True(t, a.Morale.Routing)
	}
}

func TestMorale_Attack_DamageShock(t *testing.T) {
	p := moraleProc(nil)
	st := p.InitState(state(melee("a", 0, 0, 0), melee("b", 1, 1, 0)))

	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{
		Actor: "a", Target: "b", Hit: true, Damage: 12,
	})
	b, _ := out.Get("b")
	assert.Equal(t, 88, b.Morale.Resolve)
}

func TestMorale_Attack_MissIsNoop(t *testing.T) {
	p := moraleProc(nil)
	st := p.InitState(state(melee("a", 0, 0, 0), melee("b", 1, 1, 0)))
	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "b", Hit: false, Damage: 0})
	assert.Equal(t, st, out)
}

// TestMorale_Attack_WitnessShock verifies a kill shakes the fallen
// unit's nearby allies but not distant ones or enemies.
func TestMorale_Attack_WitnessShock(t *testing.T) {
	p := moraleProc(nil)
	victim := melee("victim", 1, 5, 5)
	victim.Alive = false
	victim.HP = 0
	st := p.InitState(state(
		melee("killer", 0, 4, 5),
		victim,
		melee("near", 1, 6, 5),
		melee("far", 1, 15, 5),
	))

	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{
		Actor: "killer", Target: "victim", Hit: true, Damage: 30,
	})
	near, _ := out.Get("near")
	far, _ := out.Get("far")
	killer, _ := out.Get("killer")
	assert.Equal(t, 85, near.Morale.Resolve)
	assert.Equal(t, 100, far.Morale.Resolve)
	assert.Equal(t, 100, killer.Morale.Resolve)
}
