package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/warband/internal/game/mechanics"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

func shredProc(opts map[string]float64) *mechanics.ArmorShredProcessor {
	return mechanics.NewArmorShredProcessor(enabledWith(mechanics.ArmorShred, opts))
}

func TestMaxShredFor(t *testing.T) {
	p := shredProc(nil)

	heavy := melee("h", 0, 0, 0)
	heavy.Armor = 10
	assert.Equal(t, 4, p.MaxShredFor(heavy), "floor(10 × 0.4)")

	light := melee("l", 0, 0, 0)
	light.Armor = 1
	assert.Zero(t, p.MaxShredFor(light))

	bare := melee("b", 0, 0, 0)
	bare.Armor = 0
	assert.Zero(t, p.MaxShredFor(bare))
}

func TestApplyShred_ClampsToCap(t *testing.T) {
	p := shredProc(nil)
	u := melee("u", 0, 0, 0)
	u.Armor = 10
	st := state(u)

	for i := 0; i < 6; i++ {
		st = p.ApplyShred(st, "u")
	}
	got, _ := st.Get("u")
	assert.Equal(t, 4, got.Shred.Amount)
}

func TestEffectiveArmor(t *testing.T) {
	p := shredProc(nil)

	u := melee("u", 0, 0, 0)
	u.Armor = 10
	u.Shred.Amount = 3
	assert.Equal(t, 7, p.EffectiveArmor(u))

	u.Shred.Amount = 99
	assert.Zero(t, p.EffectiveArmor(u), "never below zero")
}

func TestResetShred(t *testing.T) {
	p := shredProc(nil)
	u := melee("u", 0, 0, 0)
	u.Shred.Amount = 2
	st := p.ResetShred(state(u), "u")
	got, _ := st.Get("u")
	assert.Zero(t, got.Shred.Amount)
}

func TestArmorShred_Attack_PhysicalHitsOnly(t *testing.T) {
	p := shredProc(nil)
	target := melee("t", 1, 1, 0)
	target.Armor = 10

	t.Run("landed physical attack shreds", func(t *testing.T) {
		st := state(melee("a", 0, 0, 0), target)
		out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "t", Hit: true})
		got, _ := out.Get("t")
		assert.Equal(t, 1, got.Shred.Amount)
	})

	t.Run("miss does not", func(t *testing.T) {
		st := state(melee("a", 0, 0, 0), target)
		out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "t", Hit: false})
		assert.Equal(t, st, out)
	})

	t.Run("magic does not", func(t *testing.T) {
		st := state(melee("a", 0, 0, 0), target)
		out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "t", Hit: true, Magical: true})
		assert.Equal(t, st, out)
	})
}

func TestArmorShred_TurnEnd_Decay(t *testing.T) {
	shredded := func() unit.BattleState {
		u := melee("u", 0, 0, 0)
		u.Armor = 10
		u.Shred.Amount = 2
		return state(u)
	}

	t.Run("no decay by default", func(t *testing.T) {
		p := shredProc(nil)
		out := p.Apply(mechanics.PhaseTurnEnd, shredded(), mechanics.Context{Actor: "u"})
		assert.Equal(t, shredded(), out)
	})

	t.Run("configured decay wears shred off", func(t *testing.T) {
		p := shredProc(map[string]float64{"decay_per_turn": 1})
		out := p.Apply(mechanics.PhaseTurnEnd, shredded(), mechanics.Context{Actor: "u"})
		got, _ := out.Get("u")
		assert.Equal(t, 1, got.Shred.Amount)
	})

	t.Run("round boundary without an actor is skipped", func(t *testing.T) {
		p := shredProc(map[string]float64{"decay_per_turn": 1})
		out := p.Apply(mechanics.PhaseTurnEnd, shredded(), mechanics.Context{})
		assert.Equal(t, shredded(), out)
	})
}
