package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/warband/internal/game/mechanics"
)

func ammoProc() *mechanics.AmmunitionProcessor {
	return mechanics.NewAmmunitionProcessor(mechanics.RoguelikePreset())
}

func TestAmmunition_InitState_RangedOnly(t *testing.T) {
	p := ammoProc()
	st := p.InitState(state(archer("a", 0, 0, 0), melee("m", 0, 1, 0)))

	a, _ := st.Get("a")
	assert.Equal(t, 6, a.Ammo.Max)
	assert.Equal(t, 6, a.Ammo.Remaining)

	m, _ := st.Get("m")
	assert.Zero(t, m.Ammo.Max)
	assert.Zero(t, m.Ammo.Remaining)
}

func TestCanFire(t *testing.T) {
	p := ammoProc()

	loaded := archer("a", 0, 0, 0)
	loaded.Ammo.Remaining = 3
	ok, reason := p.CanFire(loaded)
	assert.True(t, ok)
	assert.Equal(t, mechanics.ReasonNone, reason)

	empty := archer("a", 0, 0, 0)
	ok, reason = p.CanFire(empty)
	assert.False(t, ok)
	assert.Equal(t, mechanics.ReasonNoAmmo, reason)

	ok, reason = p.CanFire(melee("m", 0, 0, 0))
	assert.False(t, ok)
	assert.Equal(t, mechanics.ReasonNotRanged, reason)
}

func TestConsume_FloorsAtZero(t *testing.T) {
	p := ammoProc()
	st := p.InitState(state(archer("a", 0, 0, 0)))

	for i := 0; i < 10; i++ {
		st = p.Consume(st, "a")
	}
	a, _ := st.Get("a")
	assert.Zero(t, a.Ammo.Remaining)
}

func TestAmmunition_Attack_ConsumesOnRangedAttack(t *testing.T) {
	p := ammoProc()
	st := p.InitState(state(archer("a", 0, 0, 0), melee("t", 1, 4, 0)))

	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "t", Action: mechanics.ActionAttack, Hit: true})
	a, _ := out.Get("a")
	assert.Equal(t, 5, a.Ammo.Remaining)
}

func TestAmmunition_Attack_MeleeActorIgnored(t *testing.T) {
	p := ammoProc()
	st := p.InitState(state(melee("m", 0, 0, 0), melee("t", 1, 1, 0)))
	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "m", Target: "t", Action: mechanics.ActionAttack, Hit: true})
	assert.Equal(t, st, out)
}

func TestAmmunition_NonAttackActionIgnored(t *testing.T) {
	p := ammoProc()
	st := p.InitState(state(archer("a", 0, 0, 0)))
	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Action: mechanics.ActionMove})
	assert.Equal(t, st, out)
}
