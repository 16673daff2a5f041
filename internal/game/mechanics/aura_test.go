package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/warband/internal/game/mechanics"
)

func TestAura_ArmorBonusFor(t *testing.T) {
	p := mechanics.NewAuraProcessor(mechanics.RoguelikePreset())

	carrier := melee("banner", 0, 5, 5)
	carrier.Tags = []string{mechanics.TagBanner}
	near := melee("near", 0, 6, 5)
	edge := melee("edge", 0, 7, 5)
	far := melee("far", 0, 9, 5)
	enemy := melee("enemy", 1, 6, 6)

	st := state(carrier, near, edge, far, enemy)

	assert.Equal(t, 2, p.ArmorBonusFor(st, carrier), "the banner shelters itself")
	assert.Equal(t, 2, p.ArmorBonusFor(st, near))
	assert.Equal(t, 2, p.ArmorBonusFor(st, edge), "radius is inclusive")
	assert.Zero(t, p.ArmorBonusFor(st, far))
	assert.Zero(t, p.ArmorBonusFor(st, enemy), "enemy banners grant nothing")
}

func TestAura_DeadBannerGrantsNothing(t *testing.T) {
	p := mechanics.NewAuraProcessor(mechanics.RoguelikePreset())
	carrier := melee("banner", 0, 5, 5)
	carrier.Tags = []string{mechanics.TagBanner}
	carrier.Alive = false
	carrier.HP = 0
	near := melee("near", 0, 6, 5)

	st := state(carrier, near)
	assert.Zero(t, p.ArmorBonusFor(st, near))
}

func TestAura_DoesNotStack(t *testing.T) {
	p := mechanics.NewAuraProcessor(mechanics.RoguelikePreset())
	b1 := melee("b1", 0, 4, 5)
	b1.Tags = []string{mechanics.TagBanner}
	b2 := melee("b2", 0, 6, 5)
	b2.Tags = []string{mechanics.TagBanner}
	mid := melee("mid", 0, 5, 5)

	st := state(b1, b2, mid)
	assert.Equal(t, 2, p.ArmorBonusFor(st, mid))
}
