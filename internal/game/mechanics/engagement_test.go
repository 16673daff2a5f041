package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/mechanics"
)

func engagementProc() *mechanics.EngagementProcessor {
	return mechanics.NewEngagementProcessor(mechanics.RoguelikePreset())
}

func TestInZoneOfControl(t *testing.T) {
	p := engagementProc()
	holder := melee("h", 0, 5, 5)

	assert.True(t, p.InZoneOfControl(holder, grid.Position{X: 6, Y: 5}))
	assert.False(t, p.InZoneOfControl(holder, grid.Position{X: 7, Y: 5}))
	assert.False(t, p.InZoneOfControl(holder, grid.Position{X: 5, Y: 5}), "own cell is not in the zone")

	ranged := archer("r", 0, 5, 5)
	assert.False(t, p.InZoneOfControl(ranged, grid.Position{X: 6, Y: 5}), "ranged units project no zone")

	dead := holder
	dead.Alive = false
	assert.False(t, p.InZoneOfControl(dead, grid.Position{X: 6, Y: 5}))
}

func TestEngage_Mutual(t *testing.T) {
	p := engagementProc()
	st := p.Engage(state(melee("a", 0, 0, 0), melee("b", 1, 1, 0)), "a", "b")

	a, _ := st.Get("a")
	b, _ := st.Get("b")
	assert.True(t, a.Engage.Engaged)
	assert.True(t, b.Engage.Engaged)
	assert.Equal(t, []string{"b"}, a.Engage.EngagedBy)
	assert.Equal(t, []string{"a"}, b.Engage.EngagedBy)
}

func TestResolveAttacksOfOpportunity(t *testing.T) {
	p := engagementProc()
	st := state(melee("leaver", 0, 5, 5), melee("z-striker", 1, 6, 5), melee("a-striker", 1, 4, 5))
	st = p.Engage(st, "leaver", "z-striker")
	st = p.Engage(st, "leaver", "a-striker")

	out, results := p.ResolveAttacksOfOpportunity(st, "leaver")
	require.Len(t, results, 2)
	assert.Equal(t, "a-striker", results[0].Attacker, "strikers act in id order")
	assert.Equal(t, 5, results[0].Damage, "floor(10 × 0.5), armor not applied")

	leaver, _ := out.Get("leaver")
	assert.Equal(t, 20, leaver.HP)
	assert.False(t, leaver.Engage.Engaged, "links cleared after resolution")
	striker, _ := out.Get("a-striker")
	assert.False(t, striker.Engage.Engaged)
}

func TestResolveAttacksOfOpportunity_StopsOnKill(t *testing.T) {
	p := engagementProc()
	leaver := melee("leaver", 0, 5, 5)
	leaver.HP = 4
	st := state(leaver, melee("a", 1, 6, 5), melee("b", 1, 4, 5))
	st = p.Engage(st, "leaver", "a")
	st = p.Engage(st, "leaver", "b")

	out, results := p.ResolveAttacksOfOpportunity(st, "leaver")
	require.Len(t, results, 1, "resolution stops once the leaver dies")
	assert.True(t, results[0].Killed)
	got, _ := out.Get("leaver")
	assert.False(t, got.Alive)
}

func TestEngagement_Movement_MarksFirstZoCEntry(t *testing.T) {
	p := engagementProc()
	st := state(melee("mover", 0, 3, 0), melee("guard", 1, 1, 1), melee("deep", 1, 5, 1))

	out := p.Apply(mechanics.PhaseMovement, st, mechanics.Context{
		Actor:  "mover",
		Origin: grid.Position{X: 0, Y: 0},
		Path:   []grid.Position{{X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
	})
	mover, _ := out.Get("mover")
	assert.Equal(t, []string{"guard"}, mover.Engage.EngagedBy, "engagement pins at the first zone entered")
}

func TestEngagement_Attack_EngagesAdjacentMelee(t *testing.T) {
	p := engagementProc()
	st := state(melee("a", 0, 0, 0), melee("b", 1, 1, 0))
	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "b", Action: mechanics.ActionAttack, Hit: true})
	a, _ := out.Get("a")
	assert.True(t, a.Engage.Engaged)
}

func TestEngagement_Attack_RangedDoesNotEngage(t *testing.T) {
	p := engagementProc()
	st := state(archer("a", 0, 0, 0), melee("b", 1, 3, 0))
	out := p.Apply(mechanics.PhaseAttack, st, mechanics.Context{Actor: "a", Target: "b", Action: mechanics.ActionAttack, Hit: true})
	assert.Equal(t, st, out)
}

func TestEngagement_TurnEnd_PrunesDeadLinks(t *testing.T) {
	p := engagementProc()
	st := p.Engage(state(melee("a", 0, 0, 0), melee("b", 1, 1, 0)), "a", "b")

	i, _ := st.Find("b")
	st.Units[i].Alive = false
	st.Units[i].HP = 0

	out := p.Apply(mechanics.PhaseTurnEnd, st, mechanics.Context{})
	a, _ := out.Get("a")
	assert.False(t, a.Engage.Engaged)
	assert.Empty(t, a.Engage.EngagedBy)
}
