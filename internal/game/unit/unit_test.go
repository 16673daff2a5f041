package unit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

func soldier(id string, team int) unit.Unit {
	return unit.Unit{
		ID:          "soldier",
		InstanceID:  id,
		Team:        team,
		Alive:       true,
		HP:          30,
		MaxHP:       30,
		Attack:      8,
		AttackCount: 1,
		Armor:       4,
		Initiative:  10,
		Speed:       3,
		Range:       1,
		Tags:        []string{"spear_wall"},
	}
}

func TestHasTag(t *testing.T) {
	u := soldier("s-0-0", 0)
	assert.True(t, u.HasTag("spear_wall"))
	assert.False(t, u.HasTag("cavalry"))
}

func TestIsRanged(t *testing.T) {
	u := soldier("s-0-0", 0)
	assert.False(t, u.IsRanged())
	assert.True(t, u.IsMelee())

	u.Range = 5
	assert.True(t, u.IsRanged())
	assert.False(t, u.IsMelee())
}

func TestCanAct(t *testing.T) {
	u := soldier("s-0-0", 0)
	assert.True(t, u.CanAct())

	dead := u
	dead.Alive = false
	assert.False(t, dead.CanAct())

	routing := u
	routing.Morale.Routing = true
	assert.False(t, routing.CanAct())

	vigilant := u
	vigilant.Vigilance.Status = unit.VigilanceActive
	assert.False(t, vigilant.CanAct())
}

func TestHPRatio(t *testing.T) {
	u := soldier("s-0-0", 0)
	assert.Equal(t, 1.0, u.HPRatio())
	u.HP = 15
	assert.Equal(t, 0.5, u.HPRatio())
}

// TestClone_NoAliasing verifies mutating a clone's slice fields never
// reaches the original.
func TestClone_NoAliasing(t *testing.T) {
	u := soldier("s-0-0", 0)
	u.Engage.EngagedBy = []string{"e-1-0"}
	u.Vigilance.FiredAt = []string{"e-1-1"}
	u.Contagion.Statuses = []unit.Status{{Kind: "poison", TurnsRemaining: 2}}

	c := u.Clone()
	c.Tags[0] = "changed"
	c.Engage.EngagedBy[0] = "changed"
	c.Vigilance.FiredAt[0] = "changed"
	c.Contagion.Statuses[0].Kind = "changed"

	assert.Equal(t, "spear_wall", u.Tags[0])
	assert.Equal(t, "e-1-0", u.Engage.EngagedBy[0])
	assert.Equal(t, "e-1-1", u.Vigilance.FiredAt[0])
	assert.Equal(t, "poison", u.Contagion.Statuses[0].Kind)
}

func TestBattleState_FindGet(t *testing.T) {
	st := unit.BattleState{Units: []unit.Unit{soldier("a-0-0", 0), soldier("b-1-0", 1)}}

	i, ok := st.Find("b-1-0")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	u, ok := st.Get("a-0-0")
	require.True(t, ok)
	assert.Equal(t, "a-0-0", u.InstanceID)

	_, ok = st.Get("missing")
	assert.False(t, ok)
}

func TestBattleState_Record_StampsRound(t *testing.T) {
	st := unit.BattleState{Round: 3}
	st.Record(unit.Event{Type: "attack", Actor: "a-0-0"})
	require.Len(t, st.Events, 1)
	assert.Equal(t, 3, st.Events[0].Round)
}

func TestBattleState_LivingEnemiesAllies(t *testing.T) {
	dead := soldier("d-1-1", 1)
	dead.Alive = false
	st := unit.BattleState{Units: []unit.Unit{
		soldier("a-0-0", 0), soldier("b-0-1", 0), soldier("c-1-0", 1), dead,
	}}

	enemies := st.LivingEnemies(0)
	require.Len(t, enemies, 1)
	assert.Equal(t, "c-1-0", enemies[0].InstanceID)

	allies := st.LivingAllies(0, "a-0-0")
	require.Len(t, allies, 1)
	assert.Equal(t, "b-0-1", allies[0].InstanceID)
}

// TestTeamDefeated_RoutingDoesNotCount verifies a team whose only living
// unit is routing counts as defeated.
func TestTeamDefeated_RoutingDoesNotCount(t *testing.T) {
	router := soldier("r-1-0", 1)
	router.Morale.Routing = true
	st := unit.BattleState{Units: []unit.Unit{soldier("a-0-0", 0), router}}

	assert.False(t, st.TeamDefeated(0))
	assert.True(t, st.TeamDefeated(1))
}

// TestBattleState_Clone_Independent verifies deep copies all the way
// down: units, their slices, and the event log.
func TestBattleState_Clone_Independent(t *testing.T) {
	st := unit.BattleState{Units: []unit.Unit{soldier("a-0-0", 0)}}
	st.Record(unit.Event{Type: "attack"})

	c := st.Clone()
	c.Units[0].HP = 1
	c.Units[0].Position = grid.Position{X: 9, Y: 9}
	c.Units[0].Tags[0] = "changed"
	c.Events[0].Type = "changed"

	assert.Equal(t, 30, st.Units[0].HP)
	assert.Equal(t, grid.Position{}, st.Units[0].Position)
	assert.Equal(t, "spear_wall", st.Units[0].Tags[0])
	assert.Equal(t, "attack", st.Events[0].Type)
}
