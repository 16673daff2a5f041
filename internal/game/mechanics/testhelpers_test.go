package mechanics_test

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/mechanics"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// melee builds a baseline melee unit for processor tests.
func melee(id string, team, x, y int) unit.Unit {
	return unit.Unit{
		ID: "melee", InstanceID: id, Team: team, Alive: true,
		HP: 30, MaxHP: 30, Attack: 10, AttackCount: 1, Armor: 3,
		Initiative: 10, Speed: 3, Range: 1,
		Position: grid.Position{X: x, Y: y},
	}
}

// archer builds a baseline ranged unit.
func archer(id string, team, x, y int) unit.Unit {
	u := melee(id, team, x, y)
	u.ID = "archer"
	u.Range = 5
	u.Armor = 1
	return u
}

// spearWall builds a spear-wall tagged melee unit.
func spearWall(id string, team, x, y int) unit.Unit {
	u := melee(id, team, x, y)
	u.ID = "spearman"
	u.Tags = []string{mechanics.TagSpearWall}
	return u
}

// lancer builds a cavalry-tagged melee unit.
func lancer(id string, team, x, y int) unit.Unit {
	u := melee(id, team, x, y)
	u.ID = "lancer"
	u.Speed = 6
	u.Tags = []string{mechanics.TagCavalry}
	return u
}

func state(units ...unit.Unit) unit.BattleState {
	return unit.BattleState{Units: units}
}

// enabledWith returns a full-defaults config with opts layered over one
// mechanic.
func enabledWith(m mechanics.Mechanic, opts map[string]float64) mechanics.MechanicsConfig {
	cfg := mechanics.RoguelikePreset()
	cfg[m] = mechanics.Setting{Enabled: true, Options: opts}
	return cfg
}
