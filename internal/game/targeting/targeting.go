// Package targeting selects an enemy for an acting unit using one of
// three strategies, with deterministic tie-breaks and a hard taunt
// override.
package targeting

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// Strategy names an enemy-selection policy.
type Strategy string

const (
	// Nearest picks the enemy at the smallest Manhattan distance.
	Nearest Strategy = "nearest"
	// Weakest picks the enemy with the lowest current HP.
	Weakest Strategy = "weakest"
	// HighestThreat picks the enemy with the highest composite threat score.
	HighestThreat Strategy = "highest_threat"
)

// TagTaunt marks a unit that must be targeted ahead of any strategy result.
const TagTaunt = "taunt"

// Config tunes strategy scoring.
type Config struct {
	// RoleMultipliers scales the threat score per enemy role. Roles
	// absent from the map use 1.0.
	RoleMultipliers map[string]float64
}

// DefaultConfig returns the standard targeting tuning: support roles
// read as more threatening than their raw stats suggest.
func DefaultConfig() Config {
	return Config{
		RoleMultipliers: map[string]float64{
			"healer": 1.5,
			"mage":   1.3,
			"archer": 1.2,
		},
	}
}

// Select picks a target for actor among living enemies in st.
//
// Taunt is a hard override: any living enemy tagged taunt is targeted
// ahead of the strategy result, tie-broken by instance id. Otherwise the
// strategy runs; a strategy that yields no candidate falls back to
// Nearest, and if that also fails there is no target.
//
// Postcondition: The result is a pure function of (actor, st, strat, cfg).
func Select(actor unit.Unit, st unit.BattleState, strat Strategy, cfg Config) (unit.Unit, bool) {
	enemies := st.LivingEnemies(actor.Team)
	if len(enemies) == 0 {
		return unit.Unit{}, false
	}

	if t, ok := pickTaunter(enemies); ok {
		return t, true
	}

	var picked unit.Unit
	var ok bool
	switch strat {
	case Weakest:
		picked, ok = pickWeakest(enemies)
	case HighestThreat:
		picked, ok = pickHighestThreat(actor, enemies, cfg)
	default:
		picked, ok = pickNearest(actor, enemies)
	}
	if !ok && strat != Nearest {
		picked, ok = pickNearest(actor, enemies)
	}
	return picked, ok
}

func pickTaunter(enemies []unit.Unit) (unit.Unit, bool) {
	var best unit.Unit
	found := false
	for _, e := range enemies {
		if !e.HasTag(TagTaunt) {
			continue
		}
		if !found || e.InstanceID < best.InstanceID {
			best = e
			found = true
		}
	}
	return best, found
}

func pickNearest(actor unit.Unit, enemies []unit.Unit) (unit.Unit, bool) {
	var best unit.Unit
	bestDist := 0
	found := false
	for _, e := range enemies {
		d := grid.ManhattanDistance(actor.Position, e.Position)
		if !found || d < bestDist || (d == bestDist && e.InstanceID < best.InstanceID) {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

func pickWeakest(enemies []unit.Unit) (unit.Unit, bool) {
	var best unit.Unit
	found := false
	for _, e := range enemies {
		if !found || e.HP < best.HP || (e.HP == best.HP && e.InstanceID < best.InstanceID) {
			best, found = e, true
		}
	}
	return best, found
}

// ThreatScore computes the composite threat of enemy as seen from actor:
//
//	atk×atkCount + (1−hpRatio)×50 + max(0, 10−distance)
//
// scaled by the per-role multiplier.
func ThreatScore(actor, enemy unit.Unit, cfg Config) float64 {
	dist := grid.ManhattanDistance(actor.Position, enemy.Position)
	proximity := float64(10 - dist)
	if proximity < 0 {
		proximity = 0
	}
	score := float64(enemy.Attack*enemy.AttackCount) + (1-enemy.HPRatio())*50 + proximity
	if m, ok := cfg.RoleMultipliers[enemy.Role]; ok {
		score *= m
	}
	return score
}

func pickHighestThreat(actor unit.Unit, enemies []unit.Unit, cfg Config) (unit.Unit, bool) {
	var best unit.Unit
	bestScore := 0.0
	found := false
	for _, e := range enemies {
		s := ThreatScore(actor, e, cfg)
		if !found || s > bestScore || (s == bestScore && e.InstanceID < best.InstanceID) {
			best, bestScore, found = e, s, true
		}
	}
	return best, found
}
