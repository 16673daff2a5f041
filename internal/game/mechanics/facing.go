package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// Arc classifies where an attack lands relative to the defender's facing.
type Arc string

const (
	ArcFront Arc = "front"
	ArcFlank Arc = "flank"
	ArcRear  Arc = "rear"
)

// FacingProcessor keeps each unit's facing direction current. Facing is
// Tier 0: it carries no options of its own but flanking, charge, and
// phalanx all read the direction it maintains.
type FacingProcessor struct{}

// NewFacingProcessor creates the facing processor.
func NewFacingProcessor(MechanicsConfig) *FacingProcessor {
	return &FacingProcessor{}
}

// Mechanic returns Facing.
func (p *FacingProcessor) Mechanic() Mechanic { return Facing }

// Tier returns 0.
func (p *FacingProcessor) Tier() int { return TierOf(Facing) }

// AttackDirection classifies the arc an attack from attacker arrives on,
// as seen by the defender: along the defender's facing is front, directly
// behind is rear, the remaining two directions are flanks.
func (p *FacingProcessor) AttackDirection(attacker, defender unit.Unit) Arc {
	dir := grid.DirectionBetween(defender.Position, attacker.Position)
	switch dir {
	case defender.Facing.Dir:
		return ArcFront
	case defender.Facing.Dir.Opposite():
		return ArcRear
	default:
		return ArcFlank
	}
}

// InitState points every unit at its nearest enemy, tie-broken by
// instance id, so round one starts with meaningful facings.
func (p *FacingProcessor) InitState(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		u := c.Units[i]
		if !u.Alive {
			continue
		}
		if nearest, ok := nearestEnemy(c, u); ok {
			c.Units[i].Facing.Dir = grid.DirectionBetween(u.Position, nearest.Position)
		}
	}
	return c
}

// Apply updates the actor's facing: along the final step of a movement
// path, or toward the attack target. Other phases are no-ops.
func (p *FacingProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseMovement:
		if len(ctx.Path) == 0 {
			return st
		}
		last := ctx.Path[len(ctx.Path)-1]
		prev := ctx.Origin
		if len(ctx.Path) >= 2 {
			prev = ctx.Path[len(ctx.Path)-2]
		}
		if prev == last {
			return st
		}
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Facing.Dir = grid.DirectionBetween(prev, last)
		})
	case PhaseAttack:
		target, ok := st.Get(ctx.Target)
		if !ok {
			return st
		}
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			if u.Position != target.Position {
				u.Facing.Dir = grid.DirectionBetween(u.Position, target.Position)
			}
		})
	default:
		return st
	}
}

func nearestEnemy(st unit.BattleState, u unit.Unit) (unit.Unit, bool) {
	var best unit.Unit
	bestDist := 0
	found := false
	for _, e := range st.LivingEnemies(u.Team) {
		d := grid.ManhattanDistance(u.Position, e.Position)
		if !found || d < bestDist || (d == bestDist && e.InstanceID < best.InstanceID) {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}
