package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// moraleWitnessRadius is the Manhattan distance within which a unit is
// shaken by an ally's death.
const moraleWitnessRadius = 3

// MoraleProcessor tracks each unit's resolve. Taking damage and watching
// nearby allies die erodes resolve; below the rout threshold the unit
// routs and stops receiving turns until a seeded rally succeeds.
type MoraleProcessor struct {
	startingResolve int
	routThreshold   int
	allyDeathLoss   int
	damageLossScale float64
	rallyChance     float64
}

// NewMoraleProcessor creates the morale processor from cfg.
func NewMoraleProcessor(cfg MechanicsConfig) *MoraleProcessor {
	return &MoraleProcessor{
		startingResolve: int(cfg.Option(Morale, "starting_resolve")),
		routThreshold:   int(cfg.Option(Morale, "rout_threshold")),
		allyDeathLoss:   int(cfg.Option(Morale, "ally_death_loss")),
		damageLossScale: cfg.Option(Morale, "damage_loss_scale"),
		rallyChance:     cfg.Option(Morale, "rally_chance"),
	}
}

// Mechanic returns Morale.
func (p *MoraleProcessor) Mechanic() Mechanic { return Morale }

// Tier returns 0.
func (p *MoraleProcessor) Tier() int { return TierOf(Morale) }

// InitState fills every unit's resolve to the starting value.
func (p *MoraleProcessor) InitState(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		c.Units[i].Morale.Resolve = p.startingResolve
	}
	return c
}

// RoutThreshold returns the resolve value below which a unit routs.
func (p *MoraleProcessor) RoutThreshold() int { return p.routThreshold }

// LoseResolve reduces the named unit's resolve by amount, flooring at
// zero, and routs the unit when it falls below the threshold.
func (p *MoraleProcessor) LoseResolve(st unit.BattleState, instanceID string, amount int) unit.BattleState {
	if amount <= 0 {
		return st
	}
	routed := false
	st = withUnit(st, instanceID, func(u *unit.Unit) {
		if !u.Alive {
			return
		}
		u.Morale.Resolve -= amount
		if u.Morale.Resolve < 0 {
			u.Morale.Resolve = 0
		}
		if u.Morale.Resolve < p.routThreshold && !u.Morale.Routing {
			u.Morale.Routing = true
			routed = true
		}
	})
	if routed {
		st.Record(unit.Event{Type: "rout", Actor: instanceID})
	}
	return st
}

// AttemptRally rolls the seeded rally chance for a routing unit. Success
// clears the routing flag and restores resolve to the threshold.
func (p *MoraleProcessor) AttemptRally(st unit.BattleState, instanceID string, seed uint64) unit.BattleState {
	u, ok := st.Get(instanceID)
	if !ok || !u.Alive || !u.Morale.Routing {
		return st
	}
	if !rng.Roll(seed, p.rallyChance) {
		return st
	}
	st = withUnit(st, instanceID, func(u *unit.Unit) {
		u.Morale.Routing = false
		u.Morale.Resolve = p.routThreshold
	})
	st.Record(unit.Event{Type: "rally", Actor: instanceID})
	return st
}

// Apply handles the morale phase work: rally attempts at turn_start, and
// resolve loss (damage shock plus witness shock on a kill) after a
// resolved attack.
func (p *MoraleProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseTurnStart:
		return p.AttemptRally(st, ctx.Actor, rng.Derive(ctx.Seed, "morale.rally"))
	case PhaseAttack:
		if !ctx.Hit || ctx.Damage <= 0 || ctx.Target == "" {
			return st
		}
		target, ok := st.Get(ctx.Target)
		if !ok {
			return st
		}
		if target.Alive {
			loss := int(float64(ctx.Damage) * p.damageLossScale)
			return p.LoseResolve(st, ctx.Target, loss)
		}
		// The target died: nearby allies of the fallen are shaken.
		for _, ally := range st.LivingAllies(target.Team, target.InstanceID) {
			if grid.ManhattanDistance(ally.Position, target.Position) <= moraleWitnessRadius {
				st = p.LoseResolve(st, ally.InstanceID, p.allyDeathLoss)
			}
		}
		return st
	default:
		return st
	}
}
