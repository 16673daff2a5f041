// Package mechanics implements the extension framework for optional
// combat rules: a library of independently toggleable mechanics that
// declare dependencies on each other and execute at fixed points in the
// per-unit turn cycle. The pipeline owns the phase order; processors are
// phase-agnostic beyond checking which phase they were handed.
package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// Mechanic names one toggleable combat rule module.
type Mechanic string

const (
	Facing      Mechanic = "facing"
	Morale      Mechanic = "morale"
	Engagement  Mechanic = "engagement"
	Flanking    Mechanic = "flanking"
	Aura        Mechanic = "aura"
	Riposte     Mechanic = "riposte"
	Intercept   Mechanic = "intercept"
	Charge      Mechanic = "charge"
	Phalanx     Mechanic = "phalanx"
	Ammunition  Mechanic = "ammunition"
	LineOfSight Mechanic = "line_of_sight"
	Overwatch   Mechanic = "overwatch"
	ArmorShred  Mechanic = "armor_shred"
	Contagion   Mechanic = "contagion"
)

// AllMechanics lists every mechanic in tier-ascending, then name-ascending
// order. This is the canonical processor execution order.
var AllMechanics = []Mechanic{
	Facing, Morale,
	Aura, Engagement, Flanking,
	Charge, Intercept, Phalanx, Riposte,
	Ammunition, LineOfSight, Overwatch,
	ArmorShred, Contagion,
}

// tiers assigns each mechanic its dependency layer. Higher tiers may
// require lower-tier mechanics; processors run tier-ascending so that
// foundational effects (facing) are in place before dependents (flanking)
// read them.
var tiers = map[Mechanic]int{
	Facing: 0, Morale: 0,
	Aura: 1, Engagement: 1, Flanking: 1,
	Charge: 2, Intercept: 2, Phalanx: 2, Riposte: 2,
	Ammunition: 3, LineOfSight: 3, Overwatch: 3,
	ArmorShred: 4, Contagion: 4,
}

// dependencies is the static prerequisite table. Enabling a mechanic
// transitively enables everything it lists here.
var dependencies = map[Mechanic][]Mechanic{
	Flanking:  {Facing},
	Charge:    {Facing},
	Phalanx:   {Facing},
	Riposte:   {Engagement},
	Intercept: {Engagement},
	Overwatch: {Intercept, Ammunition},
}

// TierOf returns the dependency tier of m.
//
// Precondition: m must be a known mechanic.
func TierOf(m Mechanic) int {
	t, ok := tiers[m]
	if !ok {
		panic("mechanics: unknown mechanic " + string(m))
	}
	return t
}

// DependenciesOf returns the static prerequisite list of m (possibly empty).
func DependenciesOf(m Mechanic) []Mechanic {
	return dependencies[m]
}

// Known reports whether m names a mechanic this package implements.
func Known(m Mechanic) bool {
	_, ok := tiers[m]
	return ok
}

// Phase names one point in the per-unit turn cycle.
type Phase string

const (
	PhaseTurnStart Phase = "turn_start"
	PhaseMovement  Phase = "movement"
	PhaseAttack    Phase = "attack"
	PhaseTurnEnd   Phase = "turn_end"
)

// Action names what the acting unit is doing when a processor runs.
type Action string

const (
	ActionAttack    Action = "attack"
	ActionMove      Action = "move"
	ActionVigilance Action = "vigilance"
)

// Context is the per-invocation data handed to a processor: who is
// acting, against whom, what they are doing, and the deterministic seed
// for this invocation. For attack-phase invocations the driver fills in
// the already-resolved damage so reactive mechanics (shred, riposte,
// morale) can read it.
type Context struct {
	// Actor is the instance id of the acting unit.
	Actor string
	// Target is the instance id of the opposing unit, if any.
	Target string
	// Action is what the actor is resolving.
	Action Action
	// Path holds the movement path, cell by cell, excluding the start.
	Path []grid.Position
	// Origin is the cell the actor occupied before moving (movement only).
	Origin grid.Position
	// Seed is the deterministic seed for this invocation.
	Seed uint64
	// Damage is the damage dealt by the resolved attack (attack phase only).
	Damage int
	// Hit is true when the resolved attack connected (attack phase only).
	Hit bool
	// Magical is true when the resolved attack was magic (attack phase only).
	Magical bool
}

// Ability tags read by mechanic processors.
const (
	// TagSpearWall marks a unit able to hard-intercept charging cavalry
	// and to form phalanx formations.
	TagSpearWall = "spear_wall"
	// TagCavalry marks a unit whose charges can be hard-intercepted.
	TagCavalry = "cavalry"
	// TagStealth makes a unit immune to overwatch fire.
	TagStealth = "stealth"
	// TagBanner makes a unit project the armor aura.
	TagBanner = "banner"
	// TagPlagued makes a unit spread poison to adjacent enemies.
	TagPlagued = "plagued"
)

// Processor is the contract every mechanic implements. Apply is a total
// function: phases or contexts a mechanic does not care about return the
// input state unchanged, never an error.
type Processor interface {
	// Mechanic returns the mechanic this processor implements.
	Mechanic() Mechanic
	// Tier returns the mechanic's dependency tier.
	Tier() int
	// Apply folds this mechanic's phase effects over the state and
	// returns the (possibly new) state. The input state is never mutated.
	Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState
}
