package mechanics

import (
	"math"

	"github.com/cory-johannsen/warband/internal/game/unit"
)

// ArmorShredProcessor accumulates armor reduction on targets of physical
// attacks. Shred is capped at floor(baseArmor × max_shred_percent) per
// unit and optionally decays at the owner's turn end.
type ArmorShredProcessor struct {
	shredPerAttack  int
	maxShredPercent float64
	decayPerTurn    int
}

// NewArmorShredProcessor creates the armor-shred processor from cfg.
func NewArmorShredProcessor(cfg MechanicsConfig) *ArmorShredProcessor {
	return &ArmorShredProcessor{
		shredPerAttack:  int(cfg.Option(ArmorShred, "shred_per_attack")),
		maxShredPercent: cfg.Option(ArmorShred, "max_shred_percent"),
		decayPerTurn:    int(cfg.Option(ArmorShred, "decay_per_turn")),
	}
}

// Mechanic returns ArmorShred.
func (p *ArmorShredProcessor) Mechanic() Mechanic { return ArmorShred }

// Tier returns 4.
func (p *ArmorShredProcessor) Tier() int { return TierOf(ArmorShred) }

// MaxShredFor returns the shred cap for u: floor(baseArmor × maxPercent).
//
// Postcondition: Returns >= 0 for non-negative armor.
func (p *ArmorShredProcessor) MaxShredFor(u unit.Unit) int {
	return int(math.Floor(float64(u.Armor) * p.maxShredPercent))
}

// EffectiveArmor returns u's armor after shred, never below zero.
//
// Postcondition: Returns >= 0.
func (p *ArmorShredProcessor) EffectiveArmor(u unit.Unit) int {
	armor := u.Armor - u.Shred.Amount
	if armor < 0 {
		return 0
	}
	return armor
}

// ApplyShred adds one attack's worth of shred to the named unit, clamped
// to its cap.
//
// Postcondition: Shred.Amount <= MaxShredFor(unit) in the result.
func (p *ArmorShredProcessor) ApplyShred(st unit.BattleState, instanceID string) unit.BattleState {
	return withUnit(st, instanceID, func(u *unit.Unit) {
		limit := p.MaxShredFor(*u)
		u.Shred.Amount += p.shredPerAttack
		if u.Shred.Amount > limit {
			u.Shred.Amount = limit
		}
	})
}

// ResetShred clears all shred from the named unit. Cleanse hook for other
// mechanics.
func (p *ArmorShredProcessor) ResetShred(st unit.BattleState, instanceID string) unit.BattleState {
	return withUnit(st, instanceID, func(u *unit.Unit) {
		u.Shred.Amount = 0
	})
}

// Apply accumulates shred on the target of a landed physical attack and
// decays the actor's shred at its turn end when decay is configured.
func (p *ArmorShredProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseAttack:
		if !ctx.Hit || ctx.Magical || ctx.Target == "" {
			return st
		}
		return p.ApplyShred(st, ctx.Target)
	case PhaseTurnEnd:
		if p.decayPerTurn <= 0 || ctx.Actor == "" {
			return st
		}
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Shred.Amount -= p.decayPerTurn
			if u.Shred.Amount < 0 {
				u.Shred.Amount = 0
			}
		})
	default:
		return st
	}
}
