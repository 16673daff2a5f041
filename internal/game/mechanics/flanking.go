package mechanics

import "github.com/cory-johannsen/warband/internal/game/unit"

// FlankingProcessor converts attack arcs into damage bonuses. It is a
// query mechanic: the battle driver reads BonusFor when assembling kernel
// modifiers, and Apply has no phase work of its own.
type FlankingProcessor struct {
	facing     *FacingProcessor
	flankBonus float64
	rearBonus  float64
}

// NewFlankingProcessor creates the flanking processor from cfg.
func NewFlankingProcessor(cfg MechanicsConfig) *FlankingProcessor {
	return &FlankingProcessor{
		facing:     NewFacingProcessor(cfg),
		flankBonus: cfg.Option(Flanking, "flank_bonus"),
		rearBonus:  cfg.Option(Flanking, "rear_bonus"),
	}
}

// Mechanic returns Flanking.
func (p *FlankingProcessor) Mechanic() Mechanic { return Flanking }

// Tier returns 1.
func (p *FlankingProcessor) Tier() int { return TierOf(Flanking) }

// BonusFor returns the additive damage fraction for an attack from
// attacker on defender: 0 from the front, the flank bonus from either
// side, the rear bonus from behind.
//
// Postcondition: Returns 0, flank_bonus, or rear_bonus.
func (p *FlankingProcessor) BonusFor(attacker, defender unit.Unit) float64 {
	switch p.facing.AttackDirection(attacker, defender) {
	case ArcRear:
		return p.rearBonus
	case ArcFlank:
		return p.flankBonus
	default:
		return 0
	}
}

// Apply is a total no-op: flanking contributes through BonusFor only.
func (p *FlankingProcessor) Apply(_ Phase, st unit.BattleState, _ Context) unit.BattleState {
	return st
}
