package mechanics

import "github.com/cory-johannsen/warband/internal/game/unit"

// ChargeProcessor grants momentum to a unit that covers enough ground
// toward its target in one movement. Momentum boosts the immediately
// following attack and is cleared at turn end — or by a hard intercept.
type ChargeProcessor struct {
	minCells      int
	momentumBonus float64
	cavalryMult   float64
}

// NewChargeProcessor creates the charge processor from cfg.
func NewChargeProcessor(cfg MechanicsConfig) *ChargeProcessor {
	return &ChargeProcessor{
		minCells:      int(cfg.Option(Charge, "min_cells")),
		momentumBonus: cfg.Option(Charge, "momentum_bonus"),
		cavalryMult:   cfg.Option(Charge, "cavalry_mult"),
	}
}

// Mechanic returns Charge.
func (p *ChargeProcessor) Mechanic() Mechanic { return Charge }

// Tier returns 2.
func (p *ChargeProcessor) Tier() int { return TierOf(Charge) }

// MomentumFor returns the additive damage fraction u carries from its
// charge, zero when not charging.
func (p *ChargeProcessor) MomentumFor(u unit.Unit) float64 {
	if !u.Charge.Charging {
		return 0
	}
	return u.Charge.Momentum
}

// Apply grants momentum after a long enough movement toward a target and
// clears it at turn end.
func (p *ChargeProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseMovement:
		if ctx.Target == "" || len(ctx.Path) < p.minCells {
			return st
		}
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			if !u.Alive {
				return
			}
			bonus := p.momentumBonus
			if u.HasTag(TagCavalry) {
				bonus *= p.cavalryMult
			}
			u.Charge.Charging = true
			u.Charge.Momentum = bonus
			u.Charge.CellsMoved = len(ctx.Path)
		})
	case PhaseTurnEnd:
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Charge = unit.ChargeState{}
		})
	default:
		return st
	}
}
