package mechanics

import (
	"math"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// RiposteProcessor lets a melee defender that survives a melee hit strike
// back immediately. Counters are charge-limited per round and deal
// floor(atk × counter_damage_mult), armor not applied.
type RiposteProcessor struct {
	counterDamageMult float64
	chargesPerRound   int
}

// NewRiposteProcessor creates the riposte processor from cfg.
func NewRiposteProcessor(cfg MechanicsConfig) *RiposteProcessor {
	return &RiposteProcessor{
		counterDamageMult: cfg.Option(Riposte, "counter_damage_mult"),
		chargesPerRound:   int(cfg.Option(Riposte, "charges_per_round")),
	}
}

// Mechanic returns Riposte.
func (p *RiposteProcessor) Mechanic() Mechanic { return Riposte }

// Tier returns 2.
func (p *RiposteProcessor) Tier() int { return TierOf(Riposte) }

// InitState fills every unit's riposte charges.
func (p *RiposteProcessor) InitState(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		c.Units[i].Riposte.ChargesRemaining = p.chargesPerRound
	}
	return c
}

// CanRiposte reports whether defender may counter an attack from
// attacker: alive, melee, adjacent to the attacker, and holding a charge.
func (p *RiposteProcessor) CanRiposte(defender, attacker unit.Unit) bool {
	return defender.Alive &&
		defender.IsMelee() &&
		defender.Riposte.ChargesRemaining > 0 &&
		grid.Adjacent(defender.Position, attacker.Position)
}

// CounterResult reports one executed riposte.
type CounterResult struct {
	OK     bool
	Reason Reason
	Damage int
	Killed bool
}

// ExecuteRiposte performs the counter-strike from defender against
// attacker, consuming one charge.
func (p *RiposteProcessor) ExecuteRiposte(st unit.BattleState, defenderID, attackerID string) (unit.BattleState, CounterResult) {
	di, dok := st.Find(defenderID)
	ai, aok := st.Find(attackerID)
	if !dok || !aok {
		return st, CounterResult{Reason: ReasonUnknownUnit}
	}
	if !p.CanRiposte(st.Units[di], st.Units[ai]) {
		if st.Units[di].Riposte.ChargesRemaining <= 0 {
			return st, CounterResult{Reason: ReasonNoCharges}
		}
		return st, CounterResult{Reason: ReasonNotEligible}
	}

	c := st.Clone()
	c.Units[di].Riposte.ChargesRemaining--
	dmg := int(math.Floor(float64(c.Units[di].Attack) * p.counterDamageMult))
	killed := damageUnit(&c.Units[ai], dmg)
	c.Record(unit.Event{Type: "riposte", Actor: defenderID, Target: attackerID, Amount: dmg})
	return c, CounterResult{OK: true, Damage: dmg, Killed: killed}
}

// Apply restores the actor's charges at turn_start and triggers the
// defender's counter after a melee hit that left it standing.
func (p *RiposteProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseTurnStart:
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Riposte.ChargesRemaining = p.chargesPerRound
		})
	case PhaseAttack:
		if !ctx.Hit || ctx.Magical || ctx.Target == "" {
			return st
		}
		actor, aok := st.Get(ctx.Actor)
		target, tok := st.Get(ctx.Target)
		if !aok || !tok || !actor.IsMelee() || !target.Alive {
			return st
		}
		if !p.CanRiposte(target, actor) {
			return st
		}
		st, _ = p.ExecuteRiposte(st, ctx.Target, ctx.Actor)
		return st
	default:
		return st
	}
}
