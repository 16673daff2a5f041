package mechanics

import "github.com/cory-johannsen/warband/internal/game/unit"

// AmmunitionProcessor gives ranged units a finite ammo pool. Every ranged
// attack and every overwatch shot consumes one round; an empty pool
// blocks ranged attacks with the no_ammo reason.
type AmmunitionProcessor struct {
	maxAmmo int
}

// NewAmmunitionProcessor creates the ammunition processor from cfg.
func NewAmmunitionProcessor(cfg MechanicsConfig) *AmmunitionProcessor {
	return &AmmunitionProcessor{
		maxAmmo: int(cfg.Option(Ammunition, "max_ammo")),
	}
}

// Mechanic returns Ammunition.
func (p *AmmunitionProcessor) Mechanic() Mechanic { return Ammunition }

// Tier returns 3.
func (p *AmmunitionProcessor) Tier() int { return TierOf(Ammunition) }

// InitState fills every ranged unit's ammo pool. Melee units carry none.
func (p *AmmunitionProcessor) InitState(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		if c.Units[i].IsRanged() {
			c.Units[i].Ammo.Max = p.maxAmmo
			c.Units[i].Ammo.Remaining = p.maxAmmo
		}
	}
	return c
}

// CanFire reports whether u may make a ranged attack.
func (p *AmmunitionProcessor) CanFire(u unit.Unit) (bool, Reason) {
	if !u.IsRanged() {
		return false, ReasonNotRanged
	}
	if u.Ammo.Remaining <= 0 {
		return false, ReasonNoAmmo
	}
	return true, ReasonNone
}

// Consume deducts one round from the named unit's pool, never below zero.
func (p *AmmunitionProcessor) Consume(st unit.BattleState, instanceID string) unit.BattleState {
	return withUnit(st, instanceID, func(u *unit.Unit) {
		if u.Ammo.Remaining > 0 {
			u.Ammo.Remaining--
		}
	})
}

// Apply consumes ammo when the actor resolves a ranged attack.
func (p *AmmunitionProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	if phase != PhaseAttack || ctx.Action != ActionAttack {
		return st
	}
	actor, ok := st.Get(ctx.Actor)
	if !ok || !actor.IsRanged() {
		return st
	}
	return p.Consume(st, ctx.Actor)
}
