package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// StatusPoison is the affliction the contagion mechanic spreads.
const StatusPoison = "poison"

// ContagionProcessor spreads a poison status from plagued-tagged units to
// adjacent enemies at turn end, with a seeded chance per neighbor. Poison
// ticks at the victim's turn start and expires after its duration.
type ContagionProcessor struct {
	spreadChance float64
	poisonDamage int
	poisonTurns  int
}

// NewContagionProcessor creates the contagion processor from cfg.
func NewContagionProcessor(cfg MechanicsConfig) *ContagionProcessor {
	return &ContagionProcessor{
		spreadChance: cfg.Option(Contagion, "spread_chance"),
		poisonDamage: int(cfg.Option(Contagion, "poison_damage")),
		poisonTurns:  int(cfg.Option(Contagion, "poison_turns")),
	}
}

// Mechanic returns Contagion.
func (p *ContagionProcessor) Mechanic() Mechanic { return Contagion }

// Tier returns 4.
func (p *ContagionProcessor) Tier() int { return TierOf(Contagion) }

// HasStatus reports whether u carries an active status of the given kind.
func HasStatus(u unit.Unit, kind string) bool {
	for _, s := range u.Contagion.Statuses {
		if s.Kind == kind && s.TurnsRemaining > 0 {
			return true
		}
	}
	return false
}

// Afflict adds a status to the named unit. Re-applying an existing kind
// refreshes its duration instead of stacking.
func (p *ContagionProcessor) Afflict(st unit.BattleState, instanceID string, status unit.Status) unit.BattleState {
	st = withUnit(st, instanceID, func(u *unit.Unit) {
		for i := range u.Contagion.Statuses {
			if u.Contagion.Statuses[i].Kind == status.Kind {
				if status.TurnsRemaining > u.Contagion.Statuses[i].TurnsRemaining {
					u.Contagion.Statuses[i].TurnsRemaining = status.TurnsRemaining
				}
				return
			}
		}
		u.Contagion.Statuses = append(u.Contagion.Statuses, status)
	})
	st.Record(unit.Event{Type: "afflicted", Target: instanceID, Note: status.Kind})
	return st
}

// Apply ticks the actor's statuses at turn start and spreads poison from
// plagued units at turn end.
func (p *ContagionProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseTurnStart:
		return p.tick(st, ctx.Actor)
	case PhaseTurnEnd:
		return p.spread(st, ctx)
	default:
		return st
	}
}

// tick applies each active status's per-turn damage to the named unit and
// expires finished ones.
func (p *ContagionProcessor) tick(st unit.BattleState, instanceID string) unit.BattleState {
	i, ok := st.Find(instanceID)
	if !ok || len(st.Units[i].Contagion.Statuses) == 0 {
		return st
	}

	c := st.Clone()
	u := &c.Units[i]
	var kept []unit.Status
	for _, s := range u.Contagion.Statuses {
		if s.TurnsRemaining <= 0 {
			continue
		}
		if s.DamagePerTurn > 0 && u.Alive {
			damageUnit(u, s.DamagePerTurn)
			c.Record(unit.Event{Type: "status_damage", Target: instanceID, Amount: s.DamagePerTurn, Note: s.Kind})
		}
		s.TurnsRemaining--
		if s.TurnsRemaining > 0 {
			kept = append(kept, s)
		}
	}
	u.Contagion.Statuses = kept
	return c
}

// spread rolls the seeded contagion chance from the acting plagued unit
// against each adjacent living enemy not already poisoned. Neighbors are
// evaluated in instance-id order off the Units slice, which is stable.
func (p *ContagionProcessor) spread(st unit.BattleState, ctx Context) unit.BattleState {
	carrier, ok := st.Get(ctx.Actor)
	if !ok || !carrier.Alive || !carrier.HasTag(TagPlagued) {
		return st
	}

	for i, victim := range st.LivingEnemies(carrier.Team) {
		if !grid.Adjacent(carrier.Position, victim.Position) || HasStatus(victim, StatusPoison) {
			continue
		}
		seed := rng.Derive(ctx.Seed, "contagion.spread", i)
		if !rng.Roll(seed, p.spreadChance) {
			continue
		}
		st = p.Afflict(st, victim.InstanceID, unit.Status{
			Kind:           StatusPoison,
			DamagePerTurn:  p.poisonDamage,
			TurnsRemaining: p.poisonTurns,
		})
	}
	return st
}
