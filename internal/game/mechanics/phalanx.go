package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// PhalanxProcessor rewards spear-wall units that hold formation: standing
// adjacent to at least one living same-team spear-wall unit facing the
// same way grants bonus armor, and the intercept mechanic treats a unit
// in formation as a hard interceptor even with its charges spent.
// Query mechanic: the driver reads ArmorBonusFor when resolving attacks.
type PhalanxProcessor struct {
	armorBonus int
}

// NewPhalanxProcessor creates the phalanx processor from cfg.
func NewPhalanxProcessor(cfg MechanicsConfig) *PhalanxProcessor {
	return &PhalanxProcessor{
		armorBonus: int(cfg.Option(Phalanx, "armor_bonus")),
	}
}

// Mechanic returns Phalanx.
func (p *PhalanxProcessor) Mechanic() Mechanic { return Phalanx }

// Tier returns 2.
func (p *PhalanxProcessor) Tier() int { return TierOf(Phalanx) }

// InFormation reports whether u currently holds a phalanx: spear-wall
// tagged, alive, and adjacent to a living same-team spear-wall unit with
// identical facing.
func (p *PhalanxProcessor) InFormation(st unit.BattleState, u unit.Unit) bool {
	if !u.Alive || !u.HasTag(TagSpearWall) {
		return false
	}
	for _, ally := range st.LivingAllies(u.Team, u.InstanceID) {
		if ally.HasTag(TagSpearWall) &&
			ally.Facing.Dir == u.Facing.Dir &&
			grid.Adjacent(ally.Position, u.Position) {
			return true
		}
	}
	return false
}

// ArmorBonusFor returns the formation armor bonus for u, zero when out of
// formation.
func (p *PhalanxProcessor) ArmorBonusFor(st unit.BattleState, u unit.Unit) int {
	if p.InFormation(st, u) {
		return p.armorBonus
	}
	return 0
}

// Apply is a total no-op: phalanx contributes through its queries only.
func (p *PhalanxProcessor) Apply(_ Phase, st unit.BattleState, _ Context) unit.BattleState {
	return st
}
