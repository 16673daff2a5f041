package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// AuraProcessor grants a passive armor bonus to units standing near a
// living banner-tagged ally. The bonus does not stack across multiple
// banners. Query mechanic: the driver reads ArmorBonusFor when resolving
// attacks.
type AuraProcessor struct {
	radius     int
	armorBonus int
}

// NewAuraProcessor creates the aura processor from cfg.
func NewAuraProcessor(cfg MechanicsConfig) *AuraProcessor {
	return &AuraProcessor{
		radius:     int(cfg.Option(Aura, "radius")),
		armorBonus: int(cfg.Option(Aura, "armor_bonus")),
	}
}

// Mechanic returns Aura.
func (p *AuraProcessor) Mechanic() Mechanic { return Aura }

// Tier returns 1.
func (p *AuraProcessor) Tier() int { return TierOf(Aura) }

// ArmorBonusFor returns the armor bonus u enjoys from banner auras in st.
// A banner unit shelters itself as well as its neighbors.
//
// Postcondition: Returns 0 or armor_bonus; never stacks.
func (p *AuraProcessor) ArmorBonusFor(st unit.BattleState, u unit.Unit) int {
	if u.HasTag(TagBanner) && u.Alive {
		return p.armorBonus
	}
	for _, ally := range st.LivingAllies(u.Team, u.InstanceID) {
		if ally.HasTag(TagBanner) && grid.ManhattanDistance(ally.Position, u.Position) <= p.radius {
			return p.armorBonus
		}
	}
	return 0
}

// Apply is a total no-op: auras contribute through ArmorBonusFor only.
func (p *AuraProcessor) Apply(_ Phase, st unit.BattleState, _ Context) unit.BattleState {
	return st
}
