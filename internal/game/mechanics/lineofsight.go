package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// LineOfSightProcessor gates ranged attacks on a clear shot: any living
// unit, friend or foe, standing on an intermediate cell of the firing
// line blocks it. Query mechanic: the driver consults CheckRangedAttack
// before resolving a ranged attack.
type LineOfSightProcessor struct{}

// NewLineOfSightProcessor creates the line-of-sight processor.
func NewLineOfSightProcessor(MechanicsConfig) *LineOfSightProcessor {
	return &LineOfSightProcessor{}
}

// Mechanic returns LineOfSight.
func (p *LineOfSightProcessor) Mechanic() Mechanic { return LineOfSight }

// Tier returns 3.
func (p *LineOfSightProcessor) Tier() int { return TierOf(LineOfSight) }

// HasLineOfSight reports whether nothing stands between from and to.
// Endpoints never block their own line.
func (p *LineOfSightProcessor) HasLineOfSight(st unit.BattleState, from, to grid.Position) bool {
	for _, cell := range grid.Line(from, to) {
		for _, u := range st.Units {
			if u.Alive && u.Position == cell {
				return false
			}
		}
	}
	return true
}

// CheckRangedAttack reports whether attacker may shoot target from where
// it stands: within range and with a clear line.
func (p *LineOfSightProcessor) CheckRangedAttack(st unit.BattleState, attacker, target unit.Unit) (bool, Reason) {
	if grid.ManhattanDistance(attacker.Position, target.Position) > attacker.Range {
		return false, ReasonOutOfRange
	}
	if !p.HasLineOfSight(st, attacker.Position, target.Position) {
		return false, ReasonLoSBlocked
	}
	return true, ReasonNone
}

// Apply is a total no-op: line of sight contributes through its queries.
func (p *LineOfSightProcessor) Apply(_ Phase, st unit.BattleState, _ Context) unit.BattleState {
	return st
}
