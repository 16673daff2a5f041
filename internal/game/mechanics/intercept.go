package mechanics

import (
	"math"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// InterceptKind distinguishes the two intercept flavors.
type InterceptKind string

const (
	// HardIntercept is a spear wall stopping a charging cavalry unit:
	// damage, momentum loss, and a halted movement.
	HardIntercept InterceptKind = "hard"
	// SoftIntercept is any melee unit tagging an enemy passing through
	// its zone of control: no damage, no stop, just engagement.
	SoftIntercept InterceptKind = "soft"
)

// InterceptOpportunity is one interceptor eligible to strike a mover at a
// specific path cell.
type InterceptOpportunity struct {
	Interceptor string
	Target      string
	Kind        InterceptKind
	Cell        grid.Position
	PathIndex   int
}

// InterceptCheck is the outcome of walking a movement path against every
// potential interceptor.
type InterceptCheck struct {
	Opportunities []InterceptOpportunity
	// Blocked is true when a hard intercept stops the movement.
	Blocked bool
	// BlockedIndex is the path index the mover is stopped at.
	BlockedIndex int
	// BlockedAt is the cell the mover is stopped at.
	BlockedAt grid.Position
}

// InterceptResult reports one executed intercept.
type InterceptResult struct {
	OK     bool
	Reason Reason
	Kind   InterceptKind
	Damage int
	Killed bool
}

// DisengageResult reports an attempt to break from engagement.
type DisengageResult struct {
	OK bool
	// Reason is insufficient_movement or not_engaged on failure.
	Reason Reason
	// CostPaid is the movement deducted on success.
	CostPaid int
	// TriggersAoO signals that the engagement mechanic should resolve an
	// attack of opportunity against the disengaging unit.
	TriggersAoO bool
}

// InterceptProcessor implements reactive strikes against enemies moving
// through a unit's reach. Charges refill once per round at the owning
// unit's turn_start.
type InterceptProcessor struct {
	maxIntercepts  int
	disengageCost  int
	hardDamageMult float64

	// formationCheck is wired by the pipeline when phalanx is active: a
	// spear wall in formation hard-intercepts even with charges spent.
	formationCheck func(st unit.BattleState, u unit.Unit) bool
}

// NewInterceptProcessor creates the intercept processor from cfg.
func NewInterceptProcessor(cfg MechanicsConfig) *InterceptProcessor {
	return &InterceptProcessor{
		maxIntercepts:  int(cfg.Option(Intercept, "max_intercepts")),
		disengageCost:  int(cfg.Option(Intercept, "disengage_cost")),
		hardDamageMult: cfg.Option(Intercept, "hard_damage_mult"),
	}
}

// Mechanic returns Intercept.
func (p *InterceptProcessor) Mechanic() Mechanic { return Intercept }

// Tier returns 2.
func (p *InterceptProcessor) Tier() int { return TierOf(Intercept) }

// SetFormationCheck wires the phalanx formation query in. Intercept does
// not depend on phalanx; the pipeline connects them when both are active.
func (p *InterceptProcessor) SetFormationCheck(fn func(st unit.BattleState, u unit.Unit) bool) {
	p.formationCheck = fn
}

// InitState fills every unit's intercept charges.
func (p *InterceptProcessor) InitState(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		c.Units[i].Intercept.Max = p.maxIntercepts
		c.Units[i].Intercept.Remaining = p.maxIntercepts
	}
	return c
}

// hasCharge reports whether interceptor can spend an intercept, counting
// a held phalanx formation as an inexhaustible hard-intercept source.
func (p *InterceptProcessor) hasCharge(st unit.BattleState, interceptor unit.Unit) bool {
	if interceptor.Intercept.Remaining > 0 {
		return true
	}
	return p.formationCheck != nil && p.formationCheck(st, interceptor)
}

// CanHardIntercept reports whether interceptor may hard-intercept target:
// a living spear wall with a charge (or a held formation) against a
// charging cavalry-tagged enemy.
func (p *InterceptProcessor) CanHardIntercept(st unit.BattleState, interceptor, target unit.Unit) bool {
	return interceptor.Alive &&
		interceptor.Team != target.Team &&
		interceptor.HasTag(TagSpearWall) &&
		p.hasCharge(st, interceptor) &&
		target.Alive &&
		target.HasTag(TagCavalry) &&
		target.Charge.Charging
}

// CanSoftIntercept reports whether interceptor may soft-intercept target:
// any living melee unit with a charge against any living enemy.
func (p *InterceptProcessor) CanSoftIntercept(interceptor, target unit.Unit) bool {
	return interceptor.Alive &&
		interceptor.Team != target.Team &&
		interceptor.IsMelee() &&
		interceptor.Intercept.Remaining > 0 &&
		target.Alive
}

// CheckIntercept walks a movement path cell by cell and collects every
// intercept opportunity along it. At each cell, hard intercepts take
// priority over soft; the first hard intercept halts path evaluation and
// records the blocking cell. Each interceptor reacts at most once per
// movement. Interceptors adjacent to the same cell are considered in
// instance-id order.
//
// Postcondition: Pure — identical inputs yield identical results; at
// most one hard opportunity is returned, always last.
func (p *InterceptProcessor) CheckIntercept(st unit.BattleState, mover unit.Unit, path []grid.Position) InterceptCheck {
	check := InterceptCheck{}
	used := make(map[string]bool)

	for idx, cell := range path {
		var adjacent []unit.Unit
		for _, u := range st.Units {
			if u.Team == mover.Team || u.InstanceID == mover.InstanceID || used[u.InstanceID] {
				continue
			}
			if u.Alive && grid.Adjacent(u.Position, cell) {
				adjacent = append(adjacent, u)
			}
		}
		sort.Slice(adjacent, func(i, j int) bool {
			return adjacent[i].InstanceID < adjacent[j].InstanceID
		})

		// Hard intercepts first: the first eligible one blocks movement
		// and ends the walk.
		for _, ic := range adjacent {
			if p.CanHardIntercept(st, ic, mover) {
				check.Opportunities = append(check.Opportunities, InterceptOpportunity{
					Interceptor: ic.InstanceID,
					Target:      mover.InstanceID,
					Kind:        HardIntercept,
					Cell:        cell,
					PathIndex:   idx,
				})
				check.Blocked = true
				check.BlockedIndex = idx
				check.BlockedAt = cell
				return check
			}
		}
		for _, ic := range adjacent {
			if p.CanSoftIntercept(ic, mover) {
				check.Opportunities = append(check.Opportunities, InterceptOpportunity{
					Interceptor: ic.InstanceID,
					Target:      mover.InstanceID,
					Kind:        SoftIntercept,
					Cell:        cell,
					PathIndex:   idx,
				})
				used[ic.InstanceID] = true
			}
		}
	}
	return check
}

// ExecuteHardIntercept strikes the charging target for
// floor(atk × hard_damage_mult), zeroes its momentum, engages it with the
// interceptor, and consumes one charge.
//
// Postcondition: The input state is not mutated; on success the target's
// Charge extension is zeroed.
func (p *InterceptProcessor) ExecuteHardIntercept(st unit.BattleState, interceptorID, targetID string) (unit.BattleState, InterceptResult) {
	ii, iok := st.Find(interceptorID)
	ti, tok := st.Find(targetID)
	if !iok || !tok {
		return st, InterceptResult{Reason: ReasonUnknownUnit, Kind: HardIntercept}
	}
	if !p.CanHardIntercept(st, st.Units[ii], st.Units[ti]) {
		reason := ReasonNotEligible
		if !p.hasCharge(st, st.Units[ii]) {
			reason = ReasonNoCharges
		}
		return st, InterceptResult{Reason: reason, Kind: HardIntercept}
	}

	c := st.Clone()
	interceptor := &c.Units[ii]
	target := &c.Units[ti]

	dmg := int(math.Floor(float64(interceptor.Attack) * p.hardDamageMult))
	killed := damageUnit(target, dmg)
	target.Charge = unit.ChargeState{}
	if interceptor.Intercept.Remaining > 0 {
		interceptor.Intercept.Remaining--
	}
	interceptor.Intercept.Intercepting = true
	if target.Alive {
		engage(interceptor, target)
	}
	c.Record(unit.Event{Type: "hard_intercept", Actor: interceptorID, Target: targetID, Amount: dmg})
	return c, InterceptResult{OK: true, Kind: HardIntercept, Damage: dmg, Killed: killed}
}

// ExecuteSoftIntercept engages the passing target without damaging it and
// consumes one charge.
func (p *InterceptProcessor) ExecuteSoftIntercept(st unit.BattleState, interceptorID, targetID string) (unit.BattleState, InterceptResult) {
	ii, iok := st.Find(interceptorID)
	ti, tok := st.Find(targetID)
	if !iok || !tok {
		return st, InterceptResult{Reason: ReasonUnknownUnit, Kind: SoftIntercept}
	}
	if !p.CanSoftIntercept(st.Units[ii], st.Units[ti]) {
		reason := ReasonNotEligible
		if st.Units[ii].Intercept.Remaining <= 0 {
			reason = ReasonNoCharges
		}
		return st, InterceptResult{Reason: reason, Kind: SoftIntercept}
	}

	c := st.Clone()
	c.Units[ii].Intercept.Remaining--
	c.Units[ii].Intercept.Intercepting = true
	engage(&c.Units[ii], &c.Units[ti])
	c.Record(unit.Event{Type: "soft_intercept", Actor: interceptorID, Target: targetID})
	return c, InterceptResult{OK: true, Kind: SoftIntercept}
}

// DisengageCost returns the movement cost of breaking an engagement.
func (p *InterceptProcessor) DisengageCost() int { return p.disengageCost }

// AttemptDisengage tries to break the named unit out of engagement with
// movementRemaining cells of budget left this turn. On success the
// engagement links are cleared, the cost is reported as paid, and the
// caller is told to let the engagement mechanic resolve the attack of
// opportunity.
func (p *InterceptProcessor) AttemptDisengage(st unit.BattleState, instanceID string, movementRemaining int) (unit.BattleState, DisengageResult) {
	i, ok := st.Find(instanceID)
	if !ok {
		return st, DisengageResult{Reason: ReasonUnknownUnit}
	}
	if !st.Units[i].Engage.Engaged {
		return st, DisengageResult{Reason: ReasonNotEngaged}
	}
	if movementRemaining < p.disengageCost {
		return st, DisengageResult{Reason: ReasonInsufficientMovement}
	}

	c := st.Clone()
	c.Units[i].Engage.Engaged = false
	c.Record(unit.Event{Type: "disengage", Actor: instanceID, Amount: p.disengageCost})
	return c, DisengageResult{OK: true, CostPaid: p.disengageCost, TriggersAoO: true}
}

// Apply refills the actor's charges at turn_start and executes the
// intercepts triggered by the actor's movement path.
func (p *InterceptProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseTurnStart:
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Intercept.Max = p.maxIntercepts
			u.Intercept.Remaining = p.maxIntercepts
			u.Intercept.Intercepting = false
		})
	case PhaseMovement:
		mover, ok := st.Get(ctx.Actor)
		if !ok || len(ctx.Path) == 0 {
			return st
		}
		check := p.CheckIntercept(st, mover, ctx.Path)
		for _, op := range check.Opportunities {
			switch op.Kind {
			case HardIntercept:
				st, _ = p.ExecuteHardIntercept(st, op.Interceptor, op.Target)
			default:
				st, _ = p.ExecuteSoftIntercept(st, op.Interceptor, op.Target)
			}
			if u, ok := st.Get(ctx.Actor); !ok || !u.Alive {
				break
			}
		}
		return st
	default:
		return st
	}
}
