package mechanics

import (
	"math"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// EngagementProcessor implements zone of control: a unit entering a cell
// adjacent to a living melee enemy becomes engaged with it, and breaking
// away without a proper disengage draws an attack of opportunity.
type EngagementProcessor struct {
	aooDamageMult float64
}

// NewEngagementProcessor creates the engagement processor from cfg.
func NewEngagementProcessor(cfg MechanicsConfig) *EngagementProcessor {
	return &EngagementProcessor{
		aooDamageMult: cfg.Option(Engagement, "aoo_damage_mult"),
	}
}

// Mechanic returns Engagement.
func (p *EngagementProcessor) Mechanic() Mechanic { return Engagement }

// Tier returns 1.
func (p *EngagementProcessor) Tier() int { return TierOf(Engagement) }

// InZoneOfControl reports whether pos lies inside holder's zone of
// control: holder must be a living melee unit and pos orthogonally
// adjacent to it.
func (p *EngagementProcessor) InZoneOfControl(holder unit.Unit, pos grid.Position) bool {
	return holder.Alive && holder.IsMelee() && grid.Adjacent(holder.Position, pos)
}

// engage marks a and b as mutually engaged in place.
func engage(a, b *unit.Unit) {
	a.Engage.Engaged = true
	a.Engage.EngagedBy = addUnique(a.Engage.EngagedBy, b.InstanceID)
	b.Engage.Engaged = true
	b.Engage.EngagedBy = addUnique(b.Engage.EngagedBy, a.InstanceID)
}

// Engage marks the two named units as mutually engaged.
func (p *EngagementProcessor) Engage(st unit.BattleState, aID, bID string) unit.BattleState {
	ai, aok := st.Find(aID)
	bi, bok := st.Find(bID)
	if !aok || !bok || ai == bi {
		return st
	}
	c := st.Clone()
	engage(&c.Units[ai], &c.Units[bi])
	return c
}

// AoOResult reports one resolved attack of opportunity.
type AoOResult struct {
	Attacker string
	Damage   int
	Killed   bool
}

// ResolveAttacksOfOpportunity resolves the free strikes every engaging
// melee enemy takes against leaver as it breaks from their zone of
// control. Strike damage is floor(atk × aooMult), armor not applied.
// Strikers act in instance-id order; resolution stops if the leaver dies.
//
// Postcondition: The input state is not mutated; the leaver's engagement
// links are cleared in the returned state.
func (p *EngagementProcessor) ResolveAttacksOfOpportunity(st unit.BattleState, leaverID string) (unit.BattleState, []AoOResult) {
	li, ok := st.Find(leaverID)
	if !ok {
		return st, nil
	}

	c := st.Clone()
	leaver := &c.Units[li]
	strikers := append([]string(nil), leaver.Engage.EngagedBy...)
	sort.Strings(strikers)

	var results []AoOResult
	for _, sid := range strikers {
		si, ok := c.Find(sid)
		if !ok {
			continue
		}
		striker := c.Units[si]
		if !striker.Alive || striker.Team == leaver.Team || !striker.IsMelee() {
			continue
		}
		dmg := int(math.Floor(float64(striker.Attack) * p.aooDamageMult))
		killed := damageUnit(leaver, dmg)
		c.Record(unit.Event{Type: "attack_of_opportunity", Actor: sid, Target: leaverID, Amount: dmg})
		results = append(results, AoOResult{Attacker: sid, Damage: dmg, Killed: killed})
		if killed {
			break
		}
	}

	p.clearLinks(&c, li)
	return c, results
}

// clearLinks removes the engagement links between the unit at index i and
// every unit referencing it.
func (p *EngagementProcessor) clearLinks(st *unit.BattleState, i int) {
	id := st.Units[i].InstanceID
	for _, other := range st.Units[i].Engage.EngagedBy {
		oi, ok := st.Find(other)
		if !ok {
			continue
		}
		st.Units[oi].Engage.EngagedBy = remove(st.Units[oi].Engage.EngagedBy, id)
		if len(st.Units[oi].Engage.EngagedBy) == 0 {
			st.Units[oi].Engage.Engaged = false
		}
	}
	st.Units[i].Engage.EngagedBy = nil
	st.Units[i].Engage.Engaged = false
}

// Apply marks engagements created by movement and melee attacks, and
// prunes links to the dead at turn end.
func (p *EngagementProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseMovement:
		return p.applyMovement(st, ctx)
	case PhaseAttack:
		actor, aok := st.Get(ctx.Actor)
		target, tok := st.Get(ctx.Target)
		if !aok || !tok || !actor.IsMelee() || !actor.Alive || !target.Alive {
			return st
		}
		if !grid.Adjacent(actor.Position, target.Position) {
			return st
		}
		return p.Engage(st, ctx.Actor, ctx.Target)
	case PhaseTurnEnd:
		return p.prune(st)
	default:
		return st
	}
}

// applyMovement walks the actor's path and engages it with the first
// melee enemies whose zone of control it enters.
func (p *EngagementProcessor) applyMovement(st unit.BattleState, ctx Context) unit.BattleState {
	ai, ok := st.Find(ctx.Actor)
	if !ok || len(ctx.Path) == 0 {
		return st
	}
	if !st.Units[ai].Alive {
		return st
	}

	c := st.Clone()
	for _, cell := range ctx.Path {
		entered := false
		for i := range c.Units {
			other := &c.Units[i]
			if other.Team == c.Units[ai].Team || other.InstanceID == ctx.Actor {
				continue
			}
			if p.InZoneOfControl(*other, cell) {
				engage(&c.Units[ai], other)
				entered = true
			}
		}
		// ZoC stops further free movement through the walked path for
		// engagement purposes; later cells were reached only if the
		// driver permitted it, but the engagement is pinned here.
		if entered {
			break
		}
	}
	return c
}

// prune drops engagement links that point at dead units.
func (p *EngagementProcessor) prune(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		u := &c.Units[i]
		if len(u.Engage.EngagedBy) == 0 {
			continue
		}
		var kept []string
		for _, id := range u.Engage.EngagedBy {
			if other, ok := c.Get(id); ok && other.Alive {
				kept = append(kept, id)
			}
		}
		u.Engage.EngagedBy = kept
		u.Engage.Engaged = len(kept) > 0
	}
	return c
}

func remove(list []string, s string) []string {
	var out []string
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
