package mechanics

import (
	"math"
	"slices"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// ShotOpportunity is one vigilant watcher eligible to fire on a mover at
// a specific path cell.
type ShotOpportunity struct {
	Watcher   string
	Target    string
	Cell      grid.Position
	PathIndex int
}

// ShotResult reports one executed overwatch shot.
type ShotResult struct {
	OK     bool
	Reason Reason
	Hit    bool
	Damage int
	Killed bool
	// WatcherStatus is the watcher's vigilance state after the shot.
	WatcherStatus unit.VigilanceStatus
}

// VigilanceResult reports an attempt to enter vigilance.
type VigilanceResult struct {
	OK     bool
	Reason Reason
}

// OverwatchProcessor implements held ranged fire. A unit spends its turn
// entering vigilance (leaving the turn queue), then reacts to enemy
// movement with seeded snap shots until its shots, its ammo, or the round
// runs out. Per unit the state machine is
//
//	inactive → active → triggered → exhausted → inactive
//
// where triggered marks a watcher that has fired but can fire again, and
// exhausted one with no shots left. The end-of-round reset returns every
// watcher to inactive.
type OverwatchProcessor struct {
	maxShots        int
	accuracyPenalty float64
	damageMult      float64
}

// NewOverwatchProcessor creates the overwatch processor from cfg.
func NewOverwatchProcessor(cfg MechanicsConfig) *OverwatchProcessor {
	return &OverwatchProcessor{
		maxShots:        int(cfg.Option(Overwatch, "max_shots")),
		accuracyPenalty: cfg.Option(Overwatch, "accuracy_penalty"),
		damageMult:      cfg.Option(Overwatch, "damage_mult"),
	}
}

// Mechanic returns Overwatch.
func (p *OverwatchProcessor) Mechanic() Mechanic { return Overwatch }

// Tier returns 3.
func (p *OverwatchProcessor) Tier() int { return TierOf(Overwatch) }

// CanEnterVigilance reports whether u may hold its action for overwatch:
// ranged, ammo in the pool, not already vigilant, and not yet acted this
// turn.
func (p *OverwatchProcessor) CanEnterVigilance(u unit.Unit) (bool, Reason) {
	if !u.IsRanged() {
		return false, ReasonNotRanged
	}
	if u.Ammo.Remaining <= 0 {
		return false, ReasonNoAmmo
	}
	if u.Vigilance.Status != unit.VigilanceInactive {
		return false, ReasonAlreadyVigilant
	}
	if u.Vigilance.ActedThisTurn {
		return false, ReasonAlreadyActed
	}
	return true, ReasonNone
}

// EnterVigilance moves the named unit into the active vigilance state,
// refilling its shot counter and clearing its fired-target history.
// Entering vigilance is the unit's action for the turn.
func (p *OverwatchProcessor) EnterVigilance(st unit.BattleState, instanceID string) (unit.BattleState, VigilanceResult) {
	u, ok := st.Get(instanceID)
	if !ok {
		return st, VigilanceResult{Reason: ReasonUnknownUnit}
	}
	if ok, reason := p.CanEnterVigilance(u); !ok {
		return st, VigilanceResult{Reason: reason}
	}

	c := withUnit(st, instanceID, func(u *unit.Unit) {
		u.Vigilance.Status = unit.VigilanceActive
		u.Vigilance.ShotsRemaining = p.maxShots
		u.Vigilance.FiredAt = nil
		u.Vigilance.ActedThisTurn = true
	})
	c.Record(unit.Event{Type: "enter_vigilance", Actor: instanceID})
	return c, VigilanceResult{OK: true}
}

// watching reports whether u is in a firing-capable vigilance state.
func watching(u unit.Unit) bool {
	return u.Vigilance.Status == unit.VigilanceActive ||
		u.Vigilance.Status == unit.VigilanceTriggered
}

// CheckOverwatch scans every vigilant enemy of mover against every cell
// of its movement path. A watcher yields at most one opportunity, at the
// first cell inside its overwatch range, and only while it has ammo and
// shots and has not already fired at this mover. Stealth-tagged movers
// produce no opportunities at all.
//
// Postcondition: Pure; watchers appear in instance-id order.
func (p *OverwatchProcessor) CheckOverwatch(st unit.BattleState, mover unit.Unit, path []grid.Position) []ShotOpportunity {
	if mover.HasTag(TagStealth) {
		return nil
	}

	var watchers []unit.Unit
	for _, u := range st.Units {
		if u.Team == mover.Team || !u.Alive || !watching(u) {
			continue
		}
		if u.Ammo.Remaining <= 0 || u.Vigilance.ShotsRemaining <= 0 {
			continue
		}
		if slices.Contains(u.Vigilance.FiredAt, mover.InstanceID) {
			continue
		}
		watchers = append(watchers, u)
	}
	sort.Slice(watchers, func(i, j int) bool {
		return watchers[i].InstanceID < watchers[j].InstanceID
	})

	var ops []ShotOpportunity
	for _, w := range watchers {
		for idx, cell := range path {
			if grid.ManhattanDistance(w.Position, cell) <= w.Range {
				ops = append(ops, ShotOpportunity{
					Watcher:   w.InstanceID,
					Target:    mover.InstanceID,
					Cell:      cell,
					PathIndex: idx,
				})
				break
			}
		}
	}
	return ops
}

// ExecuteShot fires one overwatch shot from watcher at target. The hit
// chance is 1 − accuracy_penalty − targetDodge/100, rolled against a
// seeded draw; a hit deals floor(atk × damage_mult). The shot consumes
// one ammo and one shot regardless of the outcome, and the watcher
// transitions to exhausted when its shots reach zero, triggered
// otherwise.
func (p *OverwatchProcessor) ExecuteShot(st unit.BattleState, watcherID, targetID string, seed uint64) (unit.BattleState, ShotResult) {
	wi, wok := st.Find(watcherID)
	ti, tok := st.Find(targetID)
	if !wok || !tok {
		return st, ShotResult{Reason: ReasonUnknownUnit}
	}
	w := st.Units[wi]
	switch {
	case !watching(w):
		return st, ShotResult{Reason: ReasonNotEligible, WatcherStatus: w.Vigilance.Status}
	case w.Vigilance.ShotsRemaining <= 0:
		return st, ShotResult{Reason: ReasonNoShots, WatcherStatus: w.Vigilance.Status}
	case w.Ammo.Remaining <= 0:
		return st, ShotResult{Reason: ReasonNoAmmo, WatcherStatus: w.Vigilance.Status}
	case slices.Contains(w.Vigilance.FiredAt, targetID):
		return st, ShotResult{Reason: ReasonNotEligible, WatcherStatus: w.Vigilance.Status}
	}

	c := st.Clone()
	watcher := &c.Units[wi]
	target := &c.Units[ti]

	watcher.Ammo.Remaining--
	watcher.Vigilance.ShotsRemaining--
	watcher.Vigilance.FiredAt = append(watcher.Vigilance.FiredAt, targetID)
	if watcher.Vigilance.ShotsRemaining <= 0 {
		watcher.Vigilance.Status = unit.VigilanceExhausted
	} else {
		watcher.Vigilance.Status = unit.VigilanceTriggered
	}

	hitChance := 1 - p.accuracyPenalty - float64(target.Dodge)/100
	res := ShotResult{OK: true, WatcherStatus: watcher.Vigilance.Status}
	if rng.Uniform(seed) < hitChance {
		res.Hit = true
		res.Damage = int(math.Floor(float64(watcher.Attack) * p.damageMult))
		res.Killed = damageUnit(target, res.Damage)
	}
	c.Record(unit.Event{
		Type: "overwatch_shot", Actor: watcherID, Target: targetID,
		Amount: res.Damage, Note: shotNote(res),
	})
	return c, res
}

func shotNote(res ShotResult) string {
	if res.Hit {
		return "hit"
	}
	return "miss"
}

// Apply fires on the moving actor during the movement phase, clears the
// actor's acted flag at turn_start, and performs the end-of-round reset
// when turn_end is invoked at the round boundary (empty actor).
func (p *OverwatchProcessor) Apply(phase Phase, st unit.BattleState, ctx Context) unit.BattleState {
	switch phase {
	case PhaseTurnStart:
		return withUnit(st, ctx.Actor, func(u *unit.Unit) {
			u.Vigilance.ActedThisTurn = false
		})
	case PhaseMovement:
		mover, ok := st.Get(ctx.Actor)
		if !ok {
			return st
		}
		for i, op := range p.CheckOverwatch(st, mover, ctx.Path) {
			st, _ = p.ExecuteShot(st, op.Watcher, op.Target, rng.Derive(ctx.Seed, "overwatch.shot", i))
			if u, ok := st.Get(ctx.Actor); !ok || !u.Alive {
				break
			}
		}
		return st
	case PhaseTurnEnd:
		if ctx.Actor != "" {
			return st
		}
		return p.resetAll(st)
	default:
		return st
	}
}

// resetAll returns every watcher to inactive, clearing shot counters and
// fired-target history. Invoked once per round by the driver.
func (p *OverwatchProcessor) resetAll(st unit.BattleState) unit.BattleState {
	c := st.Clone()
	for i := range c.Units {
		v := &c.Units[i].Vigilance
		if v.Status != unit.VigilanceInactive {
			v.Status = unit.VigilanceInactive
			v.ShotsRemaining = 0
			v.FiredAt = nil
		}
	}
	return c
}
