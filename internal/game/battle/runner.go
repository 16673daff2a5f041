// Package battle provides the reference driver that runs one battle to
// completion: it owns the round/turn loop, invokes the mechanics
// pipeline once per phase per acting unit, and reports the outcome. The
// combat core underneath is driver-agnostic; this runner exists so the
// simulator binary and the integration tests have a complete loop.
package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/mechanics"
	"github.com/cory-johannsen/warband/internal/game/rng"
	"github.com/cory-johannsen/warband/internal/game/targeting"
	"github.com/cory-johannsen/warband/internal/game/turnorder"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// TagMagic marks a unit whose attacks are magical: armor is ignored and
// no dodge is rolled.
const TagMagic = "magic"

// DefaultMaxRounds bounds a battle that never resolves.
const DefaultMaxRounds = 100

// DamageHook adjusts the damage of a landed attack just before it is
// applied. Hooks must be pure for determinism to hold.
type DamageHook func(attacker, target unit.Unit, damage int) int

// Runner drives one battle at a time. A Runner holds no mutable state
// between Run calls; the pipeline it references is immutable after
// construction, so distinct Runners sharing one pipeline may run
// concurrently.
type Runner struct {
	Kernel    combat.Config
	Pipeline  *mechanics.Pipeline
	Targeting targeting.Config
	Strategy  targeting.Strategy
	MaxRounds int
	Hook      DamageHook

	logger *zap.Logger
}

// NewRunner creates a Runner with kernel and targeting defaults.
//
// Precondition: pipe must be non-nil. logger may be nil for silence.
func NewRunner(pipe *mechanics.Pipeline, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Kernel:    combat.DefaultConfig(),
		Pipeline:  pipe,
		Targeting: targeting.DefaultConfig(),
		Strategy:  targeting.Nearest,
		MaxRounds: DefaultMaxRounds,
		logger:    logger,
	}
}

// Outcome is the result of one completed battle.
type Outcome struct {
	// Winner is the victorious team, or -1 for a draw at the round cap.
	Winner int
	Rounds int
	Final  unit.BattleState
}

// Run resolves the battle from st to completion.
//
// Postcondition: The input state is not mutated; given identical
// (st, seed) and an identical pipeline configuration the outcome is
// bit-identical across runs.
func (r *Runner) Run(st unit.BattleState, seed uint64) Outcome {
	st = r.Pipeline.InitState(st.Clone())

	rounds := 0
	for round := 1; round <= r.MaxRounds; round++ {
		rounds = round
		st.Round = round
		st = r.runRound(st, seed, round)
		if st.TeamDefeated(0) || st.TeamDefeated(1) {
			break
		}
	}

	winner := -1
	switch {
	case st.TeamDefeated(1) && !st.TeamDefeated(0):
		winner = 0
	case st.TeamDefeated(0) && !st.TeamDefeated(1):
		winner = 1
	}
	r.logger.Debug("battle resolved",
		zap.Int("winner", winner),
		zap.Int("rounds", rounds),
		zap.Int("events", len(st.Events)))
	return Outcome{Winner: winner, Rounds: rounds, Final: st}
}

// runRound builds the turn queue and gives each actable unit one turn,
// then fires the round-boundary turn_end (empty actor) that resets
// held states like vigilance.
func (r *Runner) runRound(st unit.BattleState, seed uint64, round int) unit.BattleState {
	queue := turnorder.Build(st.Units)
	turn := 0
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		// Re-check against the live state: the unit may have died,
		// routed, or entered vigilance since the queue was built.
		cur, ok := st.Get(head.InstanceID)
		if !ok || !cur.CanAct() {
			continue
		}
		st = r.takeTurn(st, cur.InstanceID, rng.Derive(seed, "turn", round, turn))
		turn++
		if st.TeamDefeated(0) || st.TeamDefeated(1) {
			return st
		}
	}
	return r.Pipeline.Apply(mechanics.PhaseTurnEnd, st, mechanics.Context{
		Seed: rng.Derive(seed, "round_end", round),
	})
}

// takeTurn runs the four phases for one acting unit.
func (r *Runner) takeTurn(st unit.BattleState, actorID string, seed uint64) unit.BattleState {
	st = r.Pipeline.Apply(mechanics.PhaseTurnStart, st, mechanics.Context{
		Actor: actorID,
		Seed:  rng.Derive(seed, "turn_start"),
	})

	actor, ok := st.Get(actorID)
	if !ok || !actor.CanAct() {
		// Poison or a rout check during turn_start took the turn away.
		return st
	}

	target, ok := targeting.Select(actor, st, r.Strategy, r.Targeting)
	if !ok {
		return st
	}

	st = r.movementPhase(st, actorID, target.InstanceID, seed)
	if a, ok := st.Get(actorID); !ok || !a.Alive {
		return st
	}

	st = r.attackPhase(st, actorID, target.InstanceID, seed)

	return r.Pipeline.Apply(mechanics.PhaseTurnEnd, st, mechanics.Context{
		Actor: actorID,
		Seed:  rng.Derive(seed, "turn_end"),
	})
}

// movementPhase plans a path toward the target, settles disengagement,
// truncates the path at a hard intercept, moves the actor, and lets the
// movement-phase mechanics react.
func (r *Runner) movementPhase(st unit.BattleState, actorID, targetID string, seed uint64) unit.BattleState {
	actor, aok := st.Get(actorID)
	target, tok := st.Get(targetID)
	if !aok || !tok {
		return st
	}

	budget := actor.Speed
	path := planPath(st, actor, target, budget)
	if len(path) == 0 {
		return st
	}

	// Breaking from a zone of control costs movement and draws the
	// free strike.
	if actor.Engage.Engaged {
		if r.Pipeline.Enabled(mechanics.Intercept) {
			var res mechanics.DisengageResult
			st, res = r.Pipeline.InterceptProc().AttemptDisengage(st, actorID, budget)
			if !res.OK {
				return st
			}
			budget -= res.CostPaid
			if res.TriggersAoO && r.Pipeline.Enabled(mechanics.Engagement) {
				st, _ = r.Pipeline.EngagementProc().ResolveAttacksOfOpportunity(st, actorID)
			}
		} else if r.Pipeline.Enabled(mechanics.Engagement) {
			st, _ = r.Pipeline.EngagementProc().ResolveAttacksOfOpportunity(st, actorID)
		}
		if a, ok := st.Get(actorID); !ok || !a.Alive {
			return st
		}
		actor, _ = st.Get(actorID)
		if len(path) > budget {
			path = path[:budget]
		}
		if len(path) == 0 {
			return st
		}
	}

	// Charge momentum comes from the planned path and must be on the
	// state before interceptors are consulted; a wall only hard-stops a
	// target that is already charging. The pipeline fold re-applies
	// charge later, which is idempotent for the possibly truncated path.
	if r.Pipeline.Enabled(mechanics.Charge) {
		st = r.Pipeline.ChargeProc().Apply(mechanics.PhaseMovement, st, mechanics.Context{
			Actor:  actorID,
			Target: targetID,
			Action: mechanics.ActionMove,
			Path:   path,
		})
		actor, _ = st.Get(actorID)
	}

	if r.Pipeline.Enabled(mechanics.Intercept) {
		check := r.Pipeline.InterceptProc().CheckIntercept(st, actor, path)
		if check.Blocked {
			path = path[:check.BlockedIndex+1]
		}
	}

	origin := actor.Position
	dest := path[len(path)-1]
	st = moveUnit(st, actorID, dest)

	return r.Pipeline.Apply(mechanics.PhaseMovement, st, mechanics.Context{
		Actor:  actorID,
		Target: targetID,
		Action: mechanics.ActionMove,
		Path:   path,
		Origin: origin,
		Seed:   rng.Derive(seed, "movement"),
	})
}

// attackPhase resolves the actor's attack against the target, or falls
// back to entering vigilance when the target is out of reach.
func (r *Runner) attackPhase(st unit.BattleState, actorID, targetID string, seed uint64) unit.BattleState {
	actor, aok := st.Get(actorID)
	target, tok := st.Get(targetID)
	if !aok || !tok || !actor.Alive || !target.Alive {
		return st
	}

	dist := grid.ManhattanDistance(actor.Position, target.Position)
	if dist > actor.Range {
		return r.holdOrPass(st, actorID)
	}

	// A ranged unit fires even at point-blank range, so every one of its
	// attacks draws on ammunition and needs a clear line.
	if actor.IsRanged() {
		if r.Pipeline.Enabled(mechanics.Ammunition) {
			if ok, reason := r.Pipeline.AmmunitionProc().CanFire(actor); !ok {
				st.Record(unit.Event{Type: "attack_blocked", Actor: actorID, Target: targetID, Note: string(reason)})
				return st
			}
		}
		if r.Pipeline.Enabled(mechanics.LineOfSight) {
			if ok, reason := r.Pipeline.LineOfSightProc().CheckRangedAttack(st, actor, target); !ok {
				st.Record(unit.Event{Type: "attack_blocked", Actor: actorID, Target: targetID, Note: string(reason)})
				return st
			}
		}
	}

	magical := actor.HasTag(TagMagic)
	var res combat.AttackResult
	if magical {
		res = combat.ResolveMagicAttack(actor, target)
	} else {
		mods := combat.Modifiers{}
		if r.Pipeline.Enabled(mechanics.Flanking) {
			mods.FlankBonus = r.Pipeline.FlankingProc().BonusFor(actor, target)
		}
		if r.Pipeline.Enabled(mechanics.Charge) {
			mods.MomentumBonus = r.Pipeline.ChargeProc().MomentumFor(actor)
		}
		if r.Pipeline.Enabled(mechanics.Aura) {
			mods.ArmorBonus += r.Pipeline.AuraProc().ArmorBonusFor(st, target)
		}
		if r.Pipeline.Enabled(mechanics.Phalanx) {
			mods.ArmorBonus += r.Pipeline.PhalanxProc().ArmorBonusFor(st, target)
		}
		res = combat.ResolvePhysicalAttack(actor, target, r.Kernel, mods, rng.Derive(seed, "attack"))
	}

	damage := res.Damage
	if !res.Dodged {
		if r.Hook != nil {
			damage = r.Hook(actor, target, damage)
			if damage < 0 {
				damage = 0
			}
		}
		applied := combat.ApplyDamage(target, damage)
		st = moveHP(st, targetID, applied.NewHP)
		st.Record(unit.Event{Type: "attack", Actor: actorID, Target: targetID, Amount: damage})
	} else {
		st.Record(unit.Event{Type: "dodge", Actor: targetID, Target: actorID})
	}

	return r.Pipeline.Apply(mechanics.PhaseAttack, st, mechanics.Context{
		Actor:   actorID,
		Target:  targetID,
		Action:  mechanics.ActionAttack,
		Seed:    rng.Derive(seed, "attack_effects"),
		Damage:  damage,
		Hit:     !res.Dodged,
		Magical: magical,
	})
}

// holdOrPass lets a ranged unit that cannot reach its target enter
// vigilance instead of wasting the turn.
func (r *Runner) holdOrPass(st unit.BattleState, actorID string) unit.BattleState {
	if !r.Pipeline.Enabled(mechanics.Overwatch) {
		return st
	}
	actor, ok := st.Get(actorID)
	if !ok {
		return st
	}
	if ok, _ := r.Pipeline.OverwatchProc().CanEnterVigilance(actor); !ok {
		return st
	}
	st, _ = r.Pipeline.OverwatchProc().EnterVigilance(st, actorID)
	return st
}

// moveUnit relocates the named unit on a cloned state.
func moveUnit(st unit.BattleState, instanceID string, to grid.Position) unit.BattleState {
	i, ok := st.Find(instanceID)
	if !ok {
		return st
	}
	c := st.Clone()
	c.Units[i].Position = to
	return c
}

// moveHP sets the named unit's HP on a cloned state, maintaining the
// alive invariant.
func moveHP(st unit.BattleState, instanceID string, hp int) unit.BattleState {
	i, ok := st.Find(instanceID)
	if !ok {
		return st
	}
	c := st.Clone()
	c.Units[i].HP = hp
	if hp <= 0 {
		c.Units[i].Alive = false
	}
	return c
}
