// Package turnorder builds and maintains the deterministic acting order
// for one battle round.
package turnorder

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/warband/internal/game/unit"
)

// Build filters units down to those that can act this round and sorts
// them by initiative descending, speed descending, then instance id
// ascending. The id comparison guarantees a total order, so equal stats
// can never introduce non-determinism.
//
// Postcondition: Every returned unit satisfies CanAct; the order is a
// pure function of the input set.
func Build(units []unit.Unit) []unit.Unit {
	var queue []unit.Unit
	for _, u := range units {
		if u.CanAct() {
			queue = append(queue, u.Clone())
		}
	}
	sort.Slice(queue, func(i, j int) bool {
		a, b := queue[i], queue[j]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		if a.Speed != b.Speed {
			return a.Speed > b.Speed
		}
		return a.InstanceID < b.InstanceID
	})
	return queue
}

// Next returns the first unit in the queue that can still act. Units may
// have died or routed since the queue was built, so the flag is
// re-checked here.
func Next(queue []unit.Unit) (unit.Unit, bool) {
	for _, u := range queue {
		if u.CanAct() {
			return u, true
		}
	}
	return unit.Unit{}, false
}

// Advance pops the head of the queue. When no actable unit remains in the
// remainder, the queue is rebuilt from the full roster — the start of a
// new round.
//
// Postcondition: The returned queue never contains the popped head.
func Advance(queue []unit.Unit, all []unit.Unit) []unit.Unit {
	if len(queue) > 0 {
		queue = queue[1:]
	}
	if _, ok := Next(queue); !ok {
		return Build(all)
	}
	return queue
}

// ShouldStartNewRound reports whether the queue is spent while the roster
// still holds actable units.
//
// Postcondition: Returns true iff the queue has no actable unit and the
// full roster does.
func ShouldStartNewRound(queue []unit.Unit, all []unit.Unit) bool {
	if _, ok := Next(queue); ok {
		return false
	}
	_, ok := Next(all)
	return ok
}

// ValidationResult collects queue consistency problems. Errors indicate a
// corrupt state; warnings indicate caller misuse that does not corrupt
// results.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validate checks a built queue for duplicate instance ids and HP/alive
// inconsistency (errors), and for routing or vigilant units that the
// build filter should have removed (warnings — their presence means the
// caller mutated units after Build, not that the state is corrupt).
func Validate(queue []unit.Unit) ValidationResult {
	res := ValidationResult{Valid: true}
	seen := make(map[string]bool, len(queue))
	for _, u := range queue {
		if seen[u.InstanceID] {
			res.Errors = append(res.Errors, fmt.Sprintf("duplicate instance id %q", u.InstanceID))
		}
		seen[u.InstanceID] = true

		if u.Alive != (u.HP > 0) {
			res.Errors = append(res.Errors, fmt.Sprintf("unit %q alive=%t with hp=%d", u.InstanceID, u.Alive, u.HP))
		}
		if u.Morale.Routing {
			res.Warnings = append(res.Warnings, fmt.Sprintf("routing unit %q present in queue", u.InstanceID))
		}
		if u.Vigilance.Status != unit.VigilanceInactive {
			res.Warnings = append(res.Warnings, fmt.Sprintf("vigilant unit %q present in queue", u.InstanceID))
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}
