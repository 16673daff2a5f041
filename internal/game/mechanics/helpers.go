package mechanics

import (
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// damageUnit applies flat damage to u in place, maintaining the HP and
// alive invariants. Mechanic side-damage (intercepts, overwatch shots,
// attacks of opportunity, poison ticks) bypasses armor per its own
// formula, so the kernel damage calculation is not involved here.
func damageUnit(u *unit.Unit, amount int) (killed bool) {
	res := combat.ApplyDamage(*u, amount)
	u.HP = res.NewHP
	if res.Killed {
		u.Alive = false
	}
	return res.Killed
}

// withUnit clones st, applies fn to the named unit inside the clone, and
// returns the clone. When the unit does not exist the input state is
// returned unchanged.
func withUnit(st unit.BattleState, instanceID string, fn func(*unit.Unit)) unit.BattleState {
	i, ok := st.Find(instanceID)
	if !ok {
		return st
	}
	c := st.Clone()
	fn(&c.Units[i])
	return c
}

// addUnique appends s to list if not already present.
func addUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
