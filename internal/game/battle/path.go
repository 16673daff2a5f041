package battle

import (
	"github.com/cory-johannsen/warband/internal/game/grid"
	"github.com/cory-johannsen/warband/internal/game/unit"
)

// planPath computes the cells the actor intends to walk toward its
// target, greedy one step at a time, stopping once the target is inside
// attack range or the movement budget is spent. The returned path
// excludes the origin cell. Occupied cells are stepped around on the
// secondary axis; a fully blocked approach ends the path early.
//
// Postcondition: Pure; len(path) <= budget; consecutive cells (and the
// first cell relative to the actor's position) are orthogonally adjacent.
func planPath(st unit.BattleState, actor, target unit.Unit, budget int) []grid.Position {
	occupied := make(map[grid.Position]bool, len(st.Units))
	for _, u := range st.Units {
		if u.Alive && u.InstanceID != actor.InstanceID {
			occupied[u.Position] = true
		}
	}

	var path []grid.Position
	cur := actor.Position
	for len(path) < budget {
		if grid.ManhattanDistance(cur, target.Position) <= actor.Range {
			break
		}
		next, ok := nextStep(cur, target.Position, occupied)
		if !ok {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path
}

// nextStep picks the adjacent cell that closes distance to the goal,
// preferring the dominant axis and falling back to the other axis when
// the preferred cell is occupied.
func nextStep(from, to grid.Position, occupied map[grid.Position]bool) (grid.Position, bool) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if dx == 0 && dy == 0 {
		return grid.Position{}, false
	}

	xStep := grid.Position{X: from.X + sign(dx), Y: from.Y}
	yStep := grid.Position{X: from.X, Y: from.Y + sign(dy)}

	var candidates []grid.Position
	switch {
	case dx == 0:
		candidates = []grid.Position{yStep}
	case dy == 0:
		candidates = []grid.Position{xStep}
	case abs(dx) >= abs(dy):
		candidates = []grid.Position{xStep, yStep}
	default:
		candidates = []grid.Position{yStep, xStep}
	}

	for _, c := range candidates {
		if !occupied[c] {
			return c, true
		}
	}
	return grid.Position{}, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
