// Package grid provides the minimal board geometry consumed by the combat
// core: positions, Manhattan distance, adjacency, cardinal directions, and
// the cell line used for line-of-sight checks. The full pathfinding module
// lives outside this repository; the combat core only ever sees positions
// and pre-computed movement paths.
package grid

// Position is one cell on the battle grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanDistance returns |a.X-b.X| + |a.Y-b.Y|.
//
// Postcondition: Returns >= 0.
func ManhattanDistance(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether a and b are orthogonally adjacent cells.
// A cell is not adjacent to itself.
//
// Postcondition: Returns true iff ManhattanDistance(a, b) == 1.
func Adjacent(a, b Position) bool {
	return ManhattanDistance(a, b) == 1
}

// Direction is one of the four cardinal facings.
type Direction int

const (
	North Direction = iota
	East
	South
	West
)

// String returns a human-readable direction label.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the direction 180 degrees from d.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// DirectionBetween returns the dominant cardinal direction from from to to.
// Horizontal displacement wins ties so that equal-offset diagonals resolve
// deterministically. from == to returns North.
//
// Postcondition: Returns one of North, East, South, West.
func DirectionBetween(from, to Position) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y
	if abs(dx) >= abs(dy) && dx != 0 {
		if dx > 0 {
			return East
		}
		return West
	}
	if dy > 0 {
		return South
	}
	if dy < 0 {
		return North
	}
	return North
}

// Line returns the cells strictly between a and b using Bresenham's
// algorithm. Endpoints are excluded: callers checking line of sight care
// only about blockers on intermediate cells.
//
// Postcondition: Neither a nor b appears in the returned slice.
func Line(a, b Position) []Position {
	var cells []Position

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := sign(b.X - a.X)
	sy := sign(b.Y - a.Y)
	err := dx + dy

	x, y := a.X, a.Y
	for {
		if x == b.X && y == b.Y {
			break
		}
		if !(x == a.X && y == a.Y) {
			cells = append(cells, Position{X: x, Y: y})
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return cells
}

// StepToward returns the cell one orthogonal step from from in the
// dominant direction of to. from == to returns from unchanged.
func StepToward(from, to Position) Position {
	if from == to {
		return from
	}
	switch DirectionBetween(from, to) {
	case East:
		return Position{X: from.X + 1, Y: from.Y}
	case West:
		return Position{X: from.X - 1, Y: from.Y}
	case South:
		return Position{X: from.X, Y: from.Y + 1}
	default:
		return Position{X: from.X, Y: from.Y - 1}
	}
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
