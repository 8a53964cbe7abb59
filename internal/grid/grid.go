// Package grid holds the cell vocabulary shared by the belief map, the router
// and the arbiter: coordinates, directions, actions and teams.
package grid

import (
	"fmt"
	"math"
)

// Cell is an absolute grid coordinate. Row grows downward, Col grows rightward.
type Cell struct {
	Row, Col int
}

// C is shorthand for Cell{Row: row, Col: col}.
func C(row, col int) Cell { return Cell{Row: row, Col: col} }

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Add returns the cell offset by (dr, dc).
func (c Cell) Add(dr, dc int) Cell { return Cell{Row: c.Row + dr, Col: c.Col + dc} }

// Step returns the neighbour of c in direction d. Step(None) returns c.
func (c Cell) Step(d Direction) Cell {
	dr, dc := d.Delta()
	return c.Add(dr, dc)
}

// Dist returns the Euclidean distance between two cells.
func (c Cell) Dist(o Cell) float64 {
	dr := float64(c.Row - o.Row)
	dc := float64(c.Col - o.Col)
	return math.Sqrt(dr*dr + dc*dc)
}

// Manhattan returns the 4-connected step distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.Row-o.Row) + abs(c.Col-o.Col)
}

// Chebyshev returns the king-move distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	return max(abs(c.Row-o.Row), abs(c.Col-o.Col))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a cardinal facing or movement direction.
type Direction uint8

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "none"
	}
}

// Delta returns the (row, col) offset of one step in direction d.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return None
	}
}

// Toward returns the direction of `to` as seen from `from`. It returns None
// unless the two cells share exactly one of row or column.
func Toward(from, to Cell) Direction {
	switch {
	case to.Row < from.Row && to.Col == from.Col:
		return Up
	case to.Row > from.Row && to.Col == from.Col:
		return Down
	case to.Col < from.Col && to.Row == from.Row:
		return Left
	case to.Col > from.Col && to.Row == from.Row:
		return Right
	default:
		return None
	}
}

// Action is what an agent asks the engine to do this tick.
type Action uint8

const (
	ActionNone Action = iota
	ActionMove
	ActionShoot
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionShoot:
		return "shoot"
	default:
		return "none"
	}
}

// Team identifies a side. Blue holds the west half of the map and attacks
// east; Red holds the east half and attacks west.
type Team uint8

const (
	TeamBlue Team = iota
	TeamRed
)

func (t Team) String() string {
	if t == TeamRed {
		return "red"
	}
	return "blue"
}

// Enemy returns the opposing team.
func (t Team) Enemy() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// HomeSign is -1 when home lies toward column 0 and +1 when it lies toward
// the last column.
func (t Team) HomeSign() int {
	if t == TeamRed {
		return 1
	}
	return -1
}

// EnemyEdge returns the playable column next to the enemy's map edge, one
// cell in from the border wall.
func (t Team) EnemyEdge(cols int) int {
	if t == TeamRed {
		return 1
	}
	return cols - 2
}

// EnemyHalf returns the half-open column range [lo, hi) of enemy territory.
func (t Team) EnemyHalf(cols int) (int, int) {
	if t == TeamRed {
		return 0, cols / 2
	}
	return cols / 2, cols
}
