package arbiter

import (
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Corner indexes the two enemy-edge corners a scout may explore.
type Corner uint8

const (
	CornerNorth Corner = iota
	CornerSouth
)

// BehaviorState is an agent's private memory across ticks: which corners it
// has explored and the waypoint it is currently walking to.
type BehaviorState struct {
	visited [2]bool

	waypoint    grid.Cell
	hasWaypoint bool
	owner       Behavior  // behavior family that picked the waypoint
	anchor      grid.Cell // perimeter centre the waypoint was picked around

	picks    int  // random search waypoints used this cycle
	fallback bool // heading for the opposite corner
}

// Visited reports whether the corner has been reached.
func (s BehaviorState) Visited(c Corner) bool { return s.visited[c] }

// Waypoint returns the current waypoint, if any.
func (s BehaviorState) Waypoint() (grid.Cell, bool) { return s.waypoint, s.hasWaypoint }

func (s *BehaviorState) setWaypoint(owner Behavior, anchor, c grid.Cell) {
	s.waypoint, s.hasWaypoint, s.owner, s.anchor = c, true, owner, anchor
}

func (s *BehaviorState) clearWaypoint() { s.hasWaypoint = false }

func (s *BehaviorState) waypointFor(owner Behavior, anchor grid.Cell) (grid.Cell, bool) {
	if !s.hasWaypoint || s.owner != owner || s.anchor != anchor {
		return grid.Cell{}, false
	}
	return s.waypoint, true
}

// corners returns the scout's assigned corner and the opposite one. Slot 1
// takes the south corner, slot 2 the north.
func (a *Agent) corners(rows, cols int) (own, other grid.Cell, ownID, otherID Corner) {
	edge := a.team.side.EnemyEdge(cols)
	north, south := grid.C(1, edge), grid.C(rows-2, edge)
	if a.slot == 1 {
		return south, north, CornerSouth, CornerNorth
	}
	return north, south, CornerNorth, CornerSouth
}

var diagonals = [4]grid.Cell{{Row: -1, Col: -1}, {Row: -1, Col: 1}, {Row: 1, Col: -1}, {Row: 1, Col: 1}}

// perimeter patrols the diagonals around anchor, choosing a new one at random
// whenever the current one is reached, unset, or unreachable.
func (t *tick) perimeter(anchor grid.Cell) Decision {
	st := &t.agent.state
	wp, ok := st.waypointFor(BehaviorHoldPerimeter, anchor)
	if !ok || wp == t.pos {
		off := diagonals[t.team.rng.IntN(len(diagonals))]
		wp = anchor.Add(off.Row, off.Col)
		st.setWaypoint(BehaviorHoldPerimeter, anchor, wp)
	}
	d := t.moveTo(wp)
	if d.Action == grid.ActionNone {
		st.clearWaypoint()
	}
	return d
}
