package arbiter

import (
	"github.com/Garsondee/Flag-Sense/internal/belief"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

func (t *tick) ownFlagKnown() bool {
	_, ok := t.m.OwnFlag()
	return ok
}

func (t *tick) enemyFlagKnown() bool {
	_, ok := t.m.EnemyFlag()
	return ok
}

func (t *tick) scoutsLost() bool {
	s := t.status()
	return !s.Alive[belief.MemberScout1] && !s.Alive[belief.MemberScout2] && t.enemyFlagKnown()
}

func (t *tick) guardHome() (Decision, bool) {
	home, _ := t.m.OwnFlag()
	return t.perimeter(home), true
}

func (t *tick) pushEnemyFlag() (Decision, bool) {
	target, _ := t.m.EnemyFlag()
	return t.moveTo(target), true
}

// canPromote holds only for scout slot 1, and only once the defender is
// gone and the home flag has settled.
func (t *tick) canPromote() bool {
	s := t.status()
	return t.agent.slot == 1 && t.agent.role == RoleScout &&
		!s.Alive[belief.MemberDefender] && !s.FlagInDanger && s.DangerCooldown <= 0 &&
		s.BothScoutsAlive()
}

func (t *tick) promote() (Decision, bool) {
	t.m.PromoteToDefender(belief.MemberScout1)
	t.agent.role = RoleDefender
	t.agent.state.clearWaypoint()
	t.agent.logger().Info("scout promoted to defender")
	d, _ := t.evaluate(defenderRules)
	d.Behavior = BehaviorPromote
	return d, true
}

func (t *tick) enemyFlagUnknown() bool {
	return !t.enemyFlagKnown() && !t.status().HoldingFlag
}

// search explores the enemy side: the scout's own corner first, then random
// cells in the middle band of the enemy half, then the opposite corner.
func (t *tick) search() (Decision, bool) {
	st := &t.agent.state
	rows, cols := t.m.Size()
	own, other, ownID, otherID := t.agent.corners(rows, cols)
	switch t.pos {
	case own:
		st.visited[ownID] = true
	case other:
		st.visited[otherID] = true
	}

	if !st.visited[ownID] {
		return t.moveTo(own), true
	}
	if st.fallback {
		if !st.visited[otherID] {
			return t.moveTo(other), true
		}
		st.fallback, st.picks = false, 0
	}

	if wp, ok := st.waypointFor(BehaviorSearch, grid.Cell{}); ok && wp != t.pos {
		if d := t.moveTo(wp); d.Action != grid.ActionNone {
			return d, true
		}
	}
	st.clearWaypoint()

	cfg := t.team.cfg
	if st.picks < cfg.SearchWaypoints {
		for range cfg.SearchRerolls {
			c := t.bandCell(rows, cols)
			if c == t.pos || c == own || c == other || t.m.TraversalAt(c) == grid.TravBlocked {
				continue
			}
			if d := t.moveTo(c); d.Action != grid.ActionNone {
				st.setWaypoint(BehaviorSearch, grid.Cell{}, c)
				st.picks++
				return d, true
			}
		}
	}

	st.fallback = true
	if !st.visited[otherID] {
		return t.moveTo(other), true
	}
	st.fallback, st.picks = false, 0
	return Decision{}, true
}

// bandCell rolls a cell in the middle third of rows on the enemy half.
func (t *tick) bandCell(rows, cols int) grid.Cell {
	lo, hi := t.team.side.EnemyHalf(cols)
	r0, r1 := rows/3, 2*rows/3
	if r1 <= r0 {
		r0, r1 = 0, rows
	}
	return grid.C(r0+t.team.rng.IntN(r1-r0), lo+t.team.rng.IntN(hi-lo))
}

func (t *tick) needRegroup() bool {
	s := t.status()
	return t.enemyFlagKnown() && !s.HoldingFlag && !s.Regrouped && s.BothScoutsAlive()
}

// regroup walks to the shared rally point and records arrival. A scout on a
// cell touching the rally point has arrived, since the first one there
// occupies it. With no free rally cell the scouts go straight for the flag.
func (t *tick) regroup() (Decision, bool) {
	target, _ := t.m.EnemyFlag()
	rally, ok := t.m.ProposeRallyPoint(target)
	if !ok {
		return Decision{Behavior: BehaviorPush}.routed(t.moveTo(target)), true
	}
	if t.pos.Chebyshev(rally) <= 1 {
		t.m.MarkRallyArrival(t.agent.Member())
		return Decision{}, true
	}
	return t.moveTo(rally), true
}

func (t *tick) readyToPush() bool {
	s := t.status()
	return t.enemyFlagKnown() && !s.HoldingFlag && (s.Regrouped || !s.BothScoutsAlive())
}

func (t *tick) ambushWanted() bool {
	s := t.status()
	return s.HoldingFlag && !t.agent.holding && s.FlagInDanger && t.enemyFlagKnown()
}

func (t *tick) ambush() (Decision, bool) {
	target, _ := t.m.EnemyFlag()
	return t.perimeter(target), true
}

func (t *tick) coverWanted() bool {
	s := t.status()
	return s.HoldingFlag && !t.agent.holding && !s.FlagInDanger && t.ownFlagKnown()
}

func (t *tick) cover() (Decision, bool) {
	home, _ := t.m.OwnFlag()
	return t.moveTo(home), true
}

// routed copies the movement of r onto d, keeping d's behavior label.
func (d Decision) routed(r Decision) Decision {
	d.Action, d.Dir = r.Action, r.Dir
	return d
}
