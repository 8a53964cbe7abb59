package arbiter

import (
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

func (t *tick) bulletsInRange() bool { return len(t.m.BulletsInRange(t.pos)) > 0 }

func (t *tick) enemyInRange() bool {
	return t.obs.CanShoot && len(t.m.EnemiesInRange(t.pos)) > 0
}

func (t *tick) carrying() bool {
	_, ok := t.m.OwnFlag()
	return t.agent.holding && ok
}

func (t *tick) homeInDanger() bool { return t.status().FlagInDanger }

// nearest returns the closest cell to pos; ties keep scan order.
func nearest(pos grid.Cell, cells []grid.Cell) grid.Cell {
	best := cells[0]
	for _, c := range cells[1:] {
		if pos.Manhattan(c) < pos.Manhattan(best) {
			best = c
		}
	}
	return best
}

func (t *tick) open(c grid.Cell) bool {
	return t.m.TraversalAt(c) != grid.TravBlocked
}

// dodge sidesteps out of the nearest bullet's line, or backs straight away
// from it when both sides are closed. With nowhere to go it still claims the
// tick and waits.
func (t *tick) dodge() (Decision, bool) {
	b := nearest(t.pos, t.m.BulletsInRange(t.pos))
	sides := [2]grid.Direction{grid.Down, grid.Up}
	if b.Col == t.pos.Col {
		sides = [2]grid.Direction{grid.Right, grid.Left}
	}
	for _, d := range sides {
		if t.open(t.pos.Step(d)) {
			return Decision{Action: grid.ActionMove, Dir: d}, true
		}
	}
	away := grid.Toward(t.pos, b).Opposite()
	if away != grid.None && t.open(t.pos.Step(away)) {
		return Decision{Action: grid.ActionMove, Dir: away}, true
	}
	return Decision{}, true
}

func (t *tick) shoot() (Decision, bool) {
	e := nearest(t.pos, t.m.EnemiesInRange(t.pos))
	dir := grid.Toward(t.pos, e)
	if dir == grid.None {
		return Decision{}, false
	}
	return Decision{Action: grid.ActionShoot, Dir: dir}, true
}

func (t *tick) carryHome() (Decision, bool) {
	home, _ := t.m.OwnFlag()
	return t.moveTo(home), true
}

// defendHome answers a lost defender: push on when the enemy flag is the
// nearer target, otherwise patrol home.
func (t *tick) defendHome() (Decision, bool) {
	t.m.TickDanger()
	home, homeOK := t.m.OwnFlag()
	target, targetOK := t.m.EnemyFlag()
	if targetOK && !t.agent.holding && (!homeOK || t.pos.Dist(target) < t.pos.Dist(home)) {
		return t.moveTo(target), true
	}
	if homeOK {
		return t.perimeter(home), true
	}
	return Decision{}, true
}
