package belief

import "github.com/Garsondee/Flag-Sense/internal/grid"

var axes = [4]grid.Direction{grid.Up, grid.Down, grid.Left, grid.Right}

// BulletsInRange returns projectiles within DodgeRange that share pos's row
// or column with no obstacle between them.
func (m *Map) BulletsInRange(pos grid.Cell) []grid.Cell {
	return m.scanAxes(pos, m.cfg.DodgeRange, grid.Projectile)
}

// EnemiesInRange returns enemies within ShootRange that share pos's row or
// column with no obstacle between them.
func (m *Map) EnemiesInRange(pos grid.Cell) []grid.Cell {
	return m.scanAxes(pos, m.cfg.ShootRange, grid.EnemyAgent)
}

// scanAxes walks outward from pos along the four axes, stopping each ray at
// the first obstacle or the grid edge.
func (m *Map) scanAxes(pos grid.Cell, reach int, want grid.Tile) []grid.Cell {
	if !m.tiles.In(pos) {
		return nil
	}
	var out []grid.Cell
	for _, d := range axes {
		dr, dc := d.Delta()
		for k := 1; k <= reach; k++ {
			c := pos.Add(dr*k, dc*k)
			if !m.tiles.In(c) {
				break
			}
			t := m.tiles.At(c)
			if t == grid.Obstacle {
				break
			}
			if t == want {
				out = append(out, c)
			}
		}
	}
	return out
}

// ClearLine reports whether a and b share a row or column and no obstacle
// lies strictly between them.
func (m *Map) ClearLine(a, b grid.Cell) bool {
	if a.Row != b.Row && a.Col != b.Col {
		return false
	}
	if a == b {
		return true
	}
	d := grid.Toward(a, a.Add(sign(b.Row-a.Row), sign(b.Col-a.Col)))
	for c := a.Step(d); c != b; c = c.Step(d) {
		if m.tiles.At(c) == grid.Obstacle {
			return false
		}
	}
	return true
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
