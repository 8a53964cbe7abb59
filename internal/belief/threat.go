package belief

import "github.com/Garsondee/Flag-Sense/internal/grid"

// RecomputeThreats rebuilds the threat zone around observer from the
// currently known enemies. Every enemy inside the observer's scan box
// poisons ShootRange cells along its row and column. The previous zone is
// discarded, so enemies that are no longer tracked leave nothing behind.
func (m *Map) RecomputeThreats(observer grid.Cell) {
	if !m.tiles.In(observer) {
		return
	}
	scan := m.cfg.ThreatScanRadius
	reach := m.cfg.ShootRange

	old := m.threatCells
	for _, c := range old {
		m.threat.Set(c, false)
	}
	next := make([]grid.Cell, 0, len(old))
	mark := func(c grid.Cell) {
		if !m.threat.In(c) || m.threat.At(c) {
			return
		}
		m.threat.Set(c, true)
		next = append(next, c)
	}

	for _, e := range m.KnownEnemies() {
		if e.Chebyshev(observer) > scan {
			continue
		}
		for k := -reach; k <= reach; k++ {
			mark(e.Add(0, k))
			mark(e.Add(k, 0))
		}
	}

	m.threatCells = next
	for _, c := range old {
		m.project(c)
	}
	for _, c := range next {
		m.project(c)
	}
}

// ThreatCells returns the cells of the current threat zone.
func (m *Map) ThreatCells() []grid.Cell {
	out := make([]grid.Cell, len(m.threatCells))
	copy(out, m.threatCells)
	return out
}

// RefreshEnemyMemory forgets every tracked enemy and every remembered
// projectile, un-threatening the cells they poisoned. Enemies still in some
// agent's window are learned again by that agent's next Merge, so only the
// ones nobody sees stay forgotten.
func (m *Map) RefreshEnemyMemory() {
	forgotten := len(m.enemies)
	for c := range m.enemies {
		if m.tiles.At(c) == grid.EnemyAgent {
			m.tiles.Set(c, grid.Empty)
			m.project(c)
		}
	}
	clear(m.enemies)
	m.forgetProjectiles()

	for _, c := range m.threatCells {
		m.threat.Set(c, false)
		m.project(c)
	}
	m.threatCells = m.threatCells[:0]

	if forgotten > 0 {
		m.log.WithField("forgotten", forgotten).Debug("enemy memory refreshed")
	}
}

func (m *Map) forgetProjectiles() {
	for c := range m.projectiles {
		if m.tiles.At(c) == grid.Projectile {
			m.tiles.Set(c, grid.Empty)
			m.project(c)
		}
	}
	clear(m.projectiles)
}
