// Package belief maintains a team's fused view of the map: what every
// teammate has observed, where enemies were last seen, which cells are
// under threat, and the team-wide coordination state.
package belief

import (
	"cmp"
	"io"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Map is one team's shared belief of the world. It is owned by the team
// controller and mutated by each agent's tick in engine call order; it is
// not safe for concurrent use.
type Map struct {
	team grid.Team
	cfg  config.Tuning
	log  logrus.FieldLogger

	tiles     *grid.Layer[grid.Tile]
	traversal *grid.Layer[grid.Traversal]

	// threat is rebuilt from scratch by every RecomputeThreats call.
	threat      *grid.Layer[bool]
	threatCells []grid.Cell

	enemies     map[grid.Cell]struct{}
	projectiles map[grid.Cell]struct{}

	ownFlag      grid.Cell
	hasOwnFlag   bool
	enemyFlag    grid.Cell
	hasEnemyFlag bool

	status  Status
	updates uint64
	ticks   uint64
}

// Option configures a Map.
type Option func(*Map)

// WithLogger routes the map's debug events to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Map) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates an all-unknown belief map sized from cfg.
func New(team grid.Team, cfg config.Tuning, opts ...Option) *Map {
	m := &Map{
		team:      team,
		cfg:       cfg,
		log:       discardLogger(),
		tiles:     grid.NewLayer[grid.Tile](cfg.Rows, cfg.Cols),
		traversal: grid.NewLayer[grid.Traversal](cfg.Rows, cfg.Cols),
		threat:    grid.NewLayer[bool](cfg.Rows, cfg.Cols),
		enemies:     make(map[grid.Cell]struct{}),
		projectiles: make(map[grid.Cell]struct{}),
		status:      newStatus(),
	}
	for _, o := range opts {
		o(m)
	}
	m.log = m.log.WithField("team", team.String())
	return m
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Team returns the owning team.
func (m *Map) Team() grid.Team { return m.team }

// Tuning returns the configuration the map was built with.
func (m *Map) Tuning() config.Tuning { return m.cfg }

// Size returns the grid dimensions.
func (m *Map) Size() (rows, cols int) { return m.cfg.Rows, m.cfg.Cols }

// In reports whether c is on the grid.
func (m *Map) In(c grid.Cell) bool { return m.tiles.In(c) }

// Tile returns the believed content of c.
func (m *Map) Tile(c grid.Cell) grid.Tile { return m.tiles.At(c) }

// TraversalAt returns the routing class of c. Off-grid cells are blocked.
func (m *Map) TraversalAt(c grid.Cell) grid.Traversal {
	if !m.tiles.In(c) {
		return grid.TravBlocked
	}
	return m.traversal.At(c)
}

// Threatened reports whether c is inside the current threat zone.
func (m *Map) Threatened(c grid.Cell) bool { return m.threat.At(c) }

// OwnFlag returns the home flag cell once it has been observed.
func (m *Map) OwnFlag() (grid.Cell, bool) { return m.ownFlag, m.hasOwnFlag }

// EnemyFlag returns the enemy flag cell once it has been observed.
func (m *Map) EnemyFlag() (grid.Cell, bool) { return m.enemyFlag, m.hasEnemyFlag }

// KnownEnemies returns the tracked enemy positions in row-major order.
func (m *Map) KnownEnemies() []grid.Cell {
	out := make([]grid.Cell, 0, len(m.enemies))
	for c := range m.enemies {
		out = append(out, c)
	}
	slices.SortFunc(out, compareCells)
	return out
}

func compareCells(a, b grid.Cell) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

// Step counts one agent update.
func (m *Map) Step() { m.updates++ }

// Updates returns how many agent updates the map has counted.
func (m *Map) Updates() uint64 { return m.updates }

// Tick marks the start of a simulation tick. Projectiles seen in earlier
// ticks have moved on and are dropped. Every EnemyMemoryTicks ticks the
// tracked enemies are forgotten as well. Call it before the tick's first
// merge.
func (m *Map) Tick() {
	m.ticks++
	m.forgetProjectiles()
	if m.ticks%uint64(m.cfg.EnemyMemoryTicks()) == 0 {
		m.RefreshEnemyMemory()
	}
}

// Ticks returns how many simulation ticks the map has counted.
func (m *Map) Ticks() uint64 { return m.ticks }

// Merge folds an observer-centred window into the map. Unknown cells in the
// window carry no information and are skipped; everything else overwrites
// the stored belief. Cells and origins off the grid are ignored.
func (m *Map) Merge(window [][]grid.Tile, origin grid.Cell) {
	if !m.tiles.In(origin) {
		return
	}
	half := len(window) / 2
	for i, row := range window {
		rowHalf := len(row) / 2
		for j, t := range row {
			if t == grid.Unknown {
				continue
			}
			c := origin.Add(i-half, j-rowHalf)
			if !m.tiles.In(c) {
				continue
			}
			m.observe(c, t)
		}
	}
}

func (m *Map) observe(c grid.Cell, t grid.Tile) {
	prev := m.tiles.At(c)

	if t == grid.EnemyAgent {
		m.enemies[c] = struct{}{}
	} else if prev == grid.EnemyAgent {
		delete(m.enemies, c)
	}
	if t == grid.Projectile {
		m.projectiles[c] = struct{}{}
	} else if prev == grid.Projectile {
		delete(m.projectiles, c)
	}

	switch t {
	case grid.EnemyFlag:
		if !m.hasEnemyFlag {
			m.enemyFlag, m.hasEnemyFlag = c, true
			m.log.WithField("cell", c.String()).Debug("enemy flag located")
		}
	case grid.OwnFlag:
		if !m.hasOwnFlag {
			m.ownFlag, m.hasOwnFlag = c, true
			m.log.WithField("cell", c.String()).Debug("home flag located")
		}
	case grid.Empty:
		if m.hasEnemyFlag && c == m.enemyFlag && !m.status.HoldingFlag {
			m.reopenEnemyFlag()
		}
	}

	if prev == t {
		return
	}
	m.tiles.Set(c, t)
	m.project(c)
}

// reopenEnemyFlag forgets an enemy flag that is no longer where it was seen.
func (m *Map) reopenEnemyFlag() {
	m.log.WithField("cell", m.enemyFlag.String()).Debug("enemy flag gone, search reopened")
	m.hasEnemyFlag = false
	m.InvalidateRally()
}

// project derives the traversal class of c from its tile, the threat zone
// and the holding-flag state. It is the only writer of m.traversal.
func (m *Map) project(c grid.Cell) {
	var tr grid.Traversal
	switch m.tiles.At(c) {
	case grid.Unknown:
		tr = grid.TravUnknown
	case grid.Obstacle:
		tr = grid.TravBlocked
	case grid.OwnFlag:
		// The home flag is only walkable when bringing the enemy flag back.
		if m.status.HoldingFlag {
			tr = grid.TravFree
		} else {
			tr = grid.TravBlocked
		}
	default:
		tr = grid.TravFree
	}
	if tr == grid.TravFree && m.threat.At(c) {
		tr = grid.TravThreatened
	}
	m.traversal.Set(c, tr)
}

// SetHoldingFlag records whether the team carries the enemy flag, opening or
// closing the home flag cell for the return trip.
func (m *Map) SetHoldingFlag(holding bool) {
	if m.status.HoldingFlag == holding {
		return
	}
	m.status.HoldingFlag = holding
	m.log.WithField("holding", holding).Debug("holding flag changed")
	if m.hasOwnFlag {
		m.project(m.ownFlag)
	}
}
