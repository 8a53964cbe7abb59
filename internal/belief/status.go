package belief

import (
	"fmt"
	"strings"

	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Member is a liveness slot in the team status. A scout promoted to
// defender reports as MemberDefender from then on.
type Member int

const (
	MemberDefender Member = iota
	MemberScout1
	MemberScout2
	memberCount
)

func (m Member) String() string {
	switch m {
	case MemberDefender:
		return "defender"
	case MemberScout1:
		return "scout-1"
	case MemberScout2:
		return "scout-2"
	default:
		return "unknown"
	}
}

// Status is the team-wide coordination state.
type Status struct {
	Alive          [memberCount]bool
	HoldingFlag    bool
	FlagInDanger   bool
	DangerCooldown int

	Rally     grid.Cell
	HasRally  bool
	Regrouped bool
	arrived   [memberCount]bool
}

func newStatus() Status {
	return Status{Alive: [memberCount]bool{true, true, true}}
}

// BothScoutsAlive reports whether neither scout slot has been lost.
func (s Status) BothScoutsAlive() bool {
	return s.Alive[MemberScout1] && s.Alive[MemberScout2]
}

// Arrived reports whether m has reached the rally point this cycle.
func (s Status) Arrived(m Member) bool {
	if m < 0 || m >= memberCount {
		return false
	}
	return s.arrived[m]
}

// Status returns a copy of the coordination state.
func (m *Map) Status() Status { return m.status }

// MarkAgentDead clears a member's liveness. Losing the defender leaves the
// home flag in danger for DangerCooldown decisions.
func (m *Map) MarkAgentDead(who Member) {
	if who < 0 || who >= memberCount {
		return
	}
	m.status.Alive[who] = false
	m.status.arrived[who] = false
	if who == MemberDefender {
		m.status.FlagInDanger = true
		m.status.DangerCooldown = m.cfg.DangerCooldown
	}
	m.log.WithField("member", who.String()).Debug("agent dead")
}

// PromoteToDefender moves a scout into the vacant defender slot.
func (m *Map) PromoteToDefender(who Member) {
	if who != MemberScout1 && who != MemberScout2 {
		return
	}
	m.status.Alive[MemberDefender] = true
	m.status.Alive[who] = false
	m.status.arrived[who] = false
	m.log.WithField("member", who.String()).Debug("promoted to defender")
}

// TickDanger counts down the home-flag danger cooldown.
func (m *Map) TickDanger() {
	if m.status.DangerCooldown > 0 {
		m.status.DangerCooldown--
	}
}

// SettleDanger clears the danger flag once the cooldown has run out.
func (m *Map) SettleDanger() {
	if m.status.FlagInDanger && m.status.DangerCooldown <= 0 {
		m.status.FlagInDanger = false
		m.log.Debug("home flag considered safe")
	}
}

// ProposeRallyPoint returns the shared rally point, choosing it on first
// use. Candidates lie on Chebyshev rings RallyInner..RallyOuter around
// anchor, on the side facing home, scanned ring by ring in row-major order;
// the first free cell wins. ok is false when no candidate is free.
func (m *Map) ProposeRallyPoint(anchor grid.Cell) (grid.Cell, bool) {
	if m.status.HasRally {
		return m.status.Rally, true
	}
	if !m.tiles.In(anchor) {
		return grid.Cell{}, false
	}
	home := m.team.HomeSign()
	for k := m.cfg.RallyInner; k <= m.cfg.RallyOuter; k++ {
		for dr := -k; dr <= k; dr++ {
			for dc := -k; dc <= k; dc++ {
				if max(abs(dr), abs(dc)) != k || dc*home <= 0 {
					continue
				}
				c := anchor.Add(dr, dc)
				if m.TraversalAt(c) != grid.TravFree {
					continue
				}
				m.status.Rally, m.status.HasRally = c, true
				m.log.WithField("cell", c.String()).Debug("rally point set")
				return c, true
			}
		}
	}
	return grid.Cell{}, false
}

// InvalidateRally drops the rally point and regroup progress so the next
// capture attempt chooses afresh.
func (m *Map) InvalidateRally() {
	m.status.HasRally = false
	m.status.Regrouped = false
	m.status.arrived = [memberCount]bool{}
}

// MarkRallyArrival records a scout at the rally point. When both living
// scouts have arrived the team is regrouped and arrivals reset for the next
// cycle.
func (m *Map) MarkRallyArrival(who Member) {
	if !m.status.HasRally || (who != MemberScout1 && who != MemberScout2) {
		return
	}
	m.status.arrived[who] = true
	if m.status.arrived[MemberScout1] && m.status.arrived[MemberScout2] && m.status.BothScoutsAlive() {
		m.status.Regrouped = true
		m.status.arrived = [memberCount]bool{}
		m.log.Debug("scouts regrouped")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Dump renders the belief as ASCII with a one-line status header.
func (m *Map) Dump() string {
	var b strings.Builder
	s := m.status
	fmt.Fprintf(&b, "team=%s ticks=%d updates=%d alive=%v holding=%t danger=%t(%d) regrouped=%t",
		m.team, m.ticks, m.updates, s.Alive, s.HoldingFlag, s.FlagInDanger, s.DangerCooldown, s.Regrouped)
	if s.HasRally {
		fmt.Fprintf(&b, " rally=%s", s.Rally)
	}
	if m.hasOwnFlag {
		fmt.Fprintf(&b, " home=%s", m.ownFlag)
	}
	if m.hasEnemyFlag {
		fmt.Fprintf(&b, " target=%s", m.enemyFlag)
	}
	b.WriteByte('\n')
	for r := 0; r < m.cfg.Rows; r++ {
		for c := 0; c < m.cfg.Cols; c++ {
			cell := grid.C(r, c)
			t := m.tiles.At(cell)
			if t == grid.Empty && m.threat.At(cell) {
				b.WriteByte('~')
				continue
			}
			b.WriteRune(t.Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
