package arbiter

import (
	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Flag-Sense/internal/belief"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

// Agent is one controlled unit. Its slot is fixed at spawn; its role
// changes only through promotion.
type Agent struct {
	team    *Team
	slot    int
	role    Role
	alive   bool
	holding bool
	state   BehaviorState
	last    Decision
}

// Slot returns the spawn slot (0 defender, 1 and 2 scouts).
func (a *Agent) Slot() int { return a.slot }

// Role returns the agent's current role.
func (a *Agent) Role() Role { return a.role }

// Alive reports whether the agent has not been terminated.
func (a *Agent) Alive() bool { return a.alive }

// Holding reports whether the agent carries the enemy flag.
func (a *Agent) Holding() bool { return a.holding }

// State returns a copy of the agent's private search and patrol state.
func (a *Agent) State() BehaviorState { return a.state }

// Last returns the previous tick's decision.
func (a *Agent) Last() Decision { return a.last }

// Member maps the agent to its liveness slot in the team status.
func (a *Agent) Member() belief.Member {
	if a.role == RoleDefender {
		return belief.MemberDefender
	}
	return belief.Member(a.slot)
}

func (a *Agent) logger() logrus.FieldLogger {
	return a.team.log.WithFields(logrus.Fields{"slot": a.slot, "role": a.role.String()})
}

// Update folds obs into the team's belief map and returns this tick's
// decision. A terminated agent always answers with no action.
func (a *Agent) Update(obs Observation) Decision {
	if !a.alive {
		return Decision{}
	}
	m := a.team.belief
	a.team.begin(a.slot)
	a.syncHolding(obs.HoldingFlag)
	m.Merge(obs.Window, obs.Position)
	m.RecomputeThreats(obs.Position)
	m.SettleDanger()

	t := &tick{team: a.team, agent: a, m: m, obs: obs, pos: obs.Position}
	d := t.decide()
	if d.Action == grid.ActionNone {
		d.Dir = grid.None
	}
	if a.team.journal.record(Entry{
		Update:   m.Updates(),
		Slot:     a.slot,
		Role:     a.role,
		Behavior: d.Behavior,
		Action:   d.Action,
		Dir:      d.Dir,
	}) {
		a.logger().WithField("behavior", d.Behavior.String()).Debug("behavior changed")
	}
	a.last = d
	return d
}

func (a *Agent) syncHolding(holding bool) {
	if holding == a.holding {
		return
	}
	a.holding = holding
	a.team.belief.SetHoldingFlag(holding)
	if !holding {
		a.team.belief.InvalidateRally()
	}
}

// Terminate ends the agent. Death updates the team status; the other
// reasons only retire the agent at match end.
func (a *Agent) Terminate(reason Reason) {
	if !a.alive {
		return
	}
	a.alive = false
	if reason == ReasonDied {
		m := a.team.belief
		m.MarkAgentDead(a.Member())
		if a.holding {
			a.holding = false
			m.SetHoldingFlag(false)
			m.InvalidateRally()
		}
	}
	a.logger().WithField("reason", reason.String()).Debug("agent terminated")
}

// tick carries the context of one agent's decision.
type tick struct {
	team  *Team
	agent *Agent
	m     *belief.Map
	obs   Observation
	pos   grid.Cell
}

func (t *tick) decide() Decision {
	if d, ok := t.evaluate(reflexRules); ok {
		return d
	}
	if d, ok := t.evaluate(t.rulesForRole()); ok {
		return d
	}
	return Decision{Behavior: BehaviorIdle}
}

// moveTo routes toward goal. An unreachable goal yields a wait.
func (t *tick) moveTo(goal grid.Cell) Decision {
	dir := t.team.router.Direction(t.m, t.pos, goal, t.m.KnownEnemies())
	if dir == grid.None {
		return Decision{}
	}
	return Decision{Action: grid.ActionMove, Dir: dir}
}

func (t *tick) status() belief.Status { return t.m.Status() }
