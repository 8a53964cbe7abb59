package game

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Flag-Sense/internal/arbiter"
	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

var teams = [2]grid.Team{grid.TeamBlue, grid.TeamRed}

// unit is the engine-side body of an agent.
type unit struct {
	label   string
	team    grid.Team
	slot    int
	agent   *arbiter.Agent
	pos     grid.Cell
	alive   bool
	holding bool
	reload  int
	last    arbiter.Behavior
	decided bool
}

type bullet struct {
	pos   grid.Cell
	dir   grid.Direction
	team  grid.Team
	owner string
}

// flagState tracks one team's flag. pos follows the carrier while carried.
type flagState struct {
	pos     grid.Cell
	carrier *unit
}

// World is the headless match engine. It owns both teams' controllers,
// builds each agent's observation window and applies the returned decisions
// in a fixed order.
type World struct {
	arena  *Arena
	cfg    config.Tuning
	log    logrus.FieldLogger
	simLog *SimLog

	teams   [2]*arbiter.Team
	units   [2][arbiter.TeamSize]*unit
	bullets []*bullet
	flags   [2]flagState

	tick    int
	done    bool
	outcome Outcome

	kills     [2]int
	shots     [2]int
	pickups   [2]int
	behaviors map[arbiter.Behavior]int
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger for engine and team events.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *World) { w.log = l }
}

// WithSimLog records engine events into sl.
func WithSimLog(sl *SimLog) Option {
	return func(w *World) { w.simLog = sl }
}

// NewWorld sets up a match on arena. The grid size in cfg is taken from the
// arena; both teams draw their random choices from seed.
func NewWorld(arena *Arena, cfg config.Tuning, seed uint64, opts ...Option) *World {
	cfg.Rows, cfg.Cols = arena.Size()
	w := &World{
		arena:     arena,
		cfg:       cfg,
		simLog:    NewSimLog(false),
		behaviors: make(map[arbiter.Behavior]int),
	}
	for _, o := range opts {
		o(w)
	}
	if w.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		w.log = l
	}

	for _, team := range teams {
		w.teams[team] = arbiter.NewTeam(team, cfg, arbiter.WithLogger(w.log), arbiter.WithSeed(seed))
		w.flags[team] = flagState{pos: arena.Home(team)}
		for slot := range arbiter.TeamSize {
			w.units[team][slot] = &unit{
				label: fmt.Sprintf("%s%d", strings.ToUpper(team.String()[:1]), slot),
				team:  team,
				slot:  slot,
				agent: w.teams[team].Spawn(slot),
				pos:   arena.Spawn(team, slot),
				alive: true,
			}
		}
	}
	w.simLog.Add(0, "--", "--", CatMatch, "start", fmt.Sprintf("arena=%s seed=%d", arena.Name, seed), float64(seed))
	w.log.WithFields(logrus.Fields{"arena": arena.Name, "seed": seed}).Debug("match started")
	return w
}

// Tick returns the number of completed ticks.
func (w *World) Tick() int { return w.tick }

// Done reports whether the match has ended.
func (w *World) Done() bool { return w.done }

// Outcome returns the result so far; Result is OutcomeInconclusive until the
// match ends.
func (w *World) Outcome() Outcome {
	o := w.outcome
	o.Ticks = w.tick
	o.Kills, o.Shots, o.Pickups = w.kills, w.shots, w.pickups
	o.Behaviors = make(map[arbiter.Behavior]int, len(w.behaviors))
	for b, n := range w.behaviors {
		o.Behaviors[b] = n
	}
	return o
}

// SimLog returns the engine event log.
func (w *World) SimLog() *SimLog { return w.simLog }

// Arena returns the map being played.
func (w *World) Arena() *Arena { return w.arena }

// Team returns the controller of team.
func (w *World) Team(team grid.Team) *arbiter.Team { return w.teams[team] }

// Step runs one tick: every living agent decides and acts in turn, then
// bullets fly. Teams alternate who acts first each tick.
func (w *World) Step() {
	if w.done {
		return
	}
	w.tick++
	order := teams
	if w.tick%2 == 0 {
		order[0], order[1] = order[1], order[0]
	}
	for _, team := range order {
		for _, u := range w.units[team] {
			if w.done {
				return
			}
			if !u.alive {
				continue
			}
			if u.reload > 0 {
				u.reload--
			}
			d := u.agent.Update(w.observe(u))
			w.recordDecision(u, d)
			w.apply(u, d)
		}
	}
	w.advanceBullets()
	if !w.done && w.tick >= w.cfg.Match.MaxTicks {
		w.finish(OutcomeDraw, "tick_limit")
	}
}

// observe builds u's window from its team's perspective.
func (w *World) observe(u *unit) arbiter.Observation {
	r, side := w.cfg.VisibleRadius, w.cfg.WindowSize()
	win := make([][]grid.Tile, side)
	for i := range win {
		win[i] = make([]grid.Tile, side)
		for j := range win[i] {
			win[i][j] = w.tileFor(u.team, u.pos.Add(i-r, j-r))
		}
	}
	return arbiter.Observation{
		Window:      win,
		Position:    u.pos,
		CanShoot:    u.reload == 0,
		HoldingFlag: u.holding,
	}
}

func (w *World) tileFor(team grid.Team, c grid.Cell) grid.Tile {
	rows, cols := w.arena.Size()
	if c.Row < 0 || c.Row >= rows || c.Col < 0 || c.Col >= cols {
		return grid.Unknown
	}
	if w.arena.Wall(c) {
		return grid.Obstacle
	}
	if o := w.unitAt(c); o != nil {
		if o.team == team {
			return grid.OwnAgent
		}
		return grid.EnemyAgent
	}
	for _, b := range w.bullets {
		if b.pos == c {
			return grid.Projectile
		}
	}
	for _, owner := range teams {
		f := w.flags[owner]
		if f.carrier != nil || f.pos != c {
			continue
		}
		if owner == team {
			return grid.OwnFlag
		}
		return grid.EnemyFlag
	}
	return grid.Empty
}

func (w *World) unitAt(c grid.Cell) *unit {
	for _, team := range teams {
		for _, u := range w.units[team] {
			if u.alive && u.pos == c {
				return u
			}
		}
	}
	return nil
}

func (w *World) recordDecision(u *unit, d arbiter.Decision) {
	w.behaviors[d.Behavior]++
	if d.Behavior != u.last || !u.decided {
		w.simLog.Add(w.tick, u.label, u.team.String(), CatDecision, "behavior",
			fmt.Sprintf("%s → %s", u.last, d.Behavior), 0)
		u.last, u.decided = d.Behavior, true
	}
	w.simLog.AddVerbose(w.tick, u.label, u.team.String(), CatDecision, "action",
		fmt.Sprintf("%s %s @%s", d.Action, d.Dir, u.pos), 0)
}

// apply carries out one decision. Moves into walls or enemies and shots
// while reloading are dropped. Teammates may share a cell.
func (w *World) apply(u *unit, d arbiter.Decision) {
	switch d.Action {
	case grid.ActionMove:
		next := u.pos.Step(d.Dir)
		if d.Dir == grid.None || w.arena.Wall(next) {
			return
		}
		if o := w.unitAt(next); o != nil && o.team != u.team {
			return
		}
		u.pos = next
		if u.holding {
			w.flags[u.team.Enemy()].pos = next
		}
		w.checkFlags(u)
	case grid.ActionShoot:
		if d.Dir == grid.None || u.reload > 0 {
			return
		}
		w.bullets = append(w.bullets, &bullet{pos: u.pos, dir: d.Dir, team: u.team, owner: u.label})
		u.reload = w.cfg.Match.ReloadTicks
		w.shots[u.team]++
		w.simLog.Add(w.tick, u.label, u.team.String(), CatCombat, "shot", d.Dir.String(), 0)
	}
}

func (w *World) checkFlags(u *unit) {
	enemy := &w.flags[u.team.Enemy()]
	if enemy.carrier == nil && enemy.pos == u.pos {
		enemy.carrier = u
		u.holding = true
		w.pickups[u.team]++
		w.simLog.Add(w.tick, u.label, u.team.String(), CatFlag, "pickup", u.pos.String(), 0)
		w.log.WithField("agent", u.label).Debug("flag picked up")
	}
	if u.holding && u.pos == w.arena.Home(u.team) && w.flags[u.team].carrier == nil {
		w.simLog.Add(w.tick, u.label, u.team.String(), CatFlag, "capture", u.pos.String(), 0)
		w.finish(victoryFor(u.team), "capture")
	}
}

// advanceBullets moves every bullet BulletSpeed cells, one cell at a time,
// resolving wall and body hits along the way.
func (w *World) advanceBullets() {
	for step := 0; step < w.cfg.Match.BulletSpeed && !w.done; step++ {
		kept := w.bullets[:0]
		for _, b := range w.bullets {
			if w.done {
				break
			}
			if step == 0 && w.hit(b) {
				continue
			}
			b.pos = b.pos.Step(b.dir)
			if w.arena.Wall(b.pos) || w.hit(b) {
				continue
			}
			kept = append(kept, b)
		}
		w.bullets = kept
	}
}

// hit kills one enemy of b standing on b's cell.
func (w *World) hit(b *bullet) bool {
	target := w.unitAt(b.pos)
	if target == nil || target.team == b.team {
		return false
	}
	w.kill(target, b)
	return true
}

func (w *World) kill(u *unit, b *bullet) {
	u.alive = false
	u.agent.Terminate(arbiter.ReasonDied)
	w.kills[b.team]++
	w.simLog.Add(w.tick, u.label, u.team.String(), CatCombat, "killed", "by "+b.owner, 0)
	w.log.WithFields(logrus.Fields{"agent": u.label, "by": b.owner}).Debug("agent killed")
	if u.holding {
		u.holding = false
		f := &w.flags[u.team.Enemy()]
		f.carrier = nil
		f.pos = w.arena.Home(u.team.Enemy())
		w.simLog.Add(w.tick, u.label, u.team.String(), CatFlag, "returned", f.pos.String(), 0)
	}
	for _, o := range w.units[u.team] {
		if o.alive {
			return
		}
	}
	w.finish(victoryFor(u.team.Enemy()), "elimination")
}

// finish ends the match and retires every living agent.
func (w *World) finish(result BattleOutcome, reason string) {
	if w.done {
		return
	}
	w.done = true
	w.outcome.Result, w.outcome.Reason = result, reason
	for _, team := range teams {
		r := arbiter.ReasonTied
		switch {
		case result == victoryFor(team):
			r = arbiter.ReasonWon
		case result == victoryFor(team.Enemy()):
			r = arbiter.ReasonLost
		}
		for _, u := range w.units[team] {
			if u.alive {
				u.agent.Terminate(r)
			}
		}
	}
	w.simLog.Add(w.tick, "--", "--", CatMatch, "end", fmt.Sprintf("%s (%s)", result, reason), float64(w.tick))
	w.log.WithFields(logrus.Fields{"result": result.String(), "reason": reason, "tick": w.tick}).Info("match ended")
}

// AgentView is a read-only snapshot of one agent for rendering and reports.
type AgentView struct {
	Label    string
	Team     grid.Team
	Slot     int
	Role     arbiter.Role
	Pos      grid.Cell
	Alive    bool
	Holding  bool
	Behavior arbiter.Behavior
}

// Agents returns snapshots of team's agents in slot order.
func (w *World) Agents(team grid.Team) []AgentView {
	out := make([]AgentView, 0, arbiter.TeamSize)
	for _, u := range w.units[team] {
		out = append(out, AgentView{
			Label:    u.label,
			Team:     u.team,
			Slot:     u.slot,
			Role:     u.agent.Role(),
			Pos:      u.pos,
			Alive:    u.alive,
			Holding:  u.holding,
			Behavior: u.last,
		})
	}
	return out
}

// Bullets returns the cells of bullets in flight.
func (w *World) Bullets() []grid.Cell {
	out := make([]grid.Cell, len(w.bullets))
	for i, b := range w.bullets {
		out[i] = b.pos
	}
	return out
}

// Flag returns where team's flag is and whether it is being carried.
func (w *World) Flag(team grid.Team) (grid.Cell, bool) {
	f := w.flags[team]
	return f.pos, f.carrier != nil
}
