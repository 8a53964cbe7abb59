// Package arbiter decides, once per tick per agent, which single action a
// capture-the-flag agent takes. Each team's agents share one belief map
// owned by a Team; decisions come from fixed, ordered rule tables.
package arbiter

import (
	"io"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/Garsondee/Flag-Sense/internal/belief"
	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
	"github.com/Garsondee/Flag-Sense/internal/route"
)

// TeamSize is the number of agents per team: one defender and two scouts.
const TeamSize = 3

// Observation is what the engine hands an agent each tick.
type Observation struct {
	Window      [][]grid.Tile // square, odd side, centred on Position
	Position    grid.Cell
	CanShoot    bool
	HoldingFlag bool
}

// Decision is the agent's answer for one tick. Dir is None when Action is
// ActionNone.
type Decision struct {
	Action   grid.Action
	Dir      grid.Direction
	Behavior Behavior
}

// Reason is why an agent is being terminated.
type Reason uint8

const (
	ReasonDied Reason = iota
	ReasonWon
	ReasonLost
	ReasonTied
)

func (r Reason) String() string {
	switch r {
	case ReasonDied:
		return "died"
	case ReasonWon:
		return "won"
	case ReasonLost:
		return "lost"
	case ReasonTied:
		return "tied"
	default:
		return "unknown"
	}
}

// Team is the per-match controller for one side. It owns the shared belief
// map, the router, the random source and the decision journal.
type Team struct {
	side    grid.Team
	cfg     config.Tuning
	log     logrus.FieldLogger
	belief  *belief.Map
	router  *route.Router
	rng     *rand.Rand
	journal *Journal
	agents  [TeamSize]*Agent

	// round marks slots that have updated in the current tick.
	round [TeamSize]bool
}

// Option configures a Team.
type Option func(*teamOptions)

type teamOptions struct {
	log  logrus.FieldLogger
	seed uint64
	set  bool
}

// WithLogger routes debug events of the team and its belief map to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *teamOptions) { o.log = l }
}

// WithSeed overrides the tuning seed for this team's random choices.
func WithSeed(seed uint64) Option {
	return func(o *teamOptions) { o.seed, o.set = seed, true }
}

// NewTeam creates the controller for one side at match start.
func NewTeam(side grid.Team, cfg config.Tuning, opts ...Option) *Team {
	o := teamOptions{seed: cfg.Seed}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}
	return &Team{
		side:    side,
		cfg:     cfg,
		log:     o.log.WithField("team", side.String()),
		belief:  belief.New(side, cfg, belief.WithLogger(o.log)),
		router:  route.New(cfg.Router),
		rng:     rand.New(rand.NewPCG(o.seed, uint64(side)+1)),
		journal: NewJournal(cfg.JournalSize),
	}
}

// begin counts slot's update on the belief map. Every living agent updates
// once per tick, so a slot updating again means a new tick has started.
func (t *Team) begin(slot int) {
	if t.round[slot] {
		t.round = [TeamSize]bool{}
		t.belief.Tick()
	}
	t.round[slot] = true
	t.belief.Step()
}

// Side returns the team colour.
func (t *Team) Side() grid.Team { return t.side }

// Belief returns the shared belief map.
func (t *Team) Belief() *belief.Map { return t.belief }

// Journal returns the team's behavior-change journal.
func (t *Team) Journal() *Journal { return t.journal }

// Agent returns the agent spawned in slot, or nil.
func (t *Team) Agent(slot int) *Agent {
	if slot < 0 || slot >= TeamSize {
		return nil
	}
	return t.agents[slot]
}

// Spawn creates the agent for slot 0 (defender), 1 or 2 (scouts). It
// returns nil for any other slot.
func (t *Team) Spawn(slot int) *Agent {
	if slot < 0 || slot >= TeamSize {
		return nil
	}
	role := RoleScout
	if slot == 0 {
		role = RoleDefender
	}
	a := &Agent{
		team:  t,
		slot:  slot,
		role:  role,
		alive: true,
	}
	t.agents[slot] = a
	return a
}
