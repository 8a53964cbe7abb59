package game

import (
	"github.com/Garsondee/Flag-Sense/internal/config"
)

// TestSim is a headless match harness used by tests and the batch report.
// It wraps World with deterministic seeding and structured logging.
type TestSim struct {
	World  *World
	SimLog *SimLog

	arena   *Arena
	cfg     config.Tuning
	seed    uint64
	verbose bool
	opts    []Option
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // arena, tuning, seed, verbose
	simOptWorld                      // applied to the built World
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithArenaRows plays on a map given as glyph rows. It panics on a bad map.
func WithArenaRows(rows ...string) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		a, err := ParseArena("test", rows)
		if err != nil {
			panic(err)
		}
		ts.arena = a
	}}
}

// WithTuning adjusts the configuration before the world is built.
func WithTuning(fn func(*config.Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { fn(&ts.cfg) }}
}

// WithSeed sets the seed for deterministic runs.
func WithSeed(seed uint64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose records every action, not only behavior changes.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.verbose = v }}
}

// WithWorldOption passes an Option through to NewWorld.
func WithWorldOption(o Option) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.opts = append(ts.opts, o) }}
}

// WithAgentAt moves a spawned agent before the first tick.
func WithAgentAt(label string, row, col int) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		for _, team := range teams {
			for _, u := range ts.World.units[team] {
				if u.label == label {
					u.pos.Row, u.pos.Col = row, col
				}
			}
		}
	}}
}

// NewTestSim constructs a TestSim from the given options in two passes:
//  1. Infrastructure (arena, tuning, seed, verbose)
//  2. World adjustments once agents exist
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		cfg:  config.Default(),
		seed: 1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.arena == nil {
		ts.arena = DefaultArena()
	}
	ts.SimLog = NewSimLog(ts.verbose)
	ts.World = NewWorld(ts.arena, ts.cfg, ts.seed, append([]Option{WithSimLog(ts.SimLog)}, ts.opts...)...)
	for _, o := range opts {
		if o.kind == simOptWorld {
			o.fn(ts)
		}
	}
	return ts
}

// RunTicks advances up to n ticks, stopping early when the match ends. It
// returns the number of ticks actually run.
func (ts *TestSim) RunTicks(n int) int {
	ran := 0
	for ; ran < n && !ts.World.Done(); ran++ {
		ts.World.Step()
	}
	return ran
}

// Outcome returns the world's outcome.
func (ts *TestSim) Outcome() Outcome { return ts.World.Outcome() }
