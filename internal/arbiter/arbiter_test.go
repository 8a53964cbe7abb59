package arbiter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Flag-Sense/internal/belief"
	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/grid"
	"github.com/Garsondee/Flag-Sense/internal/route"
)

func tuning(rows, cols int) config.Tuning {
	cfg := config.Default()
	cfg.Rows, cfg.Cols = rows, cols
	return cfg
}

// openWorld returns an all-floor world with the given cells overridden.
func openWorld(rows, cols int, marks map[grid.Cell]grid.Tile) [][]grid.Tile {
	w := make([][]grid.Tile, rows)
	for r := range w {
		w[r] = make([]grid.Tile, cols)
		for c := range w[r] {
			w[r][c] = grid.Empty
		}
	}
	for c, t := range marks {
		w[c.Row][c.Col] = t
	}
	return w
}

// borderedWorld is openWorld with an obstacle ring around the edge.
func borderedWorld(rows, cols int, marks map[grid.Cell]grid.Tile) [][]grid.Tile {
	w := openWorld(rows, cols, marks)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if r == 0 || c == 0 || r == rows-1 || c == cols-1 {
				w[r][c] = grid.Obstacle
			}
		}
	}
	return w
}

// view cuts the observation window of the given radius around pos.
func view(world [][]grid.Tile, pos grid.Cell, radius int) [][]grid.Tile {
	side := 2*radius + 1
	out := make([][]grid.Tile, side)
	for i := range out {
		out[i] = make([]grid.Tile, side)
		for j := range out[i] {
			r, c := pos.Row-radius+i, pos.Col-radius+j
			if r >= 0 && r < len(world) && c >= 0 && c < len(world[r]) {
				out[i][j] = world[r][c]
			}
		}
	}
	return out
}

func observe(team *Team, world [][]grid.Tile, pos grid.Cell) Observation {
	return Observation{
		Window:   view(world, pos, team.cfg.VisibleRadius),
		Position: pos,
		CanShoot: true,
	}
}

// reveal merges the whole world into the team's belief map.
func reveal(team *Team, world [][]grid.Tile) {
	team.Belief().Merge(world, grid.C(len(world)/2, len(world[0])/2))
}

func TestUpdate_DodgeBeatsShoot(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 8): grid.EnemyAgent,
		grid.C(2, 5): grid.Projectile,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorDodge, d.Behavior)
	assert.Equal(t, grid.ActionMove, d.Action)
	assert.Equal(t, grid.Right, d.Dir, "bullet in the same column: sidestep to the open side")
}

func TestUpdate_ShootsNearestOnAxis(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 8): grid.EnemyAgent,
		grid.C(5, 1): grid.EnemyAgent,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorShoot, d.Behavior)
	assert.Equal(t, grid.ActionShoot, d.Action)
	assert.Equal(t, grid.Right, d.Dir)
}

func TestUpdate_NoShotWhenWeaponCooling(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 8): grid.EnemyAgent})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	obs := observe(team, world, grid.C(5, 5))
	obs.CanShoot = false
	d := a.Update(obs)
	assert.NotEqual(t, grid.ActionShoot, d.Action)
}

func TestUpdate_DodgeBacksAwayWhenSidesClosed(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 6): grid.Obstacle,
		grid.C(5, 4): grid.Obstacle,
		grid.C(2, 5): grid.Projectile,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorDodge, d.Behavior)
	assert.Equal(t, grid.Down, d.Dir)
}

func TestUpdate_BoxedInDodgeHoldsFire(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 6): grid.Obstacle,
		grid.C(5, 4): grid.Obstacle,
		grid.C(6, 5): grid.Obstacle,
		grid.C(2, 5): grid.Projectile,
		grid.C(1, 5): grid.EnemyAgent,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorDodge, d.Behavior, "a bullet in range always wins over shooting")
	assert.Equal(t, grid.ActionNone, d.Action)
	assert.Equal(t, grid.None, d.Dir)
}

func TestUpdate_WallHidesBullet(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 7): grid.Obstacle,
		grid.C(5, 9): grid.Projectile,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Empty(t, team.Belief().BulletsInRange(grid.C(5, 5)))
	assert.NotEqual(t, BehaviorDodge, d.Behavior)
}

func TestUpdate_OnlySlotOnePromotes(t *testing.T) {
	cfg := tuning(11, 11)
	cfg.DangerCooldown = 0
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 1): grid.OwnFlag})
	team := NewTeam(grid.TeamBlue, cfg)
	def, s1, s2 := team.Spawn(0), team.Spawn(1), team.Spawn(2)
	def.Terminate(ReasonDied)
	require.True(t, team.Belief().Status().FlagInDanger)

	d2 := s2.Update(observe(team, world, grid.C(3, 3)))
	assert.NotEqual(t, BehaviorPromote, d2.Behavior)
	assert.Equal(t, RoleScout, s2.Role())

	d1 := s1.Update(observe(team, world, grid.C(7, 3)))
	assert.Equal(t, BehaviorPromote, d1.Behavior)
	assert.Equal(t, RoleDefender, s1.Role())
	assert.Equal(t, belief.MemberDefender, s1.Member())

	st := team.Belief().Status()
	assert.True(t, st.Alive[belief.MemberDefender])
	assert.False(t, st.Alive[belief.MemberScout1])

	for range 5 {
		s2.Update(observe(team, world, grid.C(3, 3)))
		assert.Equal(t, RoleScout, s2.Role())
	}
}

func TestUpdate_NoPromotionWhileDefenderAlive(t *testing.T) {
	world := openWorld(11, 11, nil)
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	team.Spawn(0)
	s1 := team.Spawn(1)

	d := s1.Update(observe(team, world, grid.C(5, 5)))
	assert.NotEqual(t, BehaviorPromote, d.Behavior)
	assert.Equal(t, RoleScout, s1.Role())
}

func TestSearch_CornerThenBand(t *testing.T) {
	world := borderedWorld(20, 20, nil)
	cfg := tuning(20, 20)
	team := NewTeam(grid.TeamBlue, cfg)
	a := team.Spawn(1)
	corner := grid.C(18, 18)

	d := a.Update(observe(team, world, grid.C(17, 18)))
	assert.Equal(t, BehaviorSearch, d.Behavior)
	assert.Equal(t, grid.ActionMove, d.Action)
	assert.Equal(t, grid.Down, d.Dir)
	assert.False(t, a.State().Visited(CornerSouth))

	d = a.Update(observe(team, world, corner))
	require.True(t, a.State().Visited(CornerSouth))
	assert.Equal(t, BehaviorSearch, d.Behavior)
	require.Equal(t, grid.ActionMove, d.Action)

	wp, ok := a.State().Waypoint()
	require.True(t, ok)
	assert.NotEqual(t, corner, wp)
	assert.GreaterOrEqual(t, wp.Row, 20/3)
	assert.Less(t, wp.Row, 2*20/3)
	assert.GreaterOrEqual(t, wp.Col, 10)
	want := route.New(cfg.Router).Direction(team.Belief(), corner, wp, nil)
	assert.Equal(t, want, d.Dir)

	pos := corner
	for range 40 {
		if d.Action == grid.ActionMove {
			if next := pos.Step(d.Dir); world[next.Row][next.Col] != grid.Obstacle {
				pos = next
			}
		}
		d = a.Update(observe(team, world, pos))
		if wp, ok := a.State().Waypoint(); ok {
			assert.NotEqual(t, corner, wp)
		}
		assert.True(t, a.State().Visited(CornerSouth))
	}
}

func TestSearch_SlotTwoHeadsNorth(t *testing.T) {
	world := borderedWorld(20, 20, nil)
	team := NewTeam(grid.TeamBlue, tuning(20, 20))
	a := team.Spawn(2)

	d := a.Update(observe(team, world, grid.C(2, 18)))
	assert.Equal(t, BehaviorSearch, d.Behavior)
	assert.Equal(t, grid.Up, d.Dir)
}

func TestUpdate_UnreachableTargetWaits(t *testing.T) {
	world := borderedWorld(20, 20, map[grid.Cell]grid.Tile{
		grid.C(4, 5): grid.Obstacle,
		grid.C(6, 5): grid.Obstacle,
		grid.C(5, 4): grid.Obstacle,
		grid.C(5, 6): grid.Obstacle,
	})
	team := NewTeam(grid.TeamBlue, tuning(20, 20))
	a := team.Spawn(1)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorSearch, d.Behavior)
	assert.Equal(t, grid.ActionNone, d.Action)
	assert.Equal(t, grid.None, d.Dir)
}

func TestUpdate_CarrierHeadsHome(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 2): grid.OwnFlag})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(2)

	obs := observe(team, world, grid.C(5, 5))
	obs.HoldingFlag = true
	d := a.Update(obs)
	assert.Equal(t, BehaviorCarryHome, d.Behavior)
	assert.Equal(t, grid.Left, d.Dir)
	assert.True(t, team.Belief().Status().HoldingFlag)
	assert.Equal(t, grid.TravFree, team.Belief().TraversalAt(grid.C(5, 2)))
}

func TestUpdate_DefenderPatrolsHome(t *testing.T) {
	home := grid.C(5, 2)
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{home: grid.OwnFlag})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(0)

	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorHoldPerimeter, d.Behavior)
	wp, ok := a.State().Waypoint()
	require.True(t, ok)
	assert.Equal(t, 1, home.Chebyshev(wp))
	assert.Equal(t, 2, home.Manhattan(wp))
}

func TestUpdate_DefenderPursuesWhenAlone(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 1): grid.OwnFlag,
		grid.C(5, 9): grid.EnemyFlag,
	})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	def := team.Spawn(0)
	team.Spawn(1).Terminate(ReasonDied)
	team.Spawn(2).Terminate(ReasonDied)
	reveal(team, world)

	d := def.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorPursue, d.Behavior)
	assert.Equal(t, grid.Right, d.Dir)
}

func TestUpdate_RegroupThenPush(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 8): grid.EnemyFlag})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	team.Spawn(0)
	s1, s2 := team.Spawn(1), team.Spawn(2)
	reveal(team, world)

	d := s1.Update(observe(team, world, grid.C(5, 1)))
	assert.Equal(t, BehaviorRegroup, d.Behavior)
	rally := team.Belief().Status().Rally
	require.True(t, team.Belief().Status().HasRally)
	assert.Equal(t, grid.C(2, 5), rally)

	d = s1.Update(observe(team, world, rally))
	assert.Equal(t, BehaviorRegroup, d.Behavior)
	assert.Equal(t, grid.ActionNone, d.Action)
	assert.False(t, team.Belief().Status().Regrouped)

	s2.Update(observe(team, world, rally.Add(2, 0)))
	assert.False(t, team.Belief().Status().Regrouped, "two cells off is not there yet")

	// The rally cell is taken, so the second scout stops beside it.
	d = s2.Update(observe(team, world, rally.Add(1, 1)))
	assert.Equal(t, grid.ActionNone, d.Action)
	require.True(t, team.Belief().Status().Regrouped)

	d = s1.Update(observe(team, world, rally))
	assert.Equal(t, BehaviorPush, d.Behavior)
	assert.Equal(t, grid.ActionMove, d.Action)
}

func TestScoutRules_AmbushOrCover(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 1): grid.OwnFlag,
		grid.C(5, 9): grid.EnemyFlag,
	})
	setup := func(danger bool) (*tick, *Agent) {
		team := NewTeam(grid.TeamBlue, tuning(11, 11))
		a := team.Spawn(2)
		reveal(team, world)
		team.Belief().SetHoldingFlag(true)
		if danger {
			team.Belief().MarkAgentDead(belief.MemberDefender)
		}
		return &tick{team: team, agent: a, m: team.Belief(), pos: grid.C(5, 5)}, a
	}

	tk, _ := setup(true)
	d, ok := tk.evaluate(scoutRules)
	require.True(t, ok)
	assert.Equal(t, BehaviorAmbush, d.Behavior)

	tk, _ = setup(false)
	d, ok = tk.evaluate(scoutRules)
	require.True(t, ok)
	assert.Equal(t, BehaviorCover, d.Behavior)
	assert.Equal(t, grid.Left, d.Dir)
}

func TestTerminate_CarrierDeathReleasesFlag(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 2): grid.OwnFlag})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	a := team.Spawn(1)
	obs := observe(team, world, grid.C(5, 5))
	obs.HoldingFlag = true
	a.Update(obs)
	require.True(t, team.Belief().Status().HoldingFlag)

	a.Terminate(ReasonDied)
	st := team.Belief().Status()
	assert.False(t, st.HoldingFlag)
	assert.False(t, st.Alive[belief.MemberScout1])
	assert.Equal(t, grid.TravBlocked, team.Belief().TraversalAt(grid.C(5, 2)))
	assert.Equal(t, Decision{}, a.Update(obs))
}

func TestTerminate_MatchEndKeepsStatus(t *testing.T) {
	team := NewTeam(grid.TeamRed, tuning(11, 11))
	a := team.Spawn(0)
	a.Terminate(ReasonWon)
	assert.False(t, a.Alive())
	assert.True(t, team.Belief().Status().Alive[belief.MemberDefender])
	assert.False(t, team.Belief().Status().FlagInDanger)
}

func TestSpawn_RejectsBadSlot(t *testing.T) {
	team := NewTeam(grid.TeamRed, tuning(11, 11))
	assert.Nil(t, team.Spawn(3))
	assert.Nil(t, team.Spawn(-1))
	assert.Nil(t, team.Agent(0))
	a := team.Spawn(0)
	assert.Same(t, a, team.Agent(0))
	assert.Equal(t, RoleDefender, a.Role())
}

func TestUpdate_DeterministicForSeed(t *testing.T) {
	world := borderedWorld(20, 20, nil)
	run := func() []Decision {
		team := NewTeam(grid.TeamRed, tuning(20, 20), WithSeed(42))
		a := team.Spawn(1)
		pos := grid.C(10, 10)
		var out []Decision
		for range 60 {
			d := a.Update(observe(team, world, pos))
			out = append(out, d)
			if d.Action == grid.ActionMove {
				if next := pos.Step(d.Dir); world[next.Row][next.Col] != grid.Obstacle {
					pos = next
				}
			}
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestBehavior_String(t *testing.T) {
	for b := BehaviorIdle; b <= BehaviorCover; b++ {
		assert.NotEqual(t, "unknown", b.String())
		assert.False(t, strings.Contains(b.String(), " "))
	}
	assert.Equal(t, "unknown", Behavior(200).String())
}

// endangered returns a scout on a team whose defender has just died.
func endangered(t *testing.T, cooldown int) (*Team, *Agent, [][]grid.Tile) {
	t.Helper()
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{
		grid.C(5, 1): grid.OwnFlag,
		grid.C(5, 9): grid.EnemyFlag,
	})
	cfg := tuning(11, 11)
	cfg.DangerCooldown = cooldown
	team := NewTeam(grid.TeamBlue, cfg)
	a := team.Spawn(2)
	reveal(team, world)
	team.Belief().MarkAgentDead(belief.MemberDefender)
	require.True(t, team.Belief().Status().FlagInDanger)
	return team, a, world
}

func TestUpdate_DefendHome_PushesWhenEnemyFlagCloser(t *testing.T) {
	team, a, world := endangered(t, 300)

	d := a.Update(observe(team, world, grid.C(5, 7)))
	assert.Equal(t, BehaviorDefendHome, d.Behavior)
	assert.Equal(t, grid.ActionMove, d.Action)
	assert.Equal(t, grid.Right, d.Dir)
	assert.Equal(t, 299, team.Belief().Status().DangerCooldown)
}

func TestUpdate_DefendHome_PatrolsHomeOtherwise(t *testing.T) {
	team, a, world := endangered(t, 300)

	d := a.Update(observe(team, world, grid.C(5, 3)))
	assert.Equal(t, BehaviorDefendHome, d.Behavior)
	assert.Equal(t, grid.ActionMove, d.Action)
	wp, ok := a.State().Waypoint()
	require.True(t, ok)
	assert.Equal(t, 1, wp.Chebyshev(grid.C(5, 1)), "patrol waypoint is a diagonal of home")

	a.Update(observe(team, world, grid.C(5, 3)))
	assert.Equal(t, 298, team.Belief().Status().DangerCooldown)
}

func TestUpdate_DefendHome_CarrierGoesHome(t *testing.T) {
	team, a, world := endangered(t, 300)
	obs := observe(team, world, grid.C(5, 7))
	obs.HoldingFlag = true

	d := a.Update(obs)
	assert.Equal(t, BehaviorCarryHome, d.Behavior, "carrying outranks defending")
	assert.Equal(t, grid.Left, d.Dir)
	assert.Equal(t, 300, team.Belief().Status().DangerCooldown)
}

func TestUpdate_DefendHome_SettlesAfterCooldown(t *testing.T) {
	team, a, world := endangered(t, 2)
	pos := grid.C(5, 3)

	for range 2 {
		d := a.Update(observe(team, world, pos))
		require.Equal(t, BehaviorDefendHome, d.Behavior)
	}
	assert.Zero(t, team.Belief().Status().DangerCooldown)

	d := a.Update(observe(team, world, pos))
	assert.NotEqual(t, BehaviorDefendHome, d.Behavior)
	assert.False(t, team.Belief().Status().FlagInDanger)
}

func TestTeam_CountsTicksFromUpdateOrder(t *testing.T) {
	world := openWorld(11, 11, nil)
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	agents := []*Agent{team.Spawn(0), team.Spawn(1), team.Spawn(2)}
	m := team.Belief()

	for _, a := range agents {
		a.Update(observe(team, world, grid.C(5, 5)))
	}
	assert.Zero(t, m.Ticks(), "first tick still running")

	agents[0].Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, uint64(1), m.Ticks())

	// Two agents die mid-tick; the survivor finishes this tick and then
	// starts a new one on each update.
	agents[0].Terminate(ReasonDied)
	agents[1].Terminate(ReasonDied)
	for range 3 {
		agents[2].Update(observe(team, world, grid.C(5, 5)))
	}
	assert.Equal(t, uint64(3), m.Ticks())
	assert.Equal(t, uint64(7), m.Updates())
}

func TestUpdate_StaleBulletForgottenNextTick(t *testing.T) {
	world := openWorld(11, 11, map[grid.Cell]grid.Tile{grid.C(5, 0): grid.Projectile})
	team := NewTeam(grid.TeamBlue, tuning(11, 11))
	spotter, a := team.Spawn(1), team.Spawn(2)

	spotter.Update(observe(team, world, grid.C(5, 1)))
	d := a.Update(observe(team, world, grid.C(5, 5)))
	assert.Equal(t, BehaviorDodge, d.Behavior, "bullet seen by a teammate this tick")

	d = a.Update(observe(team, world, grid.C(5, 5)))
	assert.NotEqual(t, BehaviorDodge, d.Behavior, "bullet out of view from the last tick is gone")
}
