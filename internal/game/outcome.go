package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Garsondee/Flag-Sense/internal/arbiter"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

type BattleOutcome int

const (
	OutcomeInconclusive BattleOutcome = iota
	OutcomeRedVictory
	OutcomeBlueVictory
	OutcomeDraw
)

func (o BattleOutcome) String() string {
	switch o {
	case OutcomeRedVictory:
		return "red_victory"
	case OutcomeBlueVictory:
		return "blue_victory"
	case OutcomeDraw:
		return "draw"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

func victoryFor(team grid.Team) BattleOutcome {
	if team == grid.TeamRed {
		return OutcomeRedVictory
	}
	return OutcomeBlueVictory
}

// Outcome summarises a match. Counters are indexed by team.
type Outcome struct {
	Result    BattleOutcome
	Reason    string // capture, elimination, tick_limit
	Ticks     int
	Kills     [2]int
	Shots     [2]int
	Pickups   [2]int
	Behaviors map[arbiter.Behavior]int // decisions per behavior, both teams
}

// Winner returns the winning team, or false for a draw or unfinished match.
func (o Outcome) Winner() (grid.Team, bool) {
	switch o.Result {
	case OutcomeBlueVictory:
		return grid.TeamBlue, true
	case OutcomeRedVictory:
		return grid.TeamRed, true
	default:
		return grid.TeamBlue, false
	}
}

// BehaviorMix formats the behavior counts, most frequent first.
func (o Outcome) BehaviorMix() string {
	type kv struct {
		b arbiter.Behavior
		n int
	}
	var all []kv
	for b, n := range o.Behaviors {
		all = append(all, kv{b, n})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].n != all[j].n {
			return all[i].n > all[j].n
		}
		return all[i].b < all[j].b
	})
	parts := make([]string, len(all))
	for i, e := range all {
		parts[i] = fmt.Sprintf("%s=%d", e.b, e.n)
	}
	return strings.Join(parts, " ")
}
