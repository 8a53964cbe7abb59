package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/Flag-Sense/internal/arbiter"
	"github.com/Garsondee/Flag-Sense/internal/config"
	"github.com/Garsondee/Flag-Sense/internal/game"
	"github.com/Garsondee/Flag-Sense/internal/grid"
)

type runStats struct {
	runIndex int
	matchID  string
	seed     uint64
	outcome  game.Outcome

	firstShotTick    int
	firstKillTick    int
	firstPickupTick  int
	firstRegroupTick int
	promotions       int
	behaviorChanges  int
}

type summary struct {
	runs     int
	wins     [2]int
	draws    int
	captures int
	avgTicks float64
	avgKills float64

	firstShot   string
	firstPickup string
	behaviors   map[arbiter.Behavior]int
}

func main() {
	// .env is optional.
	_ = godotenv.Load()

	var runs, ticks, parallel int
	var seedBase, seedStep uint64
	var configPath, arenaPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless matches")
	flag.IntVar(&ticks, "ticks", 0, "tick limit per match (0 keeps the config value)")
	flag.Uint64Var(&seedBase, "seed-base", 42, "seed for run 1")
	flag.Uint64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", config.PathFromEnv("flagsense.yaml"), "tuning YAML (missing file means defaults)")
	flag.StringVar(&arenaPath, "arena", "", "arena YAML (overrides match.arena)")
	flag.IntVar(&parallel, "parallel", 4, "matches run concurrently")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if parallel <= 0 {
		fmt.Println("error: -parallel must be > 0")
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("loading config")
	}
	if ticks > 0 {
		cfg.Match.MaxTicks = ticks
	}
	if arenaPath == "" {
		arenaPath = cfg.Match.Arena
	}
	arena := game.DefaultArena()
	if arenaPath != "" {
		if arena, err = game.LoadArena(arenaPath); err != nil {
			log.WithError(err).Fatal("loading arena")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("arena=%s runs=%d max_ticks=%d seed_base=%d seed_step=%d parallel=%d\n\n",
		arena.Name, runs, cfg.Match.MaxTicks, seedBase, seedStep, parallel)

	all, err := runAll(ctx, log, arena, cfg, runs, seedBase, seedStep, parallel)
	if err != nil {
		log.WithError(err).Error("batch aborted")
		return
	}
	for _, rs := range all {
		printRun(rs)
	}
	printAggregate(summarize(all))
}

// runAll plays the batch with at most parallel matches in flight. Results
// keep run order regardless of completion order.
func runAll(ctx context.Context, log logrus.FieldLogger, arena *game.Arena, cfg config.Tuning, runs int, seedBase, seedStep uint64, parallel int) ([]runStats, error) {
	all := make([]runStats, runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i := range runs {
		seed := seedBase + uint64(i)*seedStep
		g.Go(func() error {
			id := uuid.NewString()
			entry := log.WithFields(logrus.Fields{"match": id, "run": i + 1, "seed": seed})
			sl := game.NewSimLog(false)
			out, err := game.RunMatch(ctx, arena, cfg, seed, game.WithSimLog(sl), game.WithLogger(entry))
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
			}
			all[i] = collect(i+1, id, seed, out, sl.Entries())
			entry.WithFields(logrus.Fields{"result": out.Result.String(), "ticks": out.Ticks}).Info("match finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

func collect(runIndex int, id string, seed uint64, out game.Outcome, entries []game.SimLogEntry) runStats {
	changes, promotions := 0, 0
	for _, e := range entries {
		if e.Category != game.CatDecision || e.Key != "behavior" {
			continue
		}
		changes++
		if strings.HasSuffix(e.Value, "→ "+arbiter.BehaviorPromote.String()) {
			promotions++
		}
	}
	return runStats{
		runIndex:         runIndex,
		matchID:          id,
		seed:             seed,
		outcome:          out,
		firstShotTick:    firstTick(entries, game.CatCombat, "shot", ""),
		firstKillTick:    firstTick(entries, game.CatCombat, "killed", ""),
		firstPickupTick:  firstTick(entries, game.CatFlag, "pickup", ""),
		firstRegroupTick: firstTick(entries, game.CatDecision, "behavior", "→ "+arbiter.BehaviorRegroup.String()),
		promotions:       promotions,
		behaviorChanges:  changes,
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	o := rs.outcome
	fmt.Printf("--- Run %d (seed=%d match=%s) ---\n", rs.runIndex, rs.seed, rs.matchID)
	fmt.Printf("result=%s reason=%s ticks=%d\n", o.Result, o.Reason, o.Ticks)
	fmt.Printf("phase_markers: first_shot=%d first_kill=%d first_pickup=%d first_regroup=%d\n",
		rs.firstShotTick, rs.firstKillTick, rs.firstPickupTick, rs.firstRegroupTick)
	fmt.Printf("combat: blue_shots=%d red_shots=%d blue_kills=%d red_kills=%d\n",
		o.Shots[grid.TeamBlue], o.Shots[grid.TeamRed], o.Kills[grid.TeamBlue], o.Kills[grid.TeamRed])
	fmt.Printf("coordination: behavior_changes=%d promotions=%d pickups=%d/%d\n",
		rs.behaviorChanges, rs.promotions, o.Pickups[grid.TeamBlue], o.Pickups[grid.TeamRed])
	fmt.Printf("behavior_mix: %s\n\n", o.BehaviorMix())
}

func summarize(all []runStats) summary {
	s := summary{runs: len(all), behaviors: map[arbiter.Behavior]int{}}
	ticks, kills := 0, 0
	var shots, pickups []int
	for _, rs := range all {
		o := rs.outcome
		if team, ok := o.Winner(); ok {
			s.wins[team]++
		} else {
			s.draws++
		}
		if o.Reason == "capture" {
			s.captures++
		}
		ticks += o.Ticks
		kills += o.Kills[grid.TeamBlue] + o.Kills[grid.TeamRed]
		if rs.firstShotTick >= 0 {
			shots = append(shots, rs.firstShotTick)
		}
		if rs.firstPickupTick >= 0 {
			pickups = append(pickups, rs.firstPickupTick)
		}
		for b, n := range o.Behaviors {
			s.behaviors[b] += n
		}
	}
	s.avgTicks = avg(ticks, len(all))
	s.avgKills = avg(kills, len(all))
	s.firstShot = avgTickString(shots)
	s.firstPickup = avgTickString(pickups)
	return s
}

func printAggregate(s summary) {
	fmt.Printf("=== Aggregate (%d runs) ===\n", s.runs)
	fmt.Printf("results: blue=%d red=%d draw=%d captures=%d\n",
		s.wins[grid.TeamBlue], s.wins[grid.TeamRed], s.draws, s.captures)
	fmt.Printf("avg_ticks=%.1f avg_kills=%.2f avg_first_shot=%s avg_first_pickup=%s\n",
		s.avgTicks, s.avgKills, s.firstShot, s.firstPickup)
	fmt.Printf("behavior_mix: %s\n", game.Outcome{Behaviors: s.behaviors}.BehaviorMix())
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}
