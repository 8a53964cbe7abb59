// Package config holds the tuning constants the tactical core consumes as
// opaque inputs, loaded from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds all configuration for one team's decision core.
type Tuning struct {
	// Grid
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	// Perception
	VisibleRadius    int `yaml:"visible_radius"` // window is (2r+1)×(2r+1)
	ShootRange       int `yaml:"shoot_range"`
	DodgeRange       int `yaml:"dodge_range"`
	ThreatScanRadius int `yaml:"threat_scan_radius"`

	// Memory
	TicksPerSecond int     `yaml:"ticks_per_second"`
	EnemyMemory    float64 `yaml:"enemy_memory"` // seconds between enemy refreshes

	// Coordination
	DangerCooldown  int `yaml:"danger_cooldown"` // decrements per in-danger decision
	RallyInner      int `yaml:"rally_inner"`
	RallyOuter      int `yaml:"rally_outer"`
	SearchWaypoints int `yaml:"search_waypoints"` // random waypoints per search cycle
	SearchRerolls   int `yaml:"search_rerolls"`   // reachability retries per tick
	JournalSize     int `yaml:"journal_size"`

	Router Router `yaml:"router"`
	Match  Match  `yaml:"match"`

	Seed uint64 `yaml:"seed"`
}

// Match holds host engine settings. The decision core never reads them.
type Match struct {
	MaxTicks    int    `yaml:"max_ticks"`    // tie once reached
	BulletSpeed int    `yaml:"bullet_speed"` // cells per tick
	ReloadTicks int    `yaml:"reload_ticks"`
	Arena       string `yaml:"arena"` // YAML arena file; empty for the built-in map
}

// Router holds the path cost model.
type Router struct {
	FreeCost      float64 `yaml:"free_cost"`
	ThreatPenalty float64 `yaml:"threat_penalty"`
	Caution       float64 `yaml:"caution"`
	FearRadius    float64 `yaml:"fear_radius"`
	Repulsion     float64 `yaml:"repulsion"`
	MaxExpansions int     `yaml:"max_expansions"` // 0 = unbounded
}

// UnknownCost is the step cost into an unexplored cell.
func (r Router) UnknownCost() float64 {
	return r.FreeCost + max(r.FreeCost, r.ThreatPenalty)*r.Caution
}

// ThreatCost is the step cost into a threatened cell.
func (r Router) ThreatCost() float64 {
	return r.FreeCost + r.ThreatPenalty
}

// Default returns Tuning with sensible defaults.
func Default() Tuning {
	return Tuning{
		Rows:             24,
		Cols:             40,
		VisibleRadius:    4,
		ShootRange:       8,
		DodgeRange:       5,
		ThreatScanRadius: 8,
		TicksPerSecond:   60,
		EnemyMemory:      2,
		DangerCooldown:   300,
		RallyInner:       3,
		RallyOuter:       6,
		SearchWaypoints:  10,
		SearchRerolls:    8,
		JournalSize:      64,
		Router: Router{
			FreeCost:      1,
			ThreatPenalty: 10,
			Caution:       6.66,
			FearRadius:    10,
			Repulsion:     100000,
			MaxExpansions: 0,
		},
		Match: Match{
			MaxTicks:    3000,
			BulletSpeed: 2,
			ReloadTicks: 6,
		},
		Seed: 1,
	}
}

// WindowSize returns the side length of the observation window.
func (t Tuning) WindowSize() int { return 2*t.VisibleRadius + 1 }

// EnemyMemoryTicks converts EnemyMemory to simulation ticks, never less
// than one.
func (t Tuning) EnemyMemoryTicks() int {
	return max(1, int(math.Round(t.EnemyMemory*float64(t.TicksPerSecond))))
}

// Validate reports every inconsistent setting at once.
func (t Tuning) Validate() error {
	var errs []error
	if t.Rows < 3 || t.Cols < 3 {
		errs = append(errs, fmt.Errorf("grid %dx%d is smaller than 3x3", t.Rows, t.Cols))
	}
	if t.VisibleRadius < 1 {
		errs = append(errs, fmt.Errorf("visible_radius %d must be >= 1", t.VisibleRadius))
	}
	if t.ShootRange < 1 || t.DodgeRange < 1 {
		errs = append(errs, errors.New("shoot_range and dodge_range must be >= 1"))
	}
	if t.TicksPerSecond < 1 {
		errs = append(errs, fmt.Errorf("ticks_per_second %d must be >= 1", t.TicksPerSecond))
	}
	if t.EnemyMemory <= 0 {
		errs = append(errs, fmt.Errorf("enemy_memory %gs must be > 0", t.EnemyMemory))
	}
	if t.RallyInner < 1 || t.RallyOuter < t.RallyInner {
		errs = append(errs, fmt.Errorf("rally annulus [%d,%d] is empty", t.RallyInner, t.RallyOuter))
	}
	if t.SearchRerolls < 1 {
		errs = append(errs, errors.New("search_rerolls must be >= 1"))
	}
	if t.JournalSize < 1 {
		errs = append(errs, errors.New("journal_size must be >= 1"))
	}
	if t.Router.FreeCost <= 0 {
		errs = append(errs, errors.New("router.free_cost must be > 0"))
	}
	if t.Router.ThreatPenalty < 0 || t.Router.Caution < 0 || t.Router.Repulsion < 0 {
		errs = append(errs, errors.New("router penalties must be >= 0"))
	}
	if t.Match.MaxTicks < 1 || t.Match.BulletSpeed < 1 || t.Match.ReloadTicks < 0 {
		errs = append(errs, fmt.Errorf("match settings %+v out of range", t.Match))
	}
	return errors.Join(errs...)
}

// EnvPath names the environment variable that overrides the default config
// file path.
const EnvPath = "FLAGSENSE_CONFIG"

// PathFromEnv returns $FLAGSENSE_CONFIG, or fallback when it is unset or
// empty.
func PathFromEnv(fallback string) string {
	if v, ok := os.LookupEnv(EnvPath); ok && v != "" {
		return v
	}
	return fallback
}

// Load reads Tuning from a YAML file layered over Default.
// If the file doesn't exist, returns defaults.
func Load(path string) (Tuning, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}
