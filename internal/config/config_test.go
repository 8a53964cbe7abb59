package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestRouter_DerivedCosts(t *testing.T) {
	r := Default().Router
	assert.Equal(t, 11.0, r.ThreatCost())
	assert.InDelta(t, 1+10*6.66, r.UnknownCost(), 1e-9)
	assert.Greater(t, r.UnknownCost(), r.ThreatCost())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "rows: 20\ncols: 20\nshoot_range: 6\nrouter:\n  caution: 2.5\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Rows)
	assert.Equal(t, 6, cfg.ShootRange)
	assert.Equal(t, 2.5, cfg.Router.Caution)
	assert.Equal(t, Default().Router.ThreatPenalty, cfg.Router.ThreatPenalty)
	assert.Equal(t, Default().DodgeRange, cfg.DodgeRange)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rally_inner: 5\nrally_outer: 2\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rally annulus")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: [1,2\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Rows = 1
	cfg.SearchRerolls = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smaller than 3x3")
	assert.Contains(t, err.Error(), "search_rerolls")
}

func TestLoad_MatchSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	body := "match:\n  max_ticks: 500\n  arena: maps/duel.yaml\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Match.MaxTicks)
	assert.Equal(t, "maps/duel.yaml", cfg.Match.Arena)
	assert.Equal(t, Default().Match.BulletSpeed, cfg.Match.BulletSpeed)
}

func TestValidate_MatchSettings(t *testing.T) {
	cfg := Default()
	cfg.Match.BulletSpeed = 0
	require.ErrorContains(t, cfg.Validate(), "match settings")
}

func TestEnemyMemoryTicks(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 120, cfg.EnemyMemoryTicks())

	cfg.TicksPerSecond = 30
	cfg.EnemyMemory = 0.5
	assert.Equal(t, 15, cfg.EnemyMemoryTicks())

	cfg.EnemyMemory = 0.001
	assert.Equal(t, 1, cfg.EnemyMemoryTicks())
}

func TestValidate_MemorySettings(t *testing.T) {
	cfg := Default()
	cfg.TicksPerSecond = 0
	cfg.EnemyMemory = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticks_per_second")
	assert.Contains(t, err.Error(), "enemy_memory")
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, "flagsense.yaml", PathFromEnv("flagsense.yaml"))

	t.Setenv(EnvPath, "custom.yaml")
	assert.Equal(t, "custom.yaml", PathFromEnv("flagsense.yaml"))
}
