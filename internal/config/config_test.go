package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
)

func validConfig() Config {
	return Default()
}

func TestDefaultIsValid(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Zones.SectorCount)
	assert.Equal(t, 3500*time.Millisecond, cfg.Combatant.AttackCooldownMin)
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickInterval)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestCombatTuningMatchesDefaults(t *testing.T) {
	assert.Equal(t, combat.DefaultTuning(), validConfig().CombatTuning())
}

func TestGridAndProbeSpec(t *testing.T) {
	cfg := validConfig()
	spec := cfg.GridSpec()
	assert.Equal(t, 10, spec.SectorCount)
	assert.Equal(t, 3.0, spec.ActiveMinDist)
	assert.Equal(t, 5.0, spec.ActiveMaxDist)
	assert.Equal(t, 10.0, spec.PassiveMaxDist)

	probe := cfg.ProbeSpec()
	assert.Equal(t, 2.0, probe.AngleBuffer)
	assert.Equal(t, 0.7, probe.DistBuffer)
	assert.Equal(t, 0.3, probe.Tolerance)

	speeds := cfg.Speeds()
	assert.Equal(t, 1.5, speeds.Walk)
	assert.Equal(t, 3.0, speeds.Run)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
zones:
  sector_count: 8
roster:
  max_active: 4
combatant:
  takeover_chance: 50
  attack_timeout: 0s
  heavy_attack:
    damage: 20
simulation:
  tick_interval: 100ms
  seed: 42
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Zones.SectorCount)
	assert.Equal(t, 5.0, cfg.Zones.ActiveMaxDist, "unset keys keep their defaults")
	assert.Equal(t, 4, cfg.Roster.MaxActive)
	assert.Equal(t, 50.0, cfg.Combatant.TakeoverChance)
	assert.Zero(t, cfg.Combatant.AttackTimeout)
	assert.Equal(t, 20.0, cfg.Combatant.HeavyAttack.Damage)
	assert.Equal(t, 2.0, cfg.Combatant.HeavyAttack.Stopping)
	assert.Equal(t, 100*time.Millisecond, cfg.Simulation.TickInterval)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roster:\n  max_active: 4\n"), 0644))
	t.Setenv("GAUNTLET_ROSTER_MAX_ACTIVE", "6")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Roster.MaxActive)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadFromViperRejectsInvalid(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("zones.sector_count", 0)
	_, err := LoadFromViper(v)
	assert.ErrorContains(t, err, "sector count")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateMetricsNeedsName(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.MeterName = ""
	assert.ErrorContains(t, cfg.Validate(), "meter_name")
}

func TestValidateZoneThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Zones.ActiveMinDist = 6
	assert.Error(t, cfg.Validate(), "active min above active max")

	cfg = validConfig()
	cfg.Zones.PassiveMaxDist = 4
	assert.Error(t, cfg.Validate(), "passive max below active max")

	cfg = validConfig()
	cfg.Zones.ProbeTolerance = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateAccumulatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	cfg.Roster.MaxActive = 0
	cfg.Combatant.TakeoverChance = 101
	cfg.Simulation.TickInterval = 0

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"logging.level", "max_active", "takeover_chance", "tick_interval"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateSwingWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Simulation.SwingWindup = 2 * time.Second
	assert.ErrorContains(t, cfg.Validate(), "swing window")
}

// Property-based tests

func TestPropertyValidSectorCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Zones.SectorCount = rapid.IntRange(1, 360).Draw(t, "sectors")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid sector count %d rejected: %v", cfg.Zones.SectorCount, err)
		}
	})
}

func TestPropertyInvertedCooldownRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hi := time.Duration(rapid.Int64Range(0, int64(time.Minute)).Draw(t, "hi"))
		lo := hi + time.Duration(rapid.Int64Range(1, int64(time.Minute)).Draw(t, "gap"))
		cfg := validConfig()
		cfg.Combatant.AttackCooldownMin = lo
		cfg.Combatant.AttackCooldownMax = hi
		if cfg.Validate() == nil {
			t.Fatalf("cooldown range [%s, %s] accepted", lo, hi)
		}
	})
}

func TestPropertyTakeoverChanceRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		chance := rapid.Float64Range(-200, 300).Draw(t, "chance")
		cfg := validConfig()
		cfg.Combatant.TakeoverChance = chance
		err := cfg.Validate()
		valid := chance >= 0 && chance <= 100
		if valid != (err == nil) {
			t.Fatalf("takeover chance %v: valid=%v err=%v", chance, valid, err)
		}
	})
}
