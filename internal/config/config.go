// Package config provides Viper-based configuration loading for the encounter simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/nav"
	"github.com/cory-johannsen/gauntlet/internal/game/zone"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig holds OpenTelemetry meter settings.
type MetricsConfig struct {
	// Enabled selects the global meter provider; disabled selects a no-op meter.
	Enabled bool `mapstructure:"enabled"`
	// MeterName is the instrumentation scope name.
	MeterName string `mapstructure:"meter_name"`
}

// ZonesConfig holds the zone grid and obstruction probe geometry.
type ZonesConfig struct {
	SectorCount      int     `mapstructure:"sector_count"`
	ActiveMinDist    float64 `mapstructure:"active_min_dist"`
	ActiveMaxDist    float64 `mapstructure:"active_max_dist"`
	PassiveMaxDist   float64 `mapstructure:"passive_max_dist"`
	ProbeAngleBuffer float64 `mapstructure:"probe_angle_buffer"`
	ProbeDistBuffer  float64 `mapstructure:"probe_dist_buffer"`
	ProbeTolerance   float64 `mapstructure:"probe_tolerance"`
}

// RosterConfig holds the admission caps.
type RosterConfig struct {
	MaxActive              int `mapstructure:"max_active"`
	MaxSimultaneousAttacks int `mapstructure:"max_simultaneous_attacks"`
}

// AttackConfig holds one attack mode's parameters.
type AttackConfig struct {
	Stopping float64 `mapstructure:"stopping"`
	Damage   float64 `mapstructure:"damage"`
}

// CombatantConfig holds per-combatant behavior constants.
type CombatantConfig struct {
	AttackCooldownMin   time.Duration `mapstructure:"attack_cooldown_min"`
	AttackCooldownMax   time.Duration `mapstructure:"attack_cooldown_max"`
	PatienceMin         time.Duration `mapstructure:"patience_min"`
	PatienceMax         time.Duration `mapstructure:"patience_max"`
	ZoneCheckInterval   time.Duration `mapstructure:"zone_check_interval"`
	StrafeCheckInterval time.Duration `mapstructure:"strafe_check_interval"`
	// TakeoverChance is a percentage, 0-100.
	TakeoverChance      float64 `mapstructure:"takeover_chance"`
	NeighborCheckDist   float64 `mapstructure:"neighbor_check_dist"`
	NeighborCheckAngle  float64 `mapstructure:"neighbor_check_angle"`
	AvoidanceIncrement  float64 `mapstructure:"avoidance_increment"`
	StoppingDistance    float64 `mapstructure:"stopping_distance"`
	ZoneArrivalDistance float64 `mapstructure:"zone_arrival_distance"`
	StrafeStep          float64 `mapstructure:"strafe_step"`
	RunStep             float64 `mapstructure:"run_step"`
	BackupStep          float64 `mapstructure:"backup_step"`
	// AttackTimeout of zero disables self-resolution of unanswered attacks.
	AttackTimeout     time.Duration `mapstructure:"attack_timeout"`
	AttackModes       int           `mapstructure:"attack_modes"`
	NormalAttack      AttackConfig  `mapstructure:"normal_attack"`
	QuickAttack       AttackConfig  `mapstructure:"quick_attack"`
	HeavyAttack       AttackConfig  `mapstructure:"heavy_attack"`
	AttackReachMargin float64       `mapstructure:"attack_reach_margin"`
}

// SimulationConfig holds the fixed-step runner settings.
type SimulationConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// Seed selects a deterministic random source; zero selects a crypto-backed source.
	Seed          uint64        `mapstructure:"seed"`
	WalkSpeed     float64       `mapstructure:"walk_speed"`
	RunSpeed      float64       `mapstructure:"run_speed"`
	StrafeSpeed   float64       `mapstructure:"strafe_speed"`
	SwingWindup   time.Duration `mapstructure:"swing_windup"`
	SwingDuration time.Duration `mapstructure:"swing_duration"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Zones      ZonesConfig      `mapstructure:"zones"`
	Roster     RosterConfig     `mapstructure:"roster"`
	Combatant  CombatantConfig  `mapstructure:"combatant"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMetrics(c.Metrics); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateZones(c.Zones); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.CombatTuning().Validate(); err != nil {
		errs = append(errs, "combat tuning: "+err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GridSpec projects the zone geometry.
func (c Config) GridSpec() zone.Spec {
	return zone.Spec{
		SectorCount:    c.Zones.SectorCount,
		ActiveMinDist:  c.Zones.ActiveMinDist,
		ActiveMaxDist:  c.Zones.ActiveMaxDist,
		PassiveMaxDist: c.Zones.PassiveMaxDist,
	}
}

// ProbeSpec projects the obstruction probe settings.
func (c Config) ProbeSpec() zone.ProbeSpec {
	return zone.ProbeSpec{
		AngleBuffer: c.Zones.ProbeAngleBuffer,
		DistBuffer:  c.Zones.ProbeDistBuffer,
		Tolerance:   c.Zones.ProbeTolerance,
	}
}

// Speeds projects the navigator gait speeds.
func (c Config) Speeds() nav.Speeds {
	return nav.Speeds{Walk: c.Simulation.WalkSpeed, Run: c.Simulation.RunSpeed, Strafe: c.Simulation.StrafeSpeed}
}

// CombatTuning projects the roster and combatant sections.
func (c Config) CombatTuning() combat.Tuning {
	cc := c.Combatant
	return combat.Tuning{
		MaxActive:              c.Roster.MaxActive,
		MaxSimultaneousAttacks: c.Roster.MaxSimultaneousAttacks,
		AttackCooldownMin:      cc.AttackCooldownMin,
		AttackCooldownMax:      cc.AttackCooldownMax,
		PatienceMin:            cc.PatienceMin,
		PatienceMax:            cc.PatienceMax,
		ZoneCheckInterval:      cc.ZoneCheckInterval,
		StrafeCheckInterval:    cc.StrafeCheckInterval,
		TakeoverChance:         cc.TakeoverChance,
		NeighborCheckDist:      cc.NeighborCheckDist,
		NeighborCheckAngle:     cc.NeighborCheckAngle,
		AvoidanceIncrement:     cc.AvoidanceIncrement,
		StoppingDistance:       cc.StoppingDistance,
		ZoneArrivalDistance:    cc.ZoneArrivalDistance,
		StrafeStep:             cc.StrafeStep,
		RunStep:                cc.RunStep,
		BackupStep:             cc.BackupStep,
		AttackTimeout:          cc.AttackTimeout,
		AttackModes:            cc.AttackModes,
		NormalAttack:           combat.AttackProfile{StoppingDistance: cc.NormalAttack.Stopping, Damage: cc.NormalAttack.Damage},
		QuickAttack:            combat.AttackProfile{StoppingDistance: cc.QuickAttack.Stopping, Damage: cc.QuickAttack.Damage},
		HeavyAttack:            combat.AttackProfile{StoppingDistance: cc.HeavyAttack.Stopping, Damage: cc.HeavyAttack.Damage},
		AttackReachMargin:      cc.AttackReachMargin,
	}
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	if m.Enabled && m.MeterName == "" {
		return errors.New("metrics.meter_name must not be empty when metrics are enabled")
	}
	return nil
}

func validateZones(z ZonesConfig) error {
	if err := (zone.Spec{
		SectorCount:    z.SectorCount,
		ActiveMinDist:  z.ActiveMinDist,
		ActiveMaxDist:  z.ActiveMaxDist,
		PassiveMaxDist: z.PassiveMaxDist,
	}).Validate(); err != nil {
		return fmt.Errorf("zones: %w", err)
	}
	var errs []string
	if z.ProbeAngleBuffer < 0 || z.ProbeDistBuffer < 0 || z.ProbeTolerance < 0 {
		errs = append(errs, "zones probe buffers and tolerance must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_interval must be > 0, got %s", s.TickInterval))
	}
	if s.WalkSpeed <= 0 || s.RunSpeed <= 0 || s.StrafeSpeed <= 0 {
		errs = append(errs, "simulation speeds must be > 0")
	}
	if s.SwingWindup < 0 || s.SwingDuration <= 0 || s.SwingWindup > s.SwingDuration {
		errs = append(errs, fmt.Sprintf("simulation swing window [%s, %s] is invalid", s.SwingWindup, s.SwingDuration))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with GAUNTLET_ prefix
	v.SetEnvPrefix("GAUNTLET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default returns the configuration built from defaults alone.
//
// Postcondition: Returns a valid Config.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic(fmt.Sprintf("config: defaults are invalid: %v", err))
	}
	return cfg
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.meter_name", "github.com/cory-johannsen/gauntlet")

	v.SetDefault("zones.sector_count", 10)
	v.SetDefault("zones.active_min_dist", 3.0)
	v.SetDefault("zones.active_max_dist", 5.0)
	v.SetDefault("zones.passive_max_dist", 10.0)
	v.SetDefault("zones.probe_angle_buffer", 2.0)
	v.SetDefault("zones.probe_dist_buffer", 0.7)
	v.SetDefault("zones.probe_tolerance", 0.3)

	v.SetDefault("roster.max_active", 3)
	v.SetDefault("roster.max_simultaneous_attacks", 2)

	v.SetDefault("combatant.attack_cooldown_min", "3.5s")
	v.SetDefault("combatant.attack_cooldown_max", "7.5s")
	v.SetDefault("combatant.patience_min", "6s")
	v.SetDefault("combatant.patience_max", "10s")
	v.SetDefault("combatant.zone_check_interval", "5s")
	v.SetDefault("combatant.strafe_check_interval", "2s")
	v.SetDefault("combatant.takeover_chance", 25.0)
	v.SetDefault("combatant.neighbor_check_dist", 2.1)
	v.SetDefault("combatant.neighbor_check_angle", 45.0)
	v.SetDefault("combatant.avoidance_increment", 1.5)
	v.SetDefault("combatant.stopping_distance", 1.75)
	v.SetDefault("combatant.zone_arrival_distance", 0.5)
	v.SetDefault("combatant.strafe_step", 2.0)
	v.SetDefault("combatant.run_step", 4.0)
	v.SetDefault("combatant.backup_step", 2.0)
	v.SetDefault("combatant.attack_timeout", "3s")
	v.SetDefault("combatant.attack_modes", 3)
	v.SetDefault("combatant.normal_attack.stopping", 1.75)
	v.SetDefault("combatant.normal_attack.damage", 10.0)
	v.SetDefault("combatant.quick_attack.stopping", 1.75)
	v.SetDefault("combatant.quick_attack.damage", 5.0)
	v.SetDefault("combatant.heavy_attack.stopping", 2.0)
	v.SetDefault("combatant.heavy_attack.damage", 15.0)
	v.SetDefault("combatant.attack_reach_margin", 0.5)

	v.SetDefault("simulation.tick_interval", "50ms")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.walk_speed", 1.5)
	v.SetDefault("simulation.run_speed", 3.0)
	v.SetDefault("simulation.strafe_speed", 1.5)
	v.SetDefault("simulation.swing_windup", "400ms")
	v.SetDefault("simulation.swing_duration", "1200ms")
}
