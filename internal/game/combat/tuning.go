package combat

import (
	"fmt"
	"strings"
	"time"
)

// AttackProfile holds the per-mode attack parameters.
type AttackProfile struct {
	// StoppingDistance is how close the combatant closes before swinging.
	StoppingDistance float64
	// Damage is applied to the target when the swing connects.
	Damage float64
}

// Tuning holds the behavior constants for an encounter.
type Tuning struct {
	MaxActive              int
	MaxSimultaneousAttacks int

	AttackCooldownMin time.Duration
	AttackCooldownMax time.Duration
	PatienceMin       time.Duration
	PatienceMax       time.Duration

	ZoneCheckInterval   time.Duration
	StrafeCheckInterval time.Duration
	// TakeoverChance is the percent chance, 0-100, of forcing an occupant out of the current zone.
	TakeoverChance float64

	NeighborCheckDist  float64
	NeighborCheckAngle float64
	AvoidanceIncrement float64

	StoppingDistance    float64
	ZoneArrivalDistance float64
	StrafeStep          float64
	RunStep             float64
	BackupStep          float64

	// AttackTimeout resolves an attack that never receives a resolution signal; zero disables it.
	AttackTimeout time.Duration
	// AttackModes limits mode selection to the first AttackModes modes.
	AttackModes       int
	NormalAttack      AttackProfile
	QuickAttack       AttackProfile
	HeavyAttack       AttackProfile
	AttackReachMargin float64
}

// DefaultTuning returns the stock behavior constants.
func DefaultTuning() Tuning {
	return Tuning{
		MaxActive:              3,
		MaxSimultaneousAttacks: 2,
		AttackCooldownMin:      3500 * time.Millisecond,
		AttackCooldownMax:      7500 * time.Millisecond,
		PatienceMin:            6 * time.Second,
		PatienceMax:            10 * time.Second,
		ZoneCheckInterval:      5 * time.Second,
		StrafeCheckInterval:    2 * time.Second,
		TakeoverChance:         25,
		NeighborCheckDist:      2.1,
		NeighborCheckAngle:     45,
		AvoidanceIncrement:     1.5,
		StoppingDistance:       1.75,
		ZoneArrivalDistance:    0.5,
		StrafeStep:             2.0,
		RunStep:                4.0,
		BackupStep:             2.0,
		AttackTimeout:          3 * time.Second,
		AttackModes:            attackModeCount,
		NormalAttack:           AttackProfile{StoppingDistance: 1.75, Damage: 10},
		QuickAttack:            AttackProfile{StoppingDistance: 1.75, Damage: 5},
		HeavyAttack:            AttackProfile{StoppingDistance: 2.0, Damage: 15},
		AttackReachMargin:      0.5,
	}
}

// Profile returns the parameters for mode.
func (t Tuning) Profile(mode AttackMode) AttackProfile {
	switch mode {
	case Quick:
		return t.QuickAttack
	case Heavy:
		return t.HeavyAttack
	default:
		return t.NormalAttack
	}
}

// Validate checks the tuning for values the state machine cannot run with.
//
// Postcondition: Returns nil if valid, or an error listing every violation.
func (t Tuning) Validate() error {
	var errs []string
	if t.MaxActive < 1 {
		errs = append(errs, fmt.Sprintf("max_active must be >= 1, got %d", t.MaxActive))
	}
	if t.MaxSimultaneousAttacks < 1 {
		errs = append(errs, fmt.Sprintf("max_simultaneous_attacks must be >= 1, got %d", t.MaxSimultaneousAttacks))
	}
	if t.AttackCooldownMin < 0 || t.AttackCooldownMin > t.AttackCooldownMax {
		errs = append(errs, fmt.Sprintf("attack cooldown range [%s, %s] is invalid", t.AttackCooldownMin, t.AttackCooldownMax))
	}
	if t.PatienceMin < 0 || t.PatienceMin > t.PatienceMax {
		errs = append(errs, fmt.Sprintf("patience range [%s, %s] is invalid", t.PatienceMin, t.PatienceMax))
	}
	if t.ZoneCheckInterval <= 0 {
		errs = append(errs, "zone_check_interval must be > 0")
	}
	if t.StrafeCheckInterval <= 0 {
		errs = append(errs, "strafe_check_interval must be > 0")
	}
	if t.TakeoverChance < 0 || t.TakeoverChance > 100 {
		errs = append(errs, fmt.Sprintf("takeover_chance must be 0-100, got %v", t.TakeoverChance))
	}
	if t.NeighborCheckDist < 0 || t.NeighborCheckAngle < 0 || t.AvoidanceIncrement < 0 {
		errs = append(errs, "neighbor avoidance values must not be negative")
	}
	if t.StoppingDistance <= 0 || t.ZoneArrivalDistance <= 0 {
		errs = append(errs, "stopping distances must be > 0")
	}
	if t.StrafeStep <= 0 || t.RunStep <= 0 || t.BackupStep <= 0 {
		errs = append(errs, "movement steps must be > 0")
	}
	if t.AttackTimeout < 0 {
		errs = append(errs, "attack_timeout must not be negative")
	}
	if t.AttackModes < 1 || t.AttackModes > attackModeCount {
		errs = append(errs, fmt.Sprintf("attack_modes must be 1-%d, got %d", attackModeCount, t.AttackModes))
	}
	for _, m := range []AttackMode{Normal, Quick, Heavy} {
		p := t.Profile(m)
		if p.StoppingDistance <= 0 || p.Damage < 0 {
			errs = append(errs, fmt.Sprintf("%s attack profile is invalid", m))
		}
	}
	if t.AttackReachMargin < 0 {
		errs = append(errs, "attack_reach_margin must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
