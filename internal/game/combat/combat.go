// Package combat coordinates a group of combatants attacking a single common target: admission control over
// who may attack, zone claims around the target, and the per-combatant behavior state machine.
package combat

import "github.com/cory-johannsen/gauntlet/internal/game/zone"

// Classification is a combatant's attacker role.
type Classification int

const (
	// Unassigned combatants pursue the target until they are close enough to be classified.
	Unassigned Classification = iota
	// Passive combatants hold the outer band and wait for an active slot.
	Passive
	// Active combatants hold the inner band and may attack.
	Active
)

// String returns a human-readable classification label.
func (c Classification) String() string {
	switch c {
	case Active:
		return "active"
	case Passive:
		return "passive"
	default:
		return "unassigned"
	}
}

// Band returns the zone band a combatant of this classification should hold.
//
// Postcondition: Returns zone.BandNone for Unassigned.
func (c Classification) Band() zone.Band {
	switch c {
	case Active:
		return zone.BandActive
	case Passive:
		return zone.BandPassive
	default:
		return zone.BandNone
	}
}

// State is the combat behavior state of a combatant.
type State int

const (
	Pursuing State = iota
	Strafing
	StrafingToZone
	RadialRunToZone
	MaintainDistance
	ClosingDistance
	BackingUp
	MovingToZone
	MovingToAttack
	Attacking
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case Pursuing:
		return "pursuing"
	case Strafing:
		return "strafing"
	case StrafingToZone:
		return "strafing_to_zone"
	case RadialRunToZone:
		return "radial_run_to_zone"
	case MaintainDistance:
		return "maintain_distance"
	case ClosingDistance:
		return "closing_distance"
	case BackingUp:
		return "backing_up"
	case MovingToZone:
		return "moving_to_zone"
	case MovingToAttack:
		return "moving_to_attack"
	case Attacking:
		return "attacking"
	default:
		return "unknown"
	}
}

// IsAttackState reports whether s counts against the simultaneous attack limit.
func (s State) IsAttackState() bool { return s == MovingToAttack || s == Attacking }

// AttackMode is the attack variant chosen when a combatant commits to an attack.
type AttackMode int

const (
	Normal AttackMode = iota
	Quick
	Heavy
)

// attackModeCount is the number of defined attack modes.
const attackModeCount = 3

// String returns a human-readable attack mode label.
func (m AttackMode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Quick:
		return "quick"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// StrafeDir is the lateral direction a combatant circles the target in.
type StrafeDir int

const (
	Left StrafeDir = iota
	Right
)

// String returns a human-readable strafe direction label.
func (d StrafeDir) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// Gait selects the movement speed a navigator uses for a destination.
type Gait int

const (
	Walk Gait = iota
	Run
	Strafe
)

// String returns a human-readable gait label.
func (g Gait) String() string {
	switch g {
	case Run:
		return "run"
	case Strafe:
		return "strafe"
	default:
		return "walk"
	}
}
