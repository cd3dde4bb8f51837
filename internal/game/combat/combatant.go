package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Combatant is one attacking agent. Position and movement belong to the navigator; the encounter reads the
// position through a Locator and writes destinations through a Navigator.
//
// Invariant: class mirrors the roster set holding the combatant while it is in combat.
type Combatant struct {
	// ID is the handle used by the navigator, locator and zone occupancy.
	ID uuid.UUID
	// Name labels the combatant in logs.
	Name string

	body Staggerable

	class      Classification
	state      State
	strafeDist float64
	strafeDir  StrafeDir
	attackMode AttackMode

	cooldown    time.Duration
	sinceAttack time.Duration
	patience    time.Duration
	idle        time.Duration
	zoneTimer   time.Duration
	strafeTimer time.Duration
	swingTime   time.Duration

	attackLocked bool
	armed        bool
	inCombat     bool

	position    space.Vec2
	reservation *Reservation
}

// NewCombatant creates a combatant outside of combat. A nil id is replaced with a random one; body may be nil.
//
// Postcondition: Returns an Unassigned combatant in the Pursuing state.
func NewCombatant(id uuid.UUID, name string, body Staggerable) *Combatant {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Combatant{ID: id, Name: name, body: body}
}

// Classification returns the combatant's attacker role.
func (c *Combatant) Classification() Classification { return c.class }

// State returns the current combat state.
func (c *Combatant) State() State { return c.state }

// StrafeDist returns the personal distance the combatant tries to hold from the target.
func (c *Combatant) StrafeDist() float64 { return c.strafeDist }

// StrafeDir returns the current circling direction.
func (c *Combatant) StrafeDir() StrafeDir { return c.strafeDir }

// AttackMode returns the mode chosen for the current or most recent attack.
func (c *Combatant) AttackMode() AttackMode { return c.attackMode }

// Cooldown returns the randomized delay required between attacks.
func (c *Combatant) Cooldown() time.Duration { return c.cooldown }

// SinceAttack returns the accumulated time counted toward the attack cooldown.
func (c *Combatant) SinceAttack() time.Duration { return c.sinceAttack }

// IsAttackLocked reports whether the combatant is mid-swing and cannot be staggered or steered.
func (c *Combatant) IsAttackLocked() bool { return c.attackLocked }

// IsArmed reports whether the current swing can still deal damage.
func (c *Combatant) IsArmed() bool { return c.armed }

// InCombat reports whether the combatant is registered with an encounter.
func (c *Combatant) InCombat() bool { return c.inCombat }

// Position returns the position sampled at the start of the most recent tick.
func (c *Combatant) Position() space.Vec2 { return c.position }

// Observe records the position sampled for the current tick.
func (c *Combatant) Observe(pos space.Vec2) { c.position = pos }

// Reservation returns the combatant's zone claims, or nil before the combatant first enters combat.
func (c *Combatant) Reservation() *Reservation { return c.reservation }

func (c *Combatant) setStaggerable(v bool) {
	if c.body != nil {
		c.body.SetStaggerable(v)
	}
}

// resetTimers clears every accumulated-time counter.
func (c *Combatant) resetTimers() {
	c.sinceAttack = 0
	c.idle = 0
	c.zoneTimer = 0
	c.strafeTimer = 0
	c.swingTime = 0
}
