package combat

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Destination is a movement request handed to a Navigator.
type Destination struct {
	// Point is the world position to move toward.
	Point space.Vec2
	// StoppingDistance is how close to Point counts as arrived.
	StoppingDistance float64
	// Gait selects the movement speed.
	Gait Gait
	// Hold stops the agent in place; Point is ignored.
	Hold bool
}

// Navigator follows paths on behalf of combatants. The encounter only issues requests and polls for arrival.
type Navigator interface {
	// SetDestination replaces the current movement request for id. Unknown ids are ignored.
	SetDestination(id uuid.UUID, dest Destination)
	// HasArrived reports whether id is within the stopping distance of its current destination.
	HasArrived(id uuid.UUID) bool
	// IsPointWalkable reports whether p resolves to traversable ground within tolerance.
	IsPointWalkable(p space.Vec2, tolerance float64) bool
}

// Locator reports the live position of a combatant.
type Locator interface {
	// Position returns the current position of id and whether id is known.
	Position(id uuid.UUID) (space.Vec2, bool)
}

// Target is the common target every combatant attacks. Zone sectors are fixed to world axes around its
// position, sector 0 on world +Y, so its facing is not consulted.
type Target interface {
	// Position returns the target's current world position.
	Position() space.Vec2
}

// Staggerable is implemented by combatant bodies that can be interrupted by incoming hits.
type Staggerable interface {
	SetStaggerable(staggerable bool)
}

// AttackListener is notified when a combatant begins an attack so the resolution layer can time the swing.
type AttackListener interface {
	// AttackStarted is called when id enters the Attacking state with the chosen mode.
	AttackStarted(id uuid.UUID, mode AttackMode)
}

// AttackListenerFunc adapts a function to AttackListener.
type AttackListenerFunc func(id uuid.UUID, mode AttackMode)

// AttackStarted calls f(id, mode).
func (f AttackListenerFunc) AttackStarted(id uuid.UUID, mode AttackMode) { f(id, mode) }
