// Package simulation drives an encounter at a fixed step: the target walks its route, the encounter ticks,
// swings resolve against the target, and the navigator moves every combatant.
package simulation

import (
	"time"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// waypointReach is how close the target must come to a waypoint before heading for the next one.
const waypointReach = 0.05

// Target is the common target: it walks a looping waypoint route and absorbs damage. It implements combat.Target.
type Target struct {
	pos     space.Vec2
	forward space.Vec2
	route   []space.Vec2
	next    int
	speed   float64
	health  float64
	damage  float64
}

// NewTarget creates a target at pos. An empty route or zero speed leaves it standing.
//
// Postcondition: Health() == health and Forward() is +Y until the target first moves.
func NewTarget(pos space.Vec2, route []space.Vec2, speed, health float64) *Target {
	return &Target{
		pos:     pos,
		forward: space.V(0, 1),
		route:   append([]space.Vec2(nil), route...),
		speed:   speed,
		health:  health,
	}
}

// Position returns the target's position.
func (t *Target) Position() space.Vec2 { return t.pos }

// Forward returns the unit direction the target last moved in.
func (t *Target) Forward() space.Vec2 { return t.forward }

// Health returns the remaining health, never below zero.
func (t *Target) Health() float64 { return t.health }

// Damage returns the total damage applied.
func (t *Target) Damage() float64 { return t.damage }

// ApplyDamage subtracts d from health.
func (t *Target) ApplyDamage(d float64) {
	t.damage += d
	t.health -= d
	if t.health < 0 {
		t.health = 0
	}
}

// Step walks the route for dt, carrying leftover distance past reached waypoints.
func (t *Target) Step(dt time.Duration) {
	if len(t.route) == 0 || t.speed <= 0 {
		return
	}
	budget := t.speed * dt.Seconds()
	for i := 0; i < len(t.route) && budget > 0; i++ {
		gap := t.route[t.next].Sub(t.pos)
		d := gap.Len()
		if d <= waypointReach {
			t.next = (t.next + 1) % len(t.route)
			continue
		}
		dir := gap.Normalize()
		t.forward = dir
		if budget < d {
			t.pos = t.pos.Add(dir.Scale(budget))
			return
		}
		t.pos = t.route[t.next]
		budget -= d
		t.next = (t.next + 1) % len(t.route)
	}
}
