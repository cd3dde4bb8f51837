package nav

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// arrivalSlack absorbs floating point error when comparing against a stopping distance.
const arrivalSlack = 1e-6

// Speeds are agent movement speeds per gait, in units per second.
type Speeds struct {
	Walk   float64
	Run    float64
	Strafe float64
}

func (s Speeds) of(g combat.Gait) float64 {
	switch g {
	case combat.Run:
		return s.Run
	case combat.Strafe:
		return s.Strafe
	default:
		return s.Walk
	}
}

type agent struct {
	pos     space.Vec2
	dest    combat.Destination
	hasDest bool
	blocked int
}

// World moves agents toward their destinations. It implements combat.Navigator and combat.Locator.
// All methods are safe for concurrent use.
type World struct {
	mu     sync.RWMutex
	arena  *Arena
	speeds Speeds
	agents map[uuid.UUID]*agent
	logger *zap.Logger
}

// NewWorld creates an empty World. A nil arena makes every point walkable.
//
// Precondition: speeds must be positive.
func NewWorld(arena *Arena, speeds Speeds, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{
		arena:  arena,
		speeds: speeds,
		agents: make(map[uuid.UUID]*agent),
		logger: logger,
	}
}

// Spawn places a new agent at pos.
//
// Precondition: id must not already be spawned; pos must be walkable.
// Postcondition: Returns an error if either precondition fails.
func (w *World) Spawn(id uuid.UUID, pos space.Vec2) error {
	if !w.IsPointWalkable(pos, 0) {
		return fmt.Errorf("nav.World.Spawn: %s is not walkable", pos)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.agents[id]; exists {
		return fmt.Errorf("nav.World.Spawn: agent %s already spawned", id)
	}
	w.agents[id] = &agent{pos: pos}
	return nil
}

// Remove deletes an agent.
//
// Postcondition: Returns an error if the agent is not found.
func (w *World) Remove(id uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.agents[id]; !ok {
		return fmt.Errorf("agent %s not found", id)
	}
	delete(w.agents, id)
	return nil
}

// Len returns the number of agents.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.agents)
}

// SetDestination replaces the agent's movement request. Unknown agents are ignored.
func (w *World) SetDestination(id uuid.UUID, d combat.Destination) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if a, ok := w.agents[id]; ok {
		a.dest = d
		a.hasDest = true
	}
}

// HasArrived reports whether the agent is within the stopping distance of its destination. Holding agents and
// agents without a destination have not arrived.
func (w *World) HasArrived(id uuid.UUID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok || !a.hasDest || a.dest.Hold {
		return false
	}
	return a.pos.Dist(a.dest.Point) <= a.dest.StoppingDistance+arrivalSlack
}

// Position returns the agent's position.
func (w *World) Position(id uuid.UUID) (space.Vec2, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return space.Vec2{}, false
	}
	return a.pos, true
}

// Teleport moves an agent without walking. Unknown agents are ignored.
func (w *World) Teleport(id uuid.UUID, pos space.Vec2) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if a, ok := w.agents[id]; ok {
		a.pos = pos
	}
}

// Blocked returns how many steps of the agent were refused because they ended on unwalkable ground.
func (w *World) Blocked(id uuid.UUID) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if a, ok := w.agents[id]; ok {
		return a.blocked
	}
	return 0
}

// IsPointWalkable consults the arena.
func (w *World) IsPointWalkable(p space.Vec2, tolerance float64) bool {
	if w.arena == nil {
		return true
	}
	return w.arena.IsPointWalkable(p, tolerance)
}

// Step advances every agent by dt at its gait's speed, stopping at the stopping distance. A step that would end
// on unwalkable ground is refused and the agent stays put.
func (w *World) Step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, a := range w.agents {
		if !a.hasDest || a.dest.Hold {
			continue
		}
		gap := a.dest.Point.Sub(a.pos)
		remaining := gap.Len() - a.dest.StoppingDistance
		if remaining <= 0 {
			continue
		}
		step := w.speeds.of(a.dest.Gait) * dt.Seconds()
		if step > remaining {
			step = remaining
		}
		next := a.pos.Add(gap.Normalize().Scale(step))
		if !w.IsPointWalkable(next, 0) {
			a.blocked++
			w.logger.Debug("step refused", zap.Stringer("agent", id), zap.Stringer("at", next))
			continue
		}
		a.pos = next
	}
}
