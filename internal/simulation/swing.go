package simulation

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/combat"
)

// Swings is the attack timing layer: every swing connects once its windup has elapsed, if the target is still in
// reach, and reports resolution to the encounter when its duration ends.
type Swings struct {
	windup   time.Duration
	duration time.Duration
	logger   *zap.Logger

	order   []uuid.UUID
	elapsed map[uuid.UUID]time.Duration
	modes   map[uuid.UUID]combat.AttackMode

	started int
	hits    int
}

// NewSwings creates an empty timing layer.
//
// Precondition: 0 <= windup <= duration.
func NewSwings(windup, duration time.Duration, logger *zap.Logger) *Swings {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Swings{
		windup:   windup,
		duration: duration,
		logger:   logger,
		elapsed:  make(map[uuid.UUID]time.Duration),
		modes:    make(map[uuid.UUID]combat.AttackMode),
	}
}

// AttackStarted begins timing a swing. A swing already in flight for id restarts.
func (s *Swings) AttackStarted(id uuid.UUID, mode combat.AttackMode) {
	if _, ok := s.elapsed[id]; !ok {
		s.order = append(s.order, id)
	}
	s.elapsed[id] = 0
	s.modes[id] = mode
	s.started++
}

// InFlight returns the number of swings being timed.
func (s *Swings) InFlight() int { return len(s.order) }

// Started returns the number of swings begun.
func (s *Swings) Started() int { return s.started }

// Hits returns the number of swings that connected.
func (s *Swings) Hits() int { return s.hits }

// Step advances every swing by dt in start order. Connected hits damage target; finished swings are resolved on enc.
func (s *Swings) Step(dt time.Duration, enc *combat.Encounter, target *Target) {
	kept := s.order[:0]
	for _, id := range s.order {
		e := s.elapsed[id] + dt
		s.elapsed[id] = e
		if e >= s.windup {
			if dmg, ok := enc.ConsumeHit(id); ok {
				target.ApplyDamage(dmg)
				s.hits++
				s.logger.Debug("swing connected",
					zap.Stringer("combatant", id),
					zap.Stringer("mode", s.modes[id]),
					zap.Float64("damage", dmg),
				)
			}
		}
		if e >= s.duration {
			enc.OnAttackResolved(id)
			delete(s.elapsed, id)
			delete(s.modes, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
