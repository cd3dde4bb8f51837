package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
	"github.com/cory-johannsen/gauntlet/internal/game/zone"
)

// ZoneRef identifies a zone by sector and band.
type ZoneRef struct {
	Sector int
	Band   zone.Band
}

// CombatantSnapshot is a value copy of one combatant's combat state.
type CombatantSnapshot struct {
	ID             uuid.UUID
	Name           string
	State          State
	Classification Classification
	Position       space.Vec2
	StrafeDist     float64
	AttackLocked   bool
	// Occupied is nil when the combatant holds no zone.
	Occupied *ZoneRef
	// Reserved is nil when the combatant is not travelling to a zone.
	Reserved *ZoneRef
}

// Snapshot is a value copy of an encounter, safe to hand to other goroutines.
type Snapshot struct {
	ID            string
	Elapsed       time.Duration
	Ticks         int
	Active        int
	Passive       int
	Unassigned    int
	Attacking     int
	OccupiedZones int
	Combatants    []CombatantSnapshot
}

// Snapshot copies the encounter's current state.
func (e *Encounter) Snapshot() Snapshot {
	s := Snapshot{
		ID:            e.id,
		Elapsed:       e.elapsed,
		Ticks:         e.ticks,
		Active:        e.roster.ActiveCount(),
		Passive:       e.roster.PassiveCount(),
		Unassigned:    e.roster.UnassignedCount(),
		Attacking:     e.roster.AttackingCount(),
		OccupiedZones: e.grid.OccupiedCount(),
		Combatants:    make([]CombatantSnapshot, 0, len(e.combatants)),
	}
	for _, c := range e.combatants {
		s.Combatants = append(s.Combatants, CombatantSnapshot{
			ID:             c.ID,
			Name:           c.Name,
			State:          c.state,
			Classification: c.class,
			Position:       c.position,
			StrafeDist:     c.strafeDist,
			AttackLocked:   c.attackLocked,
			Occupied:       refOf(c.reservation.Occupied()),
			Reserved:       refOf(c.reservation.Reserved()),
		})
	}
	return s
}

func refOf(z *zone.Zone) *ZoneRef {
	if z == nil {
		return nil
	}
	return &ZoneRef{Sector: z.Sector, Band: z.Band}
}
