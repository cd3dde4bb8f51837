// Package zone partitions the space around the common target into angular-radial cells and tracks
// which combatant holds each cell and whether the cell is currently traversable.
package zone

import (
	"github.com/google/uuid"
)

// Band is the radial ring a zone belongs to.
type Band int

const (
	// BandNone is used for combatants without a classification; no zone carries it.
	BandNone Band = iota
	// BandPassive is the outer ring, held by combatants waiting for an active slot.
	BandPassive
	// BandActive is the inner ring, held by combatants eligible to attack.
	BandActive
)

// String returns a human-readable band label.
func (b Band) String() string {
	switch b {
	case BandPassive:
		return "passive"
	case BandActive:
		return "active"
	default:
		return "none"
	}
}

// Zone is one angular-radial cell around the target.
//
// Invariant: at most one occupant at a time; uuid.Nil means empty.
// Only the occupant and obstructed fields mutate after construction.
type Zone struct {
	// Sector is the angular index in [0, sectorCount).
	Sector int
	// Band is the radial ring of this zone.
	Band Band
	// AngleStart and AngleEnd bound the zone's bearing span in degrees, [AngleStart, AngleEnd).
	AngleStart float64
	AngleEnd   float64
	// DistStart and DistEnd bound the zone's radial span, [DistStart, DistEnd).
	DistStart float64
	DistEnd   float64

	occupant   uuid.UUID
	obstructed bool
}

// Occupant returns the handle of the combatant holding this zone, or uuid.Nil.
func (z *Zone) Occupant() uuid.UUID { return z.occupant }

// IsOccupied reports whether any combatant holds this zone.
func (z *Zone) IsOccupied() bool { return z.occupant != uuid.Nil }

// IsOccupiedBy reports whether id holds this zone.
func (z *Zone) IsOccupiedBy(id uuid.UUID) bool { return id != uuid.Nil && z.occupant == id }

// IsObstructed reports the result of the most recent obstruction probe.
func (z *Zone) IsObstructed() bool { return z.obstructed }

// IsAvailable reports whether the zone may be claimed.
//
// Postcondition: Returns true iff the zone has no occupant and is not obstructed.
func (z *Zone) IsAvailable() bool { return !z.IsOccupied() && !z.obstructed }

// SetOccupant records id as the holder of this zone, replacing any previous holder.
//
// Precondition: callers must have verified availability or be resolving a takeover.
func (z *Zone) SetOccupant(id uuid.UUID) { z.occupant = id }

// Release empties the zone only if id currently holds it.
//
// Postcondition: Returns true iff the zone was held by id and is now empty.
func (z *Zone) Release(id uuid.UUID) bool {
	if !z.IsOccupiedBy(id) {
		return false
	}
	z.occupant = uuid.Nil
	return true
}

// Empty removes any occupant unconditionally.
func (z *Zone) Empty() { z.occupant = uuid.Nil }

// SetObstructed records the result of an obstruction probe.
func (z *Zone) SetObstructed(obstructed bool) { z.obstructed = obstructed }

// AngleWidth returns the bearing span of the zone in degrees.
func (z *Zone) AngleWidth() float64 { return z.AngleEnd - z.AngleStart }

// CenterAngle returns the bearing through the middle of the zone.
func (z *Zone) CenterAngle() float64 { return z.AngleStart + z.AngleWidth()*0.5 }

// CenterDist returns the radial midpoint of the zone.
func (z *Zone) CenterDist() float64 { return z.DistStart + (z.DistEnd-z.DistStart)*0.5 }
