package combat

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
	"github.com/cory-johannsen/gauntlet/internal/game/zone"
)

// Reservation tracks the zone claims of one combatant.
//
// Invariant: a non-nil occupied zone has the owner as its occupant.
// Invariant: while reserving, the reserved zone is also the occupied zone.
type Reservation struct {
	owner  *Combatant
	grid   *zone.Grid
	src    dice.Source
	logger *zap.Logger

	center   space.Vec2
	current  *zone.Zone
	occupied *zone.Zone
	reserved *zone.Zone

	reserving     bool
	targetAngle   float64
	reservedPoint space.Vec2
}

func newReservation(owner *Combatant, grid *zone.Grid, src dice.Source, logger *zap.Logger) *Reservation {
	return &Reservation{owner: owner, grid: grid, src: src, logger: logger}
}

// Refresh recomputes the current zone from the owner's live position around center, drops an occupied claim
// the owner has physically left, and moves the reserved point with the target.
//
// Postcondition: Current() reflects the owner's position; a stale occupied claim is released unless reserving.
func (r *Reservation) Refresh(center space.Vec2) {
	r.center = center
	r.current = r.grid.Locate(r.owner.position, center)
	if !r.reserving && r.occupied != nil && r.current != r.occupied {
		r.ClearOccupied()
	}
	if r.reserving {
		r.reservedPoint = r.grid.PointAt(center, r.targetAngle, r.owner.strafeDist)
	}
}

// OccupyCurrent claims the current zone. A zone held by another combatant is left alone.
//
// Postcondition: Returns true iff the owner now occupies the current zone; any previous occupied claim on a
// different zone is released.
func (r *Reservation) OccupyCurrent() bool {
	z := r.current
	if z == nil {
		return false
	}
	if z.IsOccupied() && !z.IsOccupiedBy(r.owner.ID) {
		return false
	}
	if r.occupied != nil && r.occupied != z {
		r.occupied.Release(r.owner.ID)
	}
	z.SetOccupant(r.owner.ID)
	r.occupied = z
	return true
}

// ReserveClosestAvailable claims the available zone of the owner's band nearest the owner's current sector,
// searching outward one sector at a time and checking a randomly chosen side first. The reserved point is a
// random bearing inside the zone at the owner's strafe distance.
//
// Precondition: AnyZoneAvailable() should be true; a failed search is a caller contract violation.
// Postcondition: Returns the reserved zone and true, or nil and false if no zone of the band is available.
func (r *Reservation) ReserveClosestAvailable() (*zone.Zone, bool) {
	band := r.owner.class.Band()
	if band == zone.BandNone {
		return nil, false
	}
	n := r.grid.SectorCount()
	origin := r.grid.SectorForAngle(space.Bearing(r.center, r.owner.position))

	z := r.grid.ZoneAt(origin, band)
	if !z.IsAvailable() {
		z = nil
		first := 1
		if dice.Coin(r.src) {
			first = -1
		}
		for offset := 1; offset <= n/2 && z == nil; offset++ {
			for _, side := range [2]int{first, -first} {
				candidate := r.grid.ZoneAt(origin+side*offset, band)
				if candidate.IsAvailable() {
					z = candidate
					break
				}
			}
		}
	}
	if z == nil {
		return nil, false
	}

	r.ClearReserved()
	if r.occupied != nil && r.occupied != z {
		r.occupied.Release(r.owner.ID)
	}
	r.reserving = true
	r.reserved = z
	r.occupied = z
	z.SetOccupant(r.owner.ID)
	r.targetAngle = dice.Range(r.src, z.AngleStart, z.AngleEnd)
	r.reservedPoint = r.grid.PointAt(r.center, r.targetAngle, r.owner.strafeDist)

	r.logger.Debug("zone reserved",
		zap.String("combatant", r.owner.Name),
		zap.Int("zone", z.Sector),
		zap.Stringer("band", z.Band),
	)
	return z, true
}

// TakeoverFrom evicts victim from the owner's current zone and claims it for the owner.
//
// Precondition: victim must be the current zone's occupant.
// Postcondition: Returns true iff victim lost the zone; victim's occupied claim (and its reservation, if it
// was the same zone) is cleared.
func (r *Reservation) TakeoverFrom(victim *Reservation) bool {
	z := r.current
	if z == nil || victim == nil || victim == r || !z.IsOccupiedBy(victim.owner.ID) {
		return false
	}
	if victim.reserved == z {
		victim.ClearReserved()
	}
	victim.ClearOccupied()
	z.Empty()
	return r.OccupyCurrent()
}

// ClearOccupied releases the occupied claim.
func (r *Reservation) ClearOccupied() {
	if r.occupied == nil {
		return
	}
	r.occupied.Release(r.owner.ID)
	r.occupied = nil
}

// ClearReserved releases the reserved claim and stops reserving.
//
// Postcondition: the reserved zone is empty unless another combatant holds it; an occupied claim on the same
// zone is dropped too.
func (r *Reservation) ClearReserved() {
	if r.reserved != nil {
		r.reserved.Release(r.owner.ID)
		if r.occupied == r.reserved {
			r.occupied = nil
		}
		r.reserved = nil
	}
	r.reserving = false
}

// Reset releases every claim and forgets the current zone.
func (r *Reservation) Reset() {
	r.ClearReserved()
	r.ClearOccupied()
	r.current = nil
}

// Current returns the zone the owner is geometrically inside, or nil.
func (r *Reservation) Current() *zone.Zone { return r.current }

// Occupied returns the zone the owner has claimed, or nil.
func (r *Reservation) Occupied() *zone.Zone { return r.occupied }

// Reserved returns the zone the owner is travelling to, or nil.
func (r *Reservation) Reserved() *zone.Zone { return r.reserved }

// ReservedPoint returns the destination inside the reserved zone.
func (r *Reservation) ReservedPoint() space.Vec2 { return r.reservedPoint }

// IsReserving reports whether the owner is travelling to a reserved zone.
func (r *Reservation) IsReserving() bool { return r.reserving }

// IsInOccupiedZone reports whether the owner is inside the zone it has claimed.
func (r *Reservation) IsInOccupiedZone() bool {
	return r.current != nil && r.current == r.occupied
}

// IsCurrentZoneAvailable reports whether the owner stands in an unclaimed, unobstructed zone.
func (r *Reservation) IsCurrentZoneAvailable() bool {
	return r.current != nil && r.current.IsAvailable()
}

// IsCurrentZoneMatchingBand reports whether the owner stands in a zone of its classification's band.
func (r *Reservation) IsCurrentZoneMatchingBand() bool {
	return r.current != nil && r.current.Band == r.owner.class.Band()
}

// AnyZoneAvailable reports whether any zone of the owner's band can be claimed.
func (r *Reservation) AnyZoneAvailable() bool {
	return r.grid.AnyAvailable(r.owner.class.Band())
}

// Consistent reports whether the back-references hold: the occupied zone names the owner, and a reserved
// zone is also the occupied zone.
func (r *Reservation) Consistent() bool {
	if r.occupied != nil && !r.occupied.IsOccupiedBy(r.owner.ID) {
		return false
	}
	if r.reserving && r.reserved != r.occupied {
		return false
	}
	return true
}

// occupantOfCurrent returns the handle holding the current zone, or uuid.Nil.
func (r *Reservation) occupantOfCurrent() uuid.UUID {
	if r.current == nil {
		return uuid.Nil
	}
	return r.current.Occupant()
}
