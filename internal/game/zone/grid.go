package zone

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Spec holds the geometry used to build a Grid.
type Spec struct {
	// SectorCount is the number of angular sectors per band.
	SectorCount int
	// ActiveMinDist is the inner radius of the active band.
	ActiveMinDist float64
	// ActiveMaxDist is the boundary between the active and passive bands.
	ActiveMaxDist float64
	// PassiveMaxDist is the outer radius of the passive band.
	PassiveMaxDist float64
}

// Validate checks the grid geometry.
//
// Postcondition: nil return guarantees SectorCount >= 1 and 0 <= ActiveMinDist < ActiveMaxDist < PassiveMaxDist.
func (s Spec) Validate() error {
	if s.SectorCount < 1 {
		return fmt.Errorf("sector count must be >= 1, got %d", s.SectorCount)
	}
	if s.ActiveMinDist < 0 {
		return fmt.Errorf("active min dist must be >= 0, got %v", s.ActiveMinDist)
	}
	if s.ActiveMinDist >= s.ActiveMaxDist {
		return fmt.Errorf("active min dist %v must be below active max dist %v", s.ActiveMinDist, s.ActiveMaxDist)
	}
	if s.ActiveMaxDist >= s.PassiveMaxDist {
		return fmt.Errorf("active max dist %v must be below passive max dist %v", s.ActiveMaxDist, s.PassiveMaxDist)
	}
	return nil
}

// Grid owns every zone of both bands.
//
// Invariant: len(Zones()) == 2*SectorCount; each zone spans 360/SectorCount degrees and sector 0 is centered on bearing 0.
type Grid struct {
	spec    Spec
	width   float64
	half    float64
	active  []*Zone
	passive []*Zone
	all     []*Zone
}

// NewGrid builds SectorCount active zones over [ActiveMinDist, ActiveMaxDist) and SectorCount passive zones
// over [ActiveMaxDist, PassiveMaxDist).
//
// Precondition: spec must satisfy Spec.Validate.
// Postcondition: Returns a Grid with empty, unobstructed zones, or a configuration error.
func NewGrid(spec Spec) (*Grid, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("zone.NewGrid: %w", err)
	}
	width := 360.0 / float64(spec.SectorCount)
	g := &Grid{
		spec:    spec,
		width:   width,
		half:    width * 0.5,
		active:  make([]*Zone, spec.SectorCount),
		passive: make([]*Zone, spec.SectorCount),
	}
	for i := 0; i < spec.SectorCount; i++ {
		start := float64(i)*width - g.half
		end := float64(i+1)*width - g.half
		g.active[i] = &Zone{
			Sector: i, Band: BandActive,
			AngleStart: start, AngleEnd: end,
			DistStart: spec.ActiveMinDist, DistEnd: spec.ActiveMaxDist,
		}
		g.passive[i] = &Zone{
			Sector: i, Band: BandPassive,
			AngleStart: start, AngleEnd: end,
			DistStart: spec.ActiveMaxDist, DistEnd: spec.PassiveMaxDist,
		}
	}
	g.all = make([]*Zone, 0, 2*spec.SectorCount)
	g.all = append(g.all, g.active...)
	g.all = append(g.all, g.passive...)
	return g, nil
}

// Spec returns the geometry the grid was built from.
func (g *Grid) Spec() Spec { return g.spec }

// SectorCount returns the number of sectors per band.
func (g *Grid) SectorCount() int { return g.spec.SectorCount }

// SectorWidth returns the bearing span of each sector in degrees.
func (g *Grid) SectorWidth() float64 { return g.width }

// SectorForAngle maps a bearing to its sector index. The half-sector offset compensates for sector 0
// being centered on bearing 0.
//
// Postcondition: 0 <= result < SectorCount.
func (g *Grid) SectorForAngle(angle float64) int {
	a := space.NormalizeAngle(angle + g.half)
	idx := int(math.Floor(a / g.width))
	if idx >= g.spec.SectorCount {
		idx = g.spec.SectorCount - 1
	}
	return idx
}

// ZoneForAngleAndBand returns the zone of band that contains angle.
//
// Postcondition: Returns nil for BandNone.
func (g *Grid) ZoneForAngleAndBand(angle float64, band Band) *Zone {
	return g.ZoneAt(g.SectorForAngle(angle), band)
}

// ZoneAt returns the zone at sector (wrapped modulo SectorCount) in band.
//
// Postcondition: Returns nil for BandNone.
func (g *Grid) ZoneAt(sector int, band Band) *Zone {
	n := g.spec.SectorCount
	sector = ((sector % n) + n) % n
	switch band {
	case BandActive:
		return g.active[sector]
	case BandPassive:
		return g.passive[sector]
	default:
		return nil
	}
}

// BandForDistance returns the band whose ring contains dist. Anything closer than ActiveMaxDist belongs to
// the active band.
//
// Postcondition: Returns BandNone at or beyond PassiveMaxDist.
func (g *Grid) BandForDistance(dist float64) Band {
	switch {
	case dist < g.spec.ActiveMaxDist:
		return BandActive
	case dist < g.spec.PassiveMaxDist:
		return BandPassive
	default:
		return BandNone
	}
}

// Locate returns the zone geometrically containing pos around center, or nil when pos lies outside
// every band.
func (g *Grid) Locate(pos, center space.Vec2) *Zone {
	band := g.BandForDistance(pos.Dist(center))
	if band == BandNone {
		return nil
	}
	return g.ZoneForAngleAndBand(space.Bearing(center, pos), band)
}

// PointAt returns the world position at bearing angle and distance dist from center.
func (g *Grid) PointAt(center space.Vec2, angle, dist float64) space.Vec2 {
	return center.Add(space.DirFromAngle(angle).Scale(dist))
}

// AnyAvailable reports whether any zone of band is unoccupied and unobstructed.
//
// Postcondition: Returns false for BandNone.
func (g *Grid) AnyAvailable(band Band) bool {
	for _, z := range g.Band(band) {
		if z.IsAvailable() {
			return true
		}
	}
	return false
}

// Band returns the zones of band in sector order.
//
// Postcondition: Returns nil for BandNone.
func (g *Grid) Band(band Band) []*Zone {
	switch band {
	case BandActive:
		return g.active
	case BandPassive:
		return g.passive
	default:
		return nil
	}
}

// Zones returns every zone: active band first, then passive band.
func (g *Grid) Zones() []*Zone { return g.all }

// OccupiedCount returns the number of zones that currently have an occupant.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, z := range g.all {
		if z.IsOccupied() {
			n++
		}
	}
	return n
}

// ClearAll empties every zone; obstruction flags are left as probed.
func (g *Grid) ClearAll() {
	for _, z := range g.all {
		z.Empty()
	}
}
