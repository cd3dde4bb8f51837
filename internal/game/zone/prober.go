package zone

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Walkability answers whether a point resolves to traversable ground.
type Walkability interface {
	// IsPointWalkable reports whether p lies on traversable ground within tolerance.
	IsPointWalkable(p space.Vec2, tolerance float64) bool
}

// ProbeSpec configures the sample points of an obstruction probe.
type ProbeSpec struct {
	// AngleBuffer insets corner samples from the zone's angular edges, in degrees.
	AngleBuffer float64
	// DistBuffer insets corner samples from the zone's radial edges.
	DistBuffer float64
	// Tolerance is the search radius handed to the walkability query.
	Tolerance float64
}

// Prober refreshes zone obstruction one zone per tick, round-robin over Grid.Zones().
//
// Invariant: after len(Grid.Zones()) consecutive ticks every zone has been probed at least once.
type Prober struct {
	grid   *Grid
	walk   Walkability
	spec   ProbeSpec
	cursor int
	logger *zap.Logger
}

// NewProber creates a Prober starting at the first zone.
//
// Precondition: grid and walk must be non-nil.
func NewProber(grid *Grid, walk Walkability, spec ProbeSpec, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{grid: grid, walk: walk, spec: spec, logger: logger}
}

// Cursor returns the index of the zone the next Tick will probe.
func (p *Prober) Cursor() int { return p.cursor }

// Tick probes the zone at the cursor and advances the cursor, wrapping to 0.
//
// Postcondition: Returns the probed zone; its obstructed flag reflects the current surroundings of center.
func (p *Prober) Tick(center space.Vec2) *Zone {
	zones := p.grid.Zones()
	z := zones[p.cursor]
	p.Probe(z, center)
	p.cursor = (p.cursor + 1) % len(zones)
	return z
}

// Probe refreshes a single zone. The zone is obstructed if any sample point is not walkable.
//
// Postcondition: Returns the new obstructed flag.
func (p *Prober) Probe(z *Zone, center space.Vec2) bool {
	was := z.IsObstructed()
	obstructed := false
	for _, pt := range p.SamplePoints(z, center) {
		if !p.walk.IsPointWalkable(pt, p.spec.Tolerance) {
			obstructed = true
			break
		}
	}
	z.SetObstructed(obstructed)
	if was != obstructed {
		p.logger.Debug("zone obstruction changed",
			zap.Int("sector", z.Sector),
			zap.Stringer("band", z.Band),
			zap.Bool("obstructed", obstructed),
		)
	}
	return obstructed
}

// SamplePoints returns the four inset corners of the zone followed by its centroid.
func (p *Prober) SamplePoints(z *Zone, center space.Vec2) [5]space.Vec2 {
	near := z.DistStart + p.spec.DistBuffer
	far := z.DistEnd - p.spec.DistBuffer
	left := z.AngleStart + p.spec.AngleBuffer
	right := z.AngleEnd - p.spec.AngleBuffer
	return [5]space.Vec2{
		p.grid.PointAt(center, left, near),
		p.grid.PointAt(center, left, far),
		p.grid.PointAt(center, right, near),
		p.grid.PointAt(center, right, far),
		p.grid.PointAt(center, z.CenterAngle(), z.CenterDist()),
	}
}
