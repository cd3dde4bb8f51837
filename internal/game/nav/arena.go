// Package nav is a kinematic navigator for combatants: agents walk straight toward their destinations across an
// arena whose walkable ground is a bounds polygon minus obstacle polygons.
package nav

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Arena is the walkable ground of an encounter.
//
// Invariant: bounds is a non-empty polygon; every obstacle is a polygon or multipolygon.
type Arena struct {
	bounds    geom.Geometry
	obstacles []geom.Geometry
}

// NewArena parses the arena bounds and obstacles from WKT.
//
// Precondition: boundsWKT must be a POLYGON; each obstacle must be a POLYGON or MULTIPOLYGON.
// Postcondition: Returns the arena or a parse error naming the offending geometry.
func NewArena(boundsWKT string, obstaclesWKT []string) (*Arena, error) {
	bounds, err := parseArea(boundsWKT)
	if err != nil {
		return nil, fmt.Errorf("nav.NewArena: bounds: %w", err)
	}
	a := &Arena{bounds: bounds}
	for i, wkt := range obstaclesWKT {
		g, err := parseArea(wkt)
		if err != nil {
			return nil, fmt.Errorf("nav.NewArena: obstacle %d: %w", i, err)
		}
		a.obstacles = append(a.obstacles, g)
	}
	return a, nil
}

func parseArea(wkt string) (geom.Geometry, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return geom.Geometry{}, err
	}
	if !g.IsPolygon() && !g.IsMultiPolygon() {
		return geom.Geometry{}, fmt.Errorf("expected an area geometry, got %s", g.Type())
	}
	if g.IsEmpty() {
		return geom.Geometry{}, fmt.Errorf("area is empty")
	}
	return g, nil
}

// Obstacles returns the number of obstacle polygons.
func (a *Arena) Obstacles() int { return len(a.obstacles) }

// IsPointWalkable reports whether p is within tolerance of the bounds and no deeper than tolerance inside any
// obstacle. Points with NaN or infinite coordinates are never walkable.
func (a *Arena) IsPointWalkable(p space.Vec2, tolerance float64) bool {
	pt, err := toPoint(p)
	if err != nil {
		return false
	}
	if !geom.Intersects(a.bounds, pt) {
		d, ok := geom.Distance(a.bounds, pt)
		if !ok || d > tolerance {
			return false
		}
	}
	for _, o := range a.obstacles {
		if !geom.Intersects(o, pt) {
			continue
		}
		depth, ok := geom.Distance(o.Boundary(), pt)
		if !ok || depth > tolerance {
			return false
		}
	}
	return true
}

func toPoint(p space.Vec2) (geom.Geometry, error) {
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}})
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("point %s: %w", p, err)
	}
	return pt.AsGeometry(), nil
}
