// Package space provides ground-plane vector math for the encounter simulation.
//
// Coordinates are (X, Y) on the ground plane with +Y as "forward". Bearings are measured in degrees
// clockwise from +Y, so DirFromAngle(0) == (0, 1) and DirFromAngle(90) == (1, 0).
package space

import (
	"fmt"
	"math"
)

// Vec2 is a point or direction on the ground plane.
type Vec2 struct {
	X float64
	Y float64
}

// V is shorthand for Vec2{X: x, Y: y}.
func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// LenSq returns the squared length of v.
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }

// Len returns the length of v.
func (v Vec2) Len() float64 { return math.Sqrt(v.LenSq()) }

// DistSq returns the squared distance between v and o.
func (v Vec2) DistSq(o Vec2) float64 { return v.Sub(o).LenSq() }

// Dist returns the distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Normalize returns v scaled to unit length.
//
// Postcondition: Returns the zero vector when v has zero length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Left returns v rotated 90 degrees counter-clockwise: the left-hand side of an observer facing along v.
func (v Vec2) Left() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Right returns v rotated 90 degrees clockwise.
func (v Vec2) Right() Vec2 { return Vec2{X: v.Y, Y: -v.X} }

// String formats v as (x, y) with two decimals.
func (v Vec2) String() string { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

// IsZero reports whether v is the zero vector.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// WithinSq reports whether v lies within dist of o (inclusive), compared on squared lengths.
func (v Vec2) WithinSq(o Vec2, dist float64) bool {
	return v.DistSq(o) <= dist*dist
}

// DirFromAngle returns the unit direction for a bearing in degrees.
func DirFromAngle(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	return Vec2{X: math.Sin(rad), Y: math.Cos(rad)}
}

// Bearing returns the bearing in degrees of to as seen from from, in (-180, 180].
//
// Postcondition: Returns 0 when from == to.
func Bearing(from, to Vec2) float64 {
	d := to.Sub(from)
	if d.IsZero() {
		return 0
	}
	return math.Atan2(d.X, d.Y) * 180 / math.Pi
}

// NormalizeAngle wraps deg into [0, 360).
//
// Postcondition: 0 <= result < 360.
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// AngleBetween returns the unsigned angle in degrees between directions a and b, in [0, 180].
//
// Postcondition: Returns 0 when either vector has zero length.
func AngleBetween(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c) * 180 / math.Pi
}
