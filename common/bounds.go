package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box. The zero value is not empty: use EmptyAABB for an
// accumulator that has not seen any volume yet.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3

	infinite bool
}

// EmptyAABB returns a box containing nothing. Growing it by any box yields that box.
func EmptyAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// InfiniteAABB returns a box that contains every point and intersects every convex solid.
func InfiniteAABB() AABB {
	inf := math32.Inf(1)
	return AABB{
		Min:      mgl32.Vec3{-inf, -inf, -inf},
		Max:      mgl32.Vec3{inf, inf, inf},
		infinite: true,
	}
}

// NewAABB creates a box from its corners.
//
// Parameters:
//   - min: the minimum corner
//   - max: the maximum corner
//
// Returns:
//   - AABB: the box
func NewAABB(min, max mgl32.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// AABBFromCenter creates a box from a center point and half extents.
//
// Parameters:
//   - center: the box center
//   - half: the half size along each axis
//
// Returns:
//   - AABB: the box
func AABBFromCenter(center, half mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// IsEmpty reports whether the box contains no volume at all.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// IsInfinite reports whether the box is unbounded.
func (b AABB) IsInfinite() bool {
	return b.infinite
}

// Center returns the box center. Infinite boxes report the origin.
func (b AABB) Center() mgl32.Vec3 {
	if b.infinite || b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents returns half the box size along each axis.
func (b AABB) HalfExtents() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Grow returns the smallest box containing both b and o.
//
// Parameters:
//   - o: the box to include
//
// Returns:
//   - AABB: the union
func (b AABB) Grow(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	if b.infinite || o.infinite {
		return InfiniteAABB()
	}
	return AABB{
		Min: mgl32.Vec3{math32.Min(b.Min[0], o.Min[0]), math32.Min(b.Min[1], o.Min[1]), math32.Min(b.Min[2], o.Min[2])},
		Max: mgl32.Vec3{math32.Max(b.Max[0], o.Max[0]), math32.Max(b.Max[1], o.Max[1]), math32.Max(b.Max[2], o.Max[2])},
	}
}

// GrowPoint returns the smallest box containing b and the point p.
func (b AABB) GrowPoint(p mgl32.Vec3) AABB {
	return b.Grow(AABB{Min: p, Max: p})
}

// Transform returns the axis-aligned box enclosing b after applying an affine matrix
// (Arvo's method). Empty and infinite boxes are returned unchanged.
//
// Parameters:
//   - m: the affine transform
//
// Returns:
//   - AABB: the transformed bounds
func (b AABB) Transform(m mgl32.Mat4) AABB {
	if b.IsEmpty() || b.infinite {
		return b
	}
	c := TransformPoint(m, b.Center())
	h := b.HalfExtents()
	var e mgl32.Vec3
	for row := 0; row < 3; row++ {
		e[row] = math32.Abs(m[row])*h[0] + math32.Abs(m[4+row])*h[1] + math32.Abs(m[8+row])*h[2]
	}
	return AABB{Min: c.Sub(e), Max: c.Add(e)}
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl32.Vec3) bool {
	if b.infinite {
		return true
	}
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}
