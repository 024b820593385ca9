package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
// The normal points into the positive ("inside") half-space.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from a point to the plane.
// Positive values lie on the inside.
//
// Parameters:
//   - pt: the point to test
//
// Returns:
//   - float32: the signed distance in world units (for a normalized plane)
func (p Plane) SignedDistance(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.Distance
}

// PlaneFromPointNormal builds a normalized plane passing through a point.
//
// Parameters:
//   - point: any point on the plane
//   - normal: the inward-facing normal (normalized by this function)
//
// Returns:
//   - Plane: the plane
func PlaneFromPointNormal(point, normal mgl32.Vec3) Plane {
	n := normalizeOrZero(normal)
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// Frustum represents the six planes of a view frustum for culling plus its eight corners.
// Planes are oriented so that positive half-space is inside the frustum.
// Corners 0-3 lie on the near plane and 4-7 on the far plane; corner i+4 is the far end
// of the frustum edge that starts at corner i.
type Frustum struct {
	Planes  [6]Plane // Left, Right, Bottom, Top, Near, Far
	Corners [8]mgl32.Vec3
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ndcCorners are the clip-space corners in WebGPU convention, near (z=0) then far (z=1).
var ndcCorners = [8]mgl32.Vec3{
	{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// ExtractFrustumFromMatrix extracts frustum planes and corners from a view-projection matrix.
// The matrix should be the combined Projection * View matrix in WebGPU clip space (depth in [0, 1]).
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the column-major view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes; corners are left at zero if the
//     matrix is singular
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	// For column-major matrix M, element M[row][col] is at index col*4 + row
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj[r], viewProj[4+r], viewProj[8+r], viewProj[12+r]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	f.Planes[FrustumLeft] = planeFromRow(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromRow(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromRow(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromRow(r3.Sub(r1))
	// Depth in [0, 1]: near is row2 alone rather than row3 + row2.
	f.Planes[FrustumNear] = planeFromRow(r2)
	f.Planes[FrustumFar] = planeFromRow(r3.Sub(r2))

	if viewProj.Det() == 0 {
		return f
	}
	inv := viewProj.Inv()
	for i, c := range ndcCorners {
		f.Corners[i] = mgl32.TransformCoordinate(c, inv)
	}

	return f
}

// planeFromRow normalizes a plane given as (a, b, c, d) so that the normal has unit length.
func planeFromRow(v mgl32.Vec4) Plane {
	p := Plane{Normal: mgl32.Vec3{v[0], v[1], v[2]}, Distance: v[3]}
	length := p.Normal.Len()
	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
	return p
}

// LightSpaceSidePlanes returns the four world-space side planes (left, right, bottom, top) of an
// axis-aligned box expressed in a light's local space. Points inside the box's X/Y extents lie on
// the positive side of all four planes, regardless of their depth.
//
// Parameters:
//   - lightWorld: the light's world matrix (rotation + translation)
//   - minX, maxX, minY, maxY: the box extents in light space
//
// Returns:
//   - [4]Plane: the normalized planes in world space
func LightSpaceSidePlanes(lightWorld mgl32.Mat4, minX, maxX, minY, maxY float32) [4]Plane {
	right := normalizeOrZero(mgl32.Vec3{lightWorld[0], lightWorld[1], lightWorld[2]})
	up := normalizeOrZero(mgl32.Vec3{lightWorld[4], lightWorld[5], lightWorld[6]})
	origin := Translation(lightWorld)
	ro := right.Dot(origin)
	uo := up.Dot(origin)

	// Scale on the light transform stretches light-space units.
	sx := mgl32.Vec3{lightWorld[0], lightWorld[1], lightWorld[2]}.Len()
	sy := mgl32.Vec3{lightWorld[4], lightWorld[5], lightWorld[6]}.Len()

	return [4]Plane{
		{Normal: right, Distance: -(ro + minX*sx)},
		{Normal: right.Mul(-1), Distance: ro + maxX*sx},
		{Normal: up, Distance: -(uo + minY*sy)},
		{Normal: up.Mul(-1), Distance: uo + maxY*sy},
	}
}

// IntersectsPlanes reports whether an AABB is not entirely on the negative side of any of the
// given planes. This is the conservative convex-solid test used for culling: boxes straddling a
// plane count as intersecting.
//
// Parameters:
//   - b: the bounding box
//   - planes: the planes bounding a convex solid, normals pointing inward
//
// Returns:
//   - bool: false only if the box lies entirely outside at least one plane
func IntersectsPlanes(b AABB, planes []Plane) bool {
	if b.IsEmpty() {
		return false
	}
	if b.IsInfinite() {
		return true
	}
	center := b.Center()
	half := b.HalfExtents()
	for _, p := range planes {
		// projected radius of the box onto the plane normal
		r := half[0]*math32.Abs(p.Normal[0]) + half[1]*math32.Abs(p.Normal[1]) + half[2]*math32.Abs(p.Normal[2])
		if p.SignedDistance(center) < -r {
			return false
		}
	}
	return true
}
