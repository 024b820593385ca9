package shadow

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// splitRatioStep is the ratio between consecutive cascade split distances.
const splitRatioStep = 0.4

// minCascadeExtent is the smallest width, height and depth of a cascade box in world units.
const minCascadeExtent = 1.0

// CascadeBox is the light-space orthographic volume of one cascade. Left/Right/Bottom/Top are
// light-space X/Y extents; Near/Far are distances along the light's -Z axis.
type CascadeBox struct {
	Left   float32
	Right  float32
	Bottom float32
	Top    float32
	Near   float32
	Far    float32
}

// SplitRatios returns the fraction of the view depth range each cascade ends at, nearest first.
// The farthest cascade ends at 1 and each nearer one at 0.4 times the next.
//
// Parameters:
//   - n: the cascade count
//
// Returns:
//   - []float32: n strictly increasing ratios
func SplitRatios(n int) []float32 {
	ratios := make([]float32, n)
	ratio := float32(1)
	for i := n - 1; i >= 0; i-- {
		ratios[i] = ratio
		ratio *= splitRatioStep
	}
	return ratios
}

// SplitDistance interpolates a split ratio into a view distance.
//
// Parameters:
//   - near: the view camera near distance
//   - far: the view camera far distance
//   - ratio: the split ratio
//
// Returns:
//   - float32: the split distance
func SplitDistance(near, far, ratio float32) float32 {
	return near + ratio*(far-near)
}

// SnapToTexel floors a light-space offset to the texel grid of a tile covering extent world units.
// A camera moving by less than a texel keeps the same snapped offset, which keeps shadow edges
// from shimmering.
//
// Parameters:
//   - value: the light-space offset
//   - extent: the world-space size the tile covers along the same axis
//   - tileSize: the tile size in texels
//
// Returns:
//   - float32: the snapped offset
func SnapToTexel(value, extent float32, tileSize uint32) float32 {
	if extent <= 0 || tileSize == 0 {
		return value
	}
	snap := float32(tileSize) / extent
	return math32.Floor(value*snap) / snap
}

// SliceBounds returns the light-space box of the part of a view frustum between its near plane
// and ratio of the way to its far plane.
//
// Parameters:
//   - corners: the view frustum corners, near plane first
//   - lightInverse: the world to light-space matrix
//   - ratio: the split ratio of the slice's far end
//
// Returns:
//   - common.AABB: the light-space bounds
func SliceBounds(corners [8]mgl32.Vec3, lightInverse mgl32.Mat4, ratio float32) common.AABB {
	box := common.EmptyAABB()
	for i := 0; i < 4; i++ {
		near := corners[i]
		far := near.Add(corners[i+4].Sub(near).Mul(ratio))
		box = box.GrowPoint(common.TransformPoint(lightInverse, near))
		box = box.GrowPoint(common.TransformPoint(lightInverse, far))
	}
	return box
}

// FitCascadeBox fits a cascade's orthographic volume to its view slice and the casters.
//
// The slice's depth is clamped to minZ, its X/Y extents are intersected with the casters, the
// width and height are rounded up to whole world units (at least one) and the left/bottom
// offsets are snapped to the texel grid. The near plane is pulled back to the casters nearest
// the light so that geometry between the light and the view still casts.
//
// Parameters:
//   - slice: the light-space bounds of the view slice
//   - casters: the light-space bounds of the casters; empty means no clipping against casters
//   - minZ: the lowest light-space Z of the whole view frustum
//   - tileSize: the tile size in texels
//
// Returns:
//   - CascadeBox: the fitted volume
func FitCascadeBox(slice, casters common.AABB, minZ float32, tileSize uint32) CascadeBox {
	minV, maxV := slice.Min, slice.Max
	minV[2] = math32.Max(minV[2], minZ)

	left, right := minV[0], maxV[0]
	bottom, top := minV[1], maxV[1]
	nearZ := maxV[2]
	if !casters.IsEmpty() && !casters.IsInfinite() {
		left = math32.Max(left, casters.Min[0])
		right = math32.Min(right, casters.Max[0])
		bottom = math32.Max(bottom, casters.Min[1])
		top = math32.Min(top, casters.Max[1])
		nearZ = casters.Max[2]
	}

	width := math32.Max(math32.Ceil(right-left), minCascadeExtent)
	height := math32.Max(math32.Ceil(top-bottom), minCascadeExtent)
	left = SnapToTexel(left, width, tileSize)
	bottom = SnapToTexel(bottom, height, tileSize)

	box := CascadeBox{
		Left:   left,
		Right:  left + width,
		Bottom: bottom,
		Top:    bottom + height,
		Near:   -nearZ,
		Far:    -minV[2],
	}
	if box.Far-box.Near < minCascadeExtent {
		box.Far = box.Near + minCascadeExtent
	}
	return box
}

// AtlasUVTransform returns the matrix taking a cascade's clip space to its tile of the atlas in
// texture coordinates: X and Y from [-1, 1] to [0, 1] with V pointing down, then scaled and offset
// into the tile. Depth passes through unchanged.
//
// Parameters:
//   - tile: the tile index
//   - cols: the atlas width in tiles
//   - rows: the atlas height in tiles
//
// Returns:
//   - mgl32.Mat4: the transform
func AtlasUVTransform(tile, cols, rows int) mgl32.Mat4 {
	w := 1 / float32(max(cols, 1))
	h := 1 / float32(max(rows, 1))
	col := float32(tile % 2)
	row := float32(tile / 2)
	return mgl32.Mat4{
		0.5 * w, 0, 0, 0,
		0, -0.5 * h, 0, 0,
		0, 0, 1, 0,
		(0.5 + col) * w, (0.5 + row) * h, 0, 1,
	}
}
