package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/render_context"
	"github.com/Carmen-Shannon/oxy-render/engine/renderer"
	"github.com/Carmen-Shannon/oxy-render/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxCascades is the largest cascade count the 2x2 atlas tiling holds.
const MaxCascades = render_context.MaxCascades

// lightFacingEpsilon is how far below zero dot(plane normal, light direction) must be for a view
// plane to bound the casters.
const lightFacingEpsilon = -0.001

// AtlasState tracks whether the atlas layout and storage match the cascade settings.
type AtlasState int

const (
	// AtlasInvalid means the settings changed; the layout is recomputed by the next Prepare.
	AtlasInvalid AtlasState = iota
	// AtlasPending means the layout is current but the storage is allocated by the next Execute.
	AtlasPending
	// AtlasClean means layout and storage are current.
	AtlasClean
)

// CascadeShadowMapRenderer renders the cascaded shadow map of one directional light.
//
// A frame is split in two: Prepare does all CPU work (split distances, caster collection, cascade
// fitting and shadow matrices) and reads the scene without modifying it, so the Prepare calls of
// several lights may run concurrently. Execute then issues the depth passes into the atlas and must
// run on the thread that owns the GPU queue. Render does both.
type CascadeShadowMapRenderer interface {
	light.ShadowMapRenderer

	// Prepare computes this frame's cascades for a view camera.
	// The camera must be updated and the scene's world transforms resolved.
	//
	// Parameters:
	//   - view: the viewing camera
	//   - s: the scene
	Prepare(view camera.Camera, s *scene.Scene)

	// Execute allocates the atlas if needed, then clears it and draws every cascade's casters
	// into its tile.
	//
	// Returns:
	//   - error: an error if the atlas could not be allocated or drawn to
	Execute() error

	// Render runs Prepare and Execute.
	//
	// Parameters:
	//   - view: the viewing camera
	//   - s: the scene
	//
	// Returns:
	//   - error: an error from Execute
	Render(view camera.Camera, s *scene.Scene) error

	// SetCascadeCount changes the number of cascades, clamped to [1, MaxCascades].
	// The atlas is rebuilt on the next frame.
	//
	// Parameters:
	//   - n: the cascade count
	SetCascadeCount(n int)

	// SetShadowMapSize changes the size of one cascade tile. The atlas is rebuilt on the next frame.
	//
	// Parameters:
	//   - size: the tile width and height in texels
	SetShadowMapSize(size uint32)

	// ShadowMapSize returns the size of one cascade tile.
	//
	// Returns:
	//   - uint32: the tile width and height in texels
	ShadowMapSize() uint32

	// SplitDistances returns the view distance every cascade ends at, nearest first.
	//
	// Returns:
	//   - []float32: a copy of the split distances
	SplitDistances() []float32

	// CascadeCamera returns the fitted orthographic camera of a cascade.
	//
	// Parameters:
	//   - cascade: the cascade index
	//
	// Returns:
	//   - camera.Camera: the camera, or nil for an out-of-range index
	CascadeCamera(cascade int) camera.Camera

	// Viewport returns the atlas tile of a cascade.
	//
	// Parameters:
	//   - cascade: the cascade index
	//
	// Returns:
	//   - renderer.Viewport: the tile, zero for an out-of-range index
	Viewport(cascade int) renderer.Viewport

	// AtlasSize returns the atlas size implied by the cascade count and tile size.
	//
	// Returns:
	//   - uint32: the width in texels
	//   - uint32: the height in texels
	AtlasSize() (uint32, uint32)

	// AtlasState returns the current atlas state.
	//
	// Returns:
	//   - AtlasState: the state
	AtlasState() AtlasState

	// Atlas returns the depth atlas the cascades are drawn into.
	//
	// Returns:
	//   - renderer.DepthAtlas: the atlas
	Atlas() renderer.DepthAtlas

	// Casters returns the caster collector holding the last Prepare's per-cascade lists.
	//
	// Returns:
	//   - CascadeCasterCollector: the collector
	Casters() CascadeCasterCollector

	// Release frees the atlas.
	Release()
}

type cascadeShadowMapRenderer struct {
	logger *zap.Logger
	light  light.Light
	atlas  renderer.DepthAtlas

	casters CascadeCasterCollector

	cascadeCount int
	tileSize     uint32
	state        AtlasState

	atlasWidth  uint32
	atlasHeight uint32
	viewports   [MaxCascades]renderer.Viewport
	uvTransform [MaxCascades]mgl32.Mat4

	splitRatios    []float32
	splitDistances [MaxCascades]float32
	cameras        [MaxCascades]camera.Camera
	shadowMatrices [MaxCascades]mgl32.Mat4

	cull      [MaxCascades]CascadeCull
	planes    [MaxCascades][]common.Plane
	aggregate []common.Plane
	viewCull  []common.Plane
	farPlane  common.Plane
	farCull   bool
	tiles     []renderer.Tile
}

var _ CascadeShadowMapRenderer = &cascadeShadowMapRenderer{}

// NewCascadeShadowMapRenderer creates a cascaded shadow renderer for a light and attaches it to
// the light as its shadow map renderer. Cascade count and tile size default to the render
// context's values; the atlas backend follows the context unless WithDepthAtlas is given.
//
// Parameters:
//   - rc: the render context
//   - l: the directional light that casts the shadows
//   - options: functional options to configure the renderer
//
// Returns:
//   - CascadeShadowMapRenderer: the renderer
func NewCascadeShadowMapRenderer(rc render_context.RenderContext, l light.Light, options ...CascadeShadowMapRendererBuilderOption) CascadeShadowMapRenderer {
	if l == nil {
		panic("shadow: a cascade shadow map renderer requires a light")
	}

	r := &cascadeShadowMapRenderer{
		logger:       rc.Logger().Named("shadow"),
		light:        l,
		cascadeCount: rc.Cascades(),
		tileSize:     rc.ShadowMapSize(),
	}
	for i := range MaxCascades {
		r.cameras[i] = camera.NewOrthographicCamera(camera.OrthoBounds{Left: -1, Right: 1, Bottom: -1, Top: 1}, 0, 1)
		r.shadowMatrices[i] = mgl32.Ident4()
		r.uvTransform[i] = mgl32.Ident4()
	}
	for _, option := range options {
		option(r)
	}

	if r.atlas == nil {
		r.atlas = renderer.NewDepthAtlas(rc, renderer.WithLabel("Cascade Shadow Atlas"))
	}
	if r.casters == nil {
		r.casters = NewCascadeCasterCollector(rc.ItemCapacity(), r.logger)
	}
	r.cascadeCount = r.clampCascades(r.cascadeCount)
	r.splitRatios = SplitRatios(r.cascadeCount)
	r.state = AtlasInvalid

	l.SetShadowMapRenderer(r)
	return r
}

func (r *cascadeShadowMapRenderer) clampCascades(n int) int {
	clamped := min(max(n, 1), MaxCascades)
	if clamped != n {
		r.logger.Debug("cascade count clamped", zap.Int("requested", n), zap.Int("cascades", clamped))
	}
	return clamped
}

func (r *cascadeShadowMapRenderer) Light() light.Light {
	return r.light
}

func (r *cascadeShadowMapRenderer) CascadeCount() int {
	return r.cascadeCount
}

func (r *cascadeShadowMapRenderer) ShadowMatrix(cascade int) mgl32.Mat4 {
	if cascade < 0 || cascade >= r.cascadeCount {
		return mgl32.Ident4()
	}
	return r.shadowMatrices[cascade]
}

func (r *cascadeShadowMapRenderer) SplitDistance(cascade int) float32 {
	if cascade < 0 || cascade >= r.cascadeCount {
		return 0
	}
	return r.splitDistances[cascade]
}

func (r *cascadeShadowMapRenderer) SplitDistances() []float32 {
	out := make([]float32, r.cascadeCount)
	copy(out, r.splitDistances[:r.cascadeCount])
	return out
}

func (r *cascadeShadowMapRenderer) CascadeCamera(cascade int) camera.Camera {
	if cascade < 0 || cascade >= r.cascadeCount {
		return nil
	}
	return r.cameras[cascade]
}

func (r *cascadeShadowMapRenderer) Viewport(cascade int) renderer.Viewport {
	if cascade < 0 || cascade >= r.cascadeCount {
		return renderer.Viewport{}
	}
	return r.viewports[cascade]
}

func (r *cascadeShadowMapRenderer) AtlasSize() (uint32, uint32) {
	return renderer.AtlasDimensions(r.cascadeCount, r.tileSize)
}

func (r *cascadeShadowMapRenderer) AtlasState() AtlasState {
	return r.state
}

func (r *cascadeShadowMapRenderer) Atlas() renderer.DepthAtlas {
	return r.atlas
}

func (r *cascadeShadowMapRenderer) Casters() CascadeCasterCollector {
	return r.casters
}

func (r *cascadeShadowMapRenderer) ShadowMapSize() uint32 {
	return r.tileSize
}

func (r *cascadeShadowMapRenderer) SetCascadeCount(n int) {
	n = r.clampCascades(n)
	if n == r.cascadeCount {
		return
	}
	r.cascadeCount = n
	r.splitRatios = SplitRatios(n)
	r.state = AtlasInvalid
}

func (r *cascadeShadowMapRenderer) SetShadowMapSize(size uint32) {
	if size == 0 || size == r.tileSize {
		return
	}
	r.tileSize = size
	r.state = AtlasInvalid
}

// updateLayout recomputes the tile viewports and clip to atlas UV transforms.
func (r *cascadeShadowMapRenderer) updateLayout() {
	r.atlasWidth, r.atlasHeight = renderer.AtlasDimensions(r.cascadeCount, r.tileSize)
	cols := int(r.atlasWidth / r.tileSize)
	rows := int(r.atlasHeight / r.tileSize)
	for i := range MaxCascades {
		r.viewports[i] = renderer.TileViewport(i, r.tileSize)
		r.uvTransform[i] = AtlasUVTransform(i, cols, rows)
	}
	r.state = AtlasPending
}

func (r *cascadeShadowMapRenderer) updateSplitDistances(near, far float32) {
	for i := 0; i < r.cascadeCount; i++ {
		r.splitDistances[i] = SplitDistance(near, far, r.splitRatios[i])
	}
}

func (r *cascadeShadowMapRenderer) Prepare(view camera.Camera, s *scene.Scene) {
	if r.state == AtlasInvalid {
		r.updateLayout()
	}

	lightWorld := r.light.WorldMatrix()
	lightDir := r.light.Direction()
	lightInverse := common.InverseAffine(lightWorld)
	frustum := view.Frustum()

	full := SliceBounds(frustum.Corners, lightInverse, 1)
	minZ := full.Min[2]

	r.updateSplitDistances(view.Near(), view.Far())
	r.updateViewCull(frustum, lightDir)
	r.aggregate = r.cullPlanes(r.aggregate, lightWorld, full, -1, view)

	var sliceBounds [MaxCascades]common.AABB
	for i := 0; i < r.cascadeCount; i++ {
		sliceBounds[i] = SliceBounds(frustum.Corners, lightInverse, r.splitRatios[i])
		r.planes[i] = r.cullPlanes(r.planes[i], lightWorld, sliceBounds[i], i, view)
		r.cull[i] = CascadeCull{Camera: r.cameras[i], Planes: r.planes[i]}
	}

	r.casters.Collect(s, r.aggregate, r.cull[:r.cascadeCount], lightDir)

	casterBounds := r.casters.Bounds().Transform(lightInverse)
	for i := r.cascadeCount - 1; i >= 0; i-- {
		box := FitCascadeBox(sliceBounds[i], casterBounds, minZ, r.tileSize)
		cam := r.cameras[i]
		cam.SetWorldMatrix(lightWorld)
		cam.SetOrthographic(camera.OrthoBounds{Left: box.Left, Right: box.Right, Bottom: box.Bottom, Top: box.Top}, box.Near, box.Far)
		cam.Update()
		r.shadowMatrices[i] = r.uvTransform[i].Mul4(cam.ViewProjectionMatrix())
	}
}

// updateViewCull selects the view frustum planes no caster beyond can shadow: those the light
// leaves the frustum through.
func (r *cascadeShadowMapRenderer) updateViewCull(frustum common.Frustum, lightDir mgl32.Vec3) {
	r.viewCull = r.viewCull[:0]
	r.farCull = false
	for i, p := range frustum.Planes {
		if p.Normal.Dot(lightDir) >= lightFacingEpsilon {
			continue
		}
		if i == common.FrustumFar {
			r.farCull = true
			continue
		}
		r.viewCull = append(r.viewCull, p)
	}
	r.farPlane = frustum.Planes[common.FrustumFar]
}

// cullPlanes appends the plane set of a light-space slice to dst: its four side planes plus the
// selected view planes. For cascade >= 0 a selected far plane moves to that cascade's split.
func (r *cascadeShadowMapRenderer) cullPlanes(dst []common.Plane, lightWorld mgl32.Mat4, slice common.AABB, cascade int, view camera.Camera) []common.Plane {
	sides := common.LightSpaceSidePlanes(lightWorld, slice.Min[0], slice.Max[0], slice.Min[1], slice.Max[1])
	dst = append(dst[:0], sides[:]...)
	dst = append(dst, r.viewCull...)
	if r.farCull {
		far := r.farPlane
		if cascade >= 0 {
			forward := view.Forward()
			split := view.Position().Add(forward.Mul(r.splitDistances[cascade]))
			far = common.PlaneFromPointNormal(split, forward.Mul(-1))
		}
		dst = append(dst, far)
	}
	return dst
}

func (r *cascadeShadowMapRenderer) Execute() error {
	if r.state == AtlasInvalid {
		return errors.New("failed to render cascades: Prepare was not called after the cascade settings changed")
	}
	if r.state == AtlasPending {
		if err := r.atlas.Allocate(r.atlasWidth, r.atlasHeight); err != nil {
			return fmt.Errorf("failed to allocate shadow atlas: %w", err)
		}
		r.state = AtlasClean
		r.logger.Debug("shadow atlas ready",
			zap.Int("cascades", r.cascadeCount),
			zap.Uint32("width", r.atlasWidth),
			zap.Uint32("height", r.atlasHeight))
	}

	r.tiles = r.tiles[:0]
	for i := 0; i < r.cascadeCount; i++ {
		r.tiles = append(r.tiles, renderer.Tile{
			Viewport:       r.viewports[i],
			ViewProjection: r.cameras[i].ViewProjectionMatrix(),
			Items:          r.casters.Items(i),
		})
	}
	if err := r.atlas.RenderTiles(r.tiles); err != nil {
		return fmt.Errorf("failed to render cascades: %w", err)
	}
	return nil
}

func (r *cascadeShadowMapRenderer) Render(view camera.Camera, s *scene.Scene) error {
	r.Prepare(view, s)
	return r.Execute()
}

func (r *cascadeShadowMapRenderer) Release() {
	r.atlas.Release()
	r.state = AtlasInvalid
}
