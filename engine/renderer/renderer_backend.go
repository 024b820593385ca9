package renderer

// BackendType identifies the implementation behind a DepthAtlas.
type BackendType int

const (
	// BackendTypeAuto picks the WebGPU backend when the render context carries a device and queue,
	// and the headless backend otherwise.
	BackendTypeAuto BackendType = iota

	// BackendTypeWGPU renders cascades into a Depth32Float texture with WebGPU.
	BackendTypeWGPU

	// BackendTypeHeadless records the allocations and passes it is asked for without touching a GPU.
	BackendTypeHeadless
)

// String returns the backend name used in logs.
func (t BackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return "auto"
	}
}
