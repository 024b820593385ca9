package render

// CollectorBuilderOption is a function that configures a collector during construction.
// The second argument is the arena capacity, applied after all options run.
type CollectorBuilderOption func(c *collector, capacity *int)

// WithItemCapacity overrides the render context's arena capacity.
//
// Parameters:
//   - capacity: the initial number of render item slots
//
// Returns:
//   - CollectorBuilderOption: option function to apply
func WithItemCapacity(capacity int) CollectorBuilderOption {
	return func(_ *collector, c *int) {
		*c = capacity
	}
}

// WithCullingDisabled makes every visible node qualify regardless of the camera frustum.
// Useful when debugging culling or for cameras whose frustum is not yet valid.
//
// Parameters:
//   - disabled: true to skip frustum tests
//
// Returns:
//   - CollectorBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) CollectorBuilderOption {
	return func(c *collector, _ *int) {
		c.cullingDisabled = disabled
	}
}
