package effect

// effect is the implementation of the Effect interface.
type effect struct {
	name             string
	enabled          bool
	needsNormalDepth bool
	needsBackbuffer  bool
}

// Effect defines the contract a post-processing effect exposes to frame collection.
// The effect's own passes (fog, bloom, SSAO...) run outside this package; collection only
// needs to know which auxiliary buffers the effect reads.
type Effect interface {
	// Name retrieves the effect identifier.
	//
	// Returns:
	//   - string: the name of the effect
	Name() string

	// Enabled reports whether the effect runs this frame. Disabled effects are not collected.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// NeedsNormalDepth reports whether the effect reads the normal+depth buffer.
	//
	// Returns:
	//   - bool: true if the buffer must be generated
	NeedsNormalDepth() bool

	// NeedsBackbuffer reports whether the effect reads a copy of the scene color.
	//
	// Returns:
	//   - bool: true if the copy must be made
	NeedsBackbuffer() bool

	// SetEnabled toggles the effect.
	//
	// Parameters:
	//   - enabled: true to run the effect
	SetEnabled(enabled bool)
}

var _ Effect = &effect{}

// NewEffect creates an enabled effect descriptor.
//
// Parameters:
//   - options: variadic list of EffectBuilderOption functions
//
// Returns:
//   - Effect: the new effect
func NewEffect(options ...EffectBuilderOption) Effect {
	e := &effect{enabled: true}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *effect) Name() string {
	return e.name
}

func (e *effect) Enabled() bool {
	return e.enabled
}

func (e *effect) NeedsNormalDepth() bool {
	return e.needsNormalDepth
}

func (e *effect) NeedsBackbuffer() bool {
	return e.needsBackbuffer
}

func (e *effect) SetEnabled(enabled bool) {
	e.enabled = enabled
}
