package effect

// EffectBuilderOption is a function that configures an effect during construction.
type EffectBuilderOption func(*effect)

// WithName sets the effect identifier.
//
// Parameters:
//   - name: the effect name
//
// Returns:
//   - EffectBuilderOption: a function that applies the name option
func WithName(name string) EffectBuilderOption {
	return func(e *effect) {
		e.name = name
	}
}

// WithNeedsNormalDepth marks the effect as reading the normal+depth buffer (fog, SSAO, outlines).
//
// Parameters:
//   - needs: true if the buffer is read
//
// Returns:
//   - EffectBuilderOption: a function that applies the option
func WithNeedsNormalDepth(needs bool) EffectBuilderOption {
	return func(e *effect) {
		e.needsNormalDepth = needs
	}
}

// WithNeedsBackbuffer marks the effect as reading the scene color.
//
// Parameters:
//   - needs: true if the scene color is read
//
// Returns:
//   - EffectBuilderOption: a function that applies the option
func WithNeedsBackbuffer(needs bool) EffectBuilderOption {
	return func(e *effect) {
		e.needsBackbuffer = needs
	}
}

// WithEnabled sets the initial enabled state.
//
// Parameters:
//   - enabled: true to run the effect
//
// Returns:
//   - EffectBuilderOption: a function that applies the option
func WithEnabled(enabled bool) EffectBuilderOption {
	return func(e *effect) {
		e.enabled = enabled
	}
}

// Fog returns a distance fog descriptor. Fog reconstructs view distance from the depth buffer.
//
// Returns:
//   - Effect: the fog effect
func Fog() Effect {
	return NewEffect(WithName("fog"), WithNeedsNormalDepth(true))
}
