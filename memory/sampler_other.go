//go:build !linux && !darwin

package memory

// DefaultSampler returns the most precise sampler for the platform.
func DefaultSampler() Sampler {
	return RuntimeSampler{}
}
