package memory

import (
	"errors"
	"runtime/metrics"
)

// ErrSamplerUnavailable is returned when the platform offers no measurement.
var ErrSamplerUnavailable = errors.New("memory sampler unavailable")

// Sampler measures process memory in O(1).
type Sampler interface {
	// RSS returns the resident set size of the current process in bytes.
	RSS() (uint64, error)
	// SystemTotal returns the total physical memory of the machine in bytes.
	SystemTotal() (uint64, error)
}

// RuntimeSampler approximates RSS with the memory the Go runtime has mapped
// and not returned to the OS. It misses cgo and other foreign allocations.
type RuntimeSampler struct{}

var runtimeMetrics = []string{
	"/memory/classes/total:bytes",
	"/memory/classes/heap/released:bytes",
}

// RSS implements Sampler.
func (RuntimeSampler) RSS() (uint64, error) {
	samples := make([]metrics.Sample, len(runtimeMetrics))
	for i, name := range runtimeMetrics {
		samples[i].Name = name
	}
	metrics.Read(samples)

	for _, s := range samples {
		if s.Value.Kind() != metrics.KindUint64 {
			return 0, ErrSamplerUnavailable
		}
	}

	total := samples[0].Value.Uint64()
	released := samples[1].Value.Uint64()
	if released > total {
		return 0, nil
	}
	return total - released, nil
}

// SystemTotal implements Sampler. The runtime does not know the machine size.
func (RuntimeSampler) SystemTotal() (uint64, error) {
	return 0, ErrSamplerUnavailable
}

// SamplerFunc adapts a function to a Sampler with an unknown system total.
type SamplerFunc func() (uint64, error)

// RSS implements Sampler.
func (f SamplerFunc) RSS() (uint64, error) { return f() }

// SystemTotal implements Sampler.
func (SamplerFunc) SystemTotal() (uint64, error) { return 0, ErrSamplerUnavailable }
