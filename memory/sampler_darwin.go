//go:build darwin

package memory

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DarwinSampler uses the Go runtime for RSS and sysctl for the machine size.
type DarwinSampler struct {
	RuntimeSampler
}

// DefaultSampler returns the most precise sampler for the platform.
func DefaultSampler() Sampler {
	return DarwinSampler{}
}

// SystemTotal implements Sampler.
func (DarwinSampler) SystemTotal() (uint64, error) {
	total, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSamplerUnavailable, err)
	}
	return total, nil
}
