//go:build linux

package memory

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

const statmPath = "/proc/self/statm"

// ProcSampler reads RSS from /proc/self/statm and the machine size from sysinfo(2).
type ProcSampler struct {
	pageSize uint64
}

// DefaultSampler returns the most precise sampler for the platform.
func DefaultSampler() Sampler {
	return &ProcSampler{pageSize: uint64(unix.Getpagesize())}
}

// RSS implements Sampler.
func (p *ProcSampler) RSS() (uint64, error) {
	data, err := os.ReadFile(statmPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSamplerUnavailable, err)
	}

	// size resident shared text lib data dt, all in pages
	fields := bytes.Fields(data)
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: malformed %s", ErrSamplerUnavailable, statmPath)
	}
	pages, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSamplerUnavailable, err)
	}
	return pages * p.pageSize, nil
}

// SystemTotal implements Sampler.
func (p *ProcSampler) SystemTotal() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSamplerUnavailable, err)
	}
	return uint64(info.Totalram) * uint64(info.Unit), nil
}
