//go:build linux || darwin || freebsd

package blockmem

import (
	"errors"

	"golang.org/x/sys/unix"
)

// MmapSource allocates blocks as anonymous private mappings. A released
// block is unmapped immediately instead of waiting for the garbage
// collector, which suits long-lived processes cycling through large pools.
type MmapSource struct{}

// NewMmapSource returns an mmap-backed Source.
func NewMmapSource() (Source, error) {
	return MmapSource{}, nil
}

// Alloc maps n bytes of zeroed anonymous memory.
func (MmapSource) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrBadSize
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Release unmaps a block returned by Alloc. Unmapping a block twice is
// treated as a no-op.
func (MmapSource) Release(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	err := unix.Munmap(b)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}
