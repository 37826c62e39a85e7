// Package blockmem supplies raw block memory to entry pools.
//
// Blocks are allocated whole and released whole; the pool engine never
// returns individual entries here. HeapSource is the default and leaves
// reclamation to the garbage collector. MmapSource places blocks in
// anonymous private mappings and returns them to the operating system as
// soon as a pool is destroyed.
package blockmem

import "errors"

var (
	// ErrBadSize indicates a block size that is zero or negative.
	ErrBadSize = errors.New("blockmem: block size must be positive")

	// ErrUnsupported indicates the requested source is not available on
	// this platform.
	ErrUnsupported = errors.New("blockmem: source not supported on this platform")
)

// Source supplies raw memory for entry blocks.
//
// Alloc returns a slice of exactly n bytes. Release takes back a slice
// previously returned by Alloc on the same Source. A Source must never fail
// silently: a nil error from Alloc means the full block is usable.
type Source interface {
	Alloc(n int) ([]byte, error)
	Release(b []byte) error
}

// HeapSource allocates blocks from the Go heap. Release is a no-op; the
// garbage collector reclaims a block once the pool drops it.
type HeapSource struct{}

// Alloc returns a heap-backed block of n bytes.
func (HeapSource) Alloc(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrBadSize
	}
	return make([]byte, n), nil
}

// Release drops the block reference.
func (HeapSource) Release([]byte) error { return nil }
