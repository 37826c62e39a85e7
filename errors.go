package entrypool

import "errors"

var (
	// ErrZeroSize indicates a pool request for entries of zero bytes.
	ErrZeroSize = errors.New("entrypool: entry size must be greater than zero")

	// ErrRegistryFull indicates the registry already holds its maximum
	// number of distinct size classes.
	ErrRegistryFull = errors.New("entrypool: size class registry is full")

	// ErrNilRef indicates an operation on the nil entry reference.
	ErrNilRef = errors.New("entrypool: nil entry reference")

	// ErrBadRef indicates an entry reference outside the pool's carved
	// range.
	ErrBadRef = errors.New("entrypool: bad entry reference")

	// ErrTooManyBlocks indicates the block array capacity counter cannot
	// grow any further.
	ErrTooManyBlocks = errors.New("entrypool: maximum number of blocks reached")
)
