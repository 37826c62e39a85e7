package entrypool

import (
	"github.com/poolworks/entrypool/blockmem"
	"github.com/poolworks/entrypool/diag"
)

// BlockSource supplies raw block memory. Alias of blockmem.Source so a
// Registry can be configured without importing the subpackage.
type BlockSource = blockmem.Source

// DiagSink receives engine diagnostics. Alias of diag.Sink.
type DiagSink = diag.Sink

const (
	// DefaultEntriesPerBlock is the number of entries carved from each
	// block when a pool grows.
	DefaultEntriesPerBlock = 4096

	// MaxEntriesPerBlock bounds Config.EntriesPerBlock so a block's byte
	// count stays inside the int range for any entry size.
	MaxEntriesPerBlock = 1 << 20

	// DefaultMaxSizeClasses is the number of distinct size classes a
	// registry accepts before treating further classes as fatal.
	DefaultMaxSizeClasses = 256

	// LinkSize is the minimum entry size in bytes. The free-list design
	// keeps one pointer-sized link per freed entry, so no pool serves
	// entries smaller than one link.
	LinkSize = 8

	// entryAlign keeps every entry of a block naturally aligned for
	// 64-bit loads.
	entryAlign = 8
)

// Config controls how a Registry and its pools behave. The zero value of
// any field means "use the default".
type Config struct {
	// EntriesPerBlock is the number of same-size entries carved from one
	// block. Clamped to [1, MaxEntriesPerBlock].
	EntriesPerBlock uint32

	// MaxSizeClasses is the number of distinct aligned entry sizes the
	// registry accepts before AcquirePool turns fatal.
	MaxSizeClasses int

	// Source supplies raw block memory. Defaults to blockmem.HeapSource.
	Source BlockSource

	// Sink receives diagnostics. Defaults to diag.Default().
	Sink DiagSink
}

// DefaultConfig is used by NewRegistry(nil) and by the package-level
// registry.
var DefaultConfig = Config{
	EntriesPerBlock: DefaultEntriesPerBlock,
	MaxSizeClasses:  DefaultMaxSizeClasses,
}

// withDefaults fills zero-valued fields from the defaults.
func (c Config) withDefaults() Config {
	if c.EntriesPerBlock == 0 {
		c.EntriesPerBlock = DefaultEntriesPerBlock
	}
	if c.EntriesPerBlock > MaxEntriesPerBlock {
		c.EntriesPerBlock = MaxEntriesPerBlock
	}
	if c.MaxSizeClasses <= 0 {
		c.MaxSizeClasses = DefaultMaxSizeClasses
	}
	if c.Source == nil {
		c.Source = blockmem.HeapSource{}
	}
	if c.Sink == nil {
		c.Sink = diag.Default()
	}
	return c
}
