package entrypool

import (
	"sync"

	"github.com/poolworks/entrypool/internal/align"
)

// Registry deduplicates pools by aligned entry size: every requester of one
// size shares the same pool. A registry holds at most MaxSizeClasses
// distinct sizes. The table is scanned linearly; the key space is small and
// churn-free, so nothing faster is warranted.
type Registry struct {
	mu    sync.Mutex
	pools []*Pool

	entriesPerBlock uint32
	maxSizeClasses  int
	source          BlockSource
	sink            DiagSink
}

// NewRegistry builds a registry from cfg. A nil cfg means DefaultConfig;
// zero-valued fields fall back to their defaults.
func NewRegistry(cfg *Config) *Registry {
	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()
	return &Registry{
		pools:           make([]*Pool, 0, c.MaxSizeClasses),
		entriesPerBlock: c.EntriesPerBlock,
		maxSizeClasses:  c.MaxSizeClasses,
		source:          c.Source,
		sink:            c.Sink,
	}
}

// AlignedSize returns the entry size a pool actually serves for a request:
// sizes are raised to LinkSize and rounded up to the next multiple of 8, so
// all requests inside one 8-byte bracket share a size class. Sizes near the
// top of the uint32 range saturate at the largest aligned value.
func AlignedSize(size uint32) uint32 {
	if size < LinkSize {
		size = LinkSize
	}
	return align.Up(size, entryAlign)
}

// AcquirePool returns the shared pool serving entries of the given size,
// creating it on first request. The caller becomes one instance of the pool
// and must pair the call with Pool.ReleaseInstance or Pool.Close.
//
// A size of zero is rejected with ErrZeroSize. A registry already holding
// MaxSizeClasses distinct sizes reports a fatal condition: hitting the
// limit means the deployment was sized wrong, not that the caller should
// retry. If the sink returns from Fatal, AcquirePool returns
// ErrRegistryFull.
func (r *Registry) AcquirePool(size uint32) (*Pool, error) {
	if size == 0 {
		r.sink.Error("acquire: entry size 0, no pool acquired")
		return nil, ErrZeroSize
	}
	aligned := AlignedSize(size)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pools {
		if p.size == aligned {
			return p.AddInstance(), nil
		}
	}
	if len(r.pools) >= r.maxSizeClasses {
		r.sink.Fatal("acquire: registry already holds %d size classes, raise MaxSizeClasses", r.maxSizeClasses)
		return nil, ErrRegistryFull
	}
	p := &Pool{
		root:            r,
		instances:       1,
		size:            aligned,
		entriesPerBlock: r.entriesPerBlock,
		source:          r.source,
		sink:            r.sink,
	}
	r.pools = append(r.pools, p)
	return p, nil
}

// PoolCount returns the number of size classes currently registered.
func (r *Registry) PoolCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pools)
}

// ForceDestroyAll tears down every pool without any accounting checks and
// empties the registry, regardless of outstanding instances or live
// entries. Every pool handle and entry ref in the process is invalid
// afterwards. This is an emergency teardown for process shutdown, not a
// reset for reuse while anything still holds a handle.
func (r *Registry) ForceDestroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pools {
		p.mu.Lock()
		p.releaseBlocksLocked()
		p.mu.Unlock()
		r.pools[i] = nil
	}
	r.pools = r.pools[:0]
}

// removeLocked drops p from the table, moving the last pool into its slot.
// Callers hold r.mu.
func (r *Registry) removeLocked(p *Pool) {
	for i, q := range r.pools {
		if q == p {
			last := len(r.pools) - 1
			r.pools[i] = r.pools[last]
			r.pools[last] = nil
			r.pools = r.pools[:last]
			return
		}
	}
}
