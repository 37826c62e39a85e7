package entrypool

import (
	"math"
	"sync"
)

// Pool hands out fixed-size entries for one aligned size class. All
// requesters of one size share the same pool through the registry, so
// entries freed by one component are reused by any other. The pool stays
// alive until its last instance is released.
//
// Pools are obtained through Registry.AcquirePool, never constructed
// directly.
type Pool struct {
	root *Registry

	mu sync.Mutex

	// blocks is the ordered block sequence. A block never moves and is
	// never shrunk; it is released whole when the pool is destroyed.
	blocks [][]byte

	// reuse holds the refs of freed entries, most recently freed last.
	// Alloc pops from the tail, so entries are reused in LIFO order.
	reuse []EntryRef

	// free counts the never-carved entries left in the newest block.
	// Carving walks from the last cell of a block downward.
	free uint32

	// max is the block array capacity counter. It grows by max*4+3;
	// needing to grow past the uint32 range is fatal.
	max uint32

	// instances is the number of logical owners sharing this pool.
	instances uint32

	// size is the aligned entry size, the registry's dedup key.
	size uint32

	entriesPerBlock uint32
	source          BlockSource
	sink            DiagSink
}

// Alloc returns one entry as a stable ref and its byte view. The view has
// length EntrySize and unspecified contents: entries are handed out without
// initialization, so a reused entry still holds the bytes of its previous
// occupant.
//
// Freed entries are preferred over never-used ones; when both run out the
// pool grows by one block. Growth that cannot be satisfied (the block
// counter at its numeric limit, or the source failing) is reported to the
// sink as fatal.
func (p *Pool) Alloc() (EntryRef, []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.reuse); n > 0 {
		ref := p.reuse[n-1]
		p.reuse = p.reuse[:n-1]
		return ref, p.view(ref), nil
	}
	if p.free > 0 {
		p.free--
		ref := makeRef(uint32(len(p.blocks)-1), p.free)
		return ref, p.view(ref), nil
	}

	if uint32(len(p.blocks)) == p.max {
		if p.max == math.MaxUint32 {
			p.sink.Fatal("alloc: block array for entry size %d cannot grow past %d blocks", p.size, p.max)
			return NilRef, nil, ErrTooManyBlocks
		}
		p.max = p.max*4 + 3
		grown := make([][]byte, len(p.blocks), int(p.max))
		copy(grown, p.blocks)
		p.blocks = grown
	}
	blk, err := p.source.Alloc(int(p.size) * int(p.entriesPerBlock))
	if err != nil {
		p.sink.Fatal("alloc: no block memory for entry size %d: %v", p.size, err)
		return NilRef, nil, err
	}
	p.blocks = append(p.blocks, blk)
	p.free = p.entriesPerBlock - 1
	ref := makeRef(uint32(len(p.blocks)-1), p.free)
	return ref, p.view(ref), nil
}

// Free hands an entry back for reuse. The entry's bytes are left untouched
// until the next Alloc returns them.
//
// Free only checks that the ref lies inside the pool's carved range; it
// cannot tell a live entry from a freed one. Freeing an entry twice is
// accepted here and surfaces later as an "extra entries" warning when the
// pool is destroyed.
func (p *Pool) Free(ref EntryRef) error {
	if ref == NilRef {
		p.sink.Error("free: nil entry ref, nothing to release")
		return ErrNilRef
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.owns(ref) {
		return ErrBadRef
	}
	p.reuse = append(p.reuse, ref)
	return nil
}

// Bytes returns the byte view of a previously allocated entry. The view
// stays valid until the pool is destroyed.
func (p *Pool) Bytes(ref EntryRef) ([]byte, error) {
	if ref == NilRef {
		return nil, ErrNilRef
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.owns(ref) {
		return nil, ErrBadRef
	}
	return p.view(ref), nil
}

// EntrySize returns the aligned entry size this pool serves.
func (p *Pool) EntrySize() uint32 { return p.size }

// AddInstance registers one more logical owner and returns the same pool.
// Every AddInstance must be paired with one ReleaseInstance.
func (p *Pool) AddInstance() *Pool {
	p.mu.Lock()
	p.instances++
	p.mu.Unlock()
	return p
}

// ReleaseInstance drops one logical owner. Releasing the last owner
// destroys the pool: it is removed from its registry, the bookkeeping is
// audited (entries never freed show up as missing, entries freed twice as
// extra; both are warnings and neither stops teardown), and every block
// goes back to the source. All refs into the pool are invalid afterwards.
func (p *Pool) ReleaseInstance() {
	p.root.mu.Lock()
	defer p.root.mu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.instances--
	if p.instances > 0 {
		return
	}
	p.root.removeLocked(p)
	p.auditLocked()
	p.releaseBlocksLocked()
}

// Close releases one instance so acquisitions pair with defer. It always
// returns nil; the signature satisfies io.Closer.
func (p *Pool) Close() error {
	p.ReleaseInstance()
	return nil
}

// view derives the byte slice of an entry inside the carved range. Callers
// hold p.mu.
func (p *Pool) view(ref EntryRef) []byte {
	start := int(ref.Cell()) * int(p.size)
	end := start + int(p.size)
	return p.blocks[ref.Block()][start:end:end]
}

// owns reports whether ref lies inside the pool's carved range. Callers
// hold p.mu.
func (p *Pool) owns(ref EntryRef) bool {
	b, c := ref.Block(), ref.Cell()
	if b >= uint32(len(p.blocks)) || c >= p.entriesPerBlock {
		return false
	}
	if b == uint32(len(p.blocks))-1 && c < p.free {
		// Never-carved tail of the newest block.
		return false
	}
	return true
}

// carvedLocked counts the entries ever handed out or queued for first use:
// every cell of every block except the untouched tail of the newest one.
func (p *Pool) carvedLocked() uint64 {
	return uint64(len(p.blocks))*uint64(p.entriesPerBlock) - uint64(p.free)
}

// auditLocked compares the carved entry count against the reuse list just
// before teardown. At that point every carved entry should have been freed;
// a mismatch is a caller bug, reported as a warning while destruction
// continues.
func (p *Pool) auditLocked() {
	carved := p.carvedLocked()
	reusable := uint64(len(p.reuse))
	switch {
	case carved > reusable:
		p.sink.Warning("destroy: %d entries missing, continuing destruction (pool for entries of size %d)",
			carved-reusable, p.size)
	case reusable > carved:
		p.sink.Warning("destroy: %d extra entries found, continuing destruction (pool for entries of size %d)",
			reusable-carved, p.size)
	}
}

// releaseBlocksLocked returns every block to the source and clears the
// allocation state. Callers hold p.mu.
func (p *Pool) releaseBlocksLocked() {
	for _, blk := range p.blocks {
		if err := p.source.Release(blk); err != nil {
			p.sink.Error("destroy: releasing a block for entry size %d: %v", p.size, err)
		}
	}
	p.blocks = nil
	p.reuse = nil
	p.free = 0
	p.max = 0
}

// snapshot captures the pool's accounting for a report. Reusable entries
// beyond the carved count mean some entry was freed more than once; they
// are reported separately as extras, mirroring the destruction audit.
func (p *Pool) snapshot() PoolReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	carved := p.carvedLocked()
	reusable := uint64(len(p.reuse))
	pr := PoolReport{
		Instances:       p.instances,
		EntrySize:       p.size,
		BlockArraySize:  p.max,
		AllocatedBlocks: uint32(len(p.blocks)),
		UnusedEntries:   p.free,
	}
	if reusable > carved {
		pr.ReusableEntries = carved
		pr.ExtraReusable = reusable - carved
	} else {
		pr.ReusableEntries = reusable
		pr.EntriesInUse = carved - reusable
	}
	return pr
}
