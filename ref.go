package entrypool

import "fmt"

// EntryRef identifies one entry inside a pool: the block index in the high
// 32 bits and the cell index within that block in the low 32 bits. A ref
// stays valid from Alloc until the entry is freed and handed out again, or
// until the pool is destroyed. Refs from different pools are unrelated and
// must not be mixed.
type EntryRef uint64

// NilRef is the absent entry reference. No Alloc ever returns it.
const NilRef = ^EntryRef(0)

// makeRef packs a block and cell index into a ref.
func makeRef(block, cell uint32) EntryRef {
	return EntryRef(uint64(block)<<32 | uint64(cell))
}

// Block returns the index of the block the entry lives in.
func (r EntryRef) Block() uint32 { return uint32(r >> 32) }

// Cell returns the entry's cell index within its block.
func (r EntryRef) Cell() uint32 { return uint32(r) }

// String renders the ref for diagnostics.
func (r EntryRef) String() string {
	if r == NilRef {
		return "nil"
	}
	return fmt.Sprintf("block %d cell %d", r.Block(), r.Cell())
}
