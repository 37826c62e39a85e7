package entrypool

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_PoolLifecycleScenario walks a pool through a full life at the default
// block size: carve past the first block boundary, recycle a couple of
// entries, then tear the pool down with most entries still live and check
// the audit calls them out.
func Test_PoolLifecycleScenario(t *testing.T) {
	const total = DefaultEntriesPerBlock + 1

	r, sink := newTestRegistry(t, 0)
	pool, err := r.AcquirePool(8)
	require.NoError(t, err)

	refs := make([]EntryRef, total)
	seen := make(map[EntryRef]struct{}, total)
	for i := range refs {
		ref, buf, err := pool.Alloc()
		require.NoError(t, err)
		require.Len(t, buf, 8)
		binary.LittleEndian.PutUint64(buf, uint64(i))
		refs[i] = ref

		_, dup := seen[ref]
		require.False(t, dup, "entry %d reused a live ref", i)
		seen[ref] = struct{}{}
	}

	// One entry past the first block forces a second one.
	require.Equal(t, uint32(0), refs[0].Block())
	require.Equal(t, uint32(1), refs[total-1].Block())
	rep := r.Report()
	require.Equal(t, uint32(2), rep.Pools[0].AllocatedBlocks)
	require.Equal(t, uint64(total), rep.Pools[0].EntriesInUse)

	require.NoError(t, pool.Free(refs[1]))
	require.NoError(t, pool.Free(refs[3]))

	again3, buf3, err := pool.Alloc()
	require.NoError(t, err)
	require.Equal(t, refs[3], again3, "most recently freed entry comes back first")
	require.Equal(t, uint64(3), binary.LittleEndian.Uint64(buf3), "reused entries keep their old bytes")

	again1, _, err := pool.Alloc()
	require.NoError(t, err)
	require.Equal(t, refs[1], again1)

	// Every carved entry is live again, none were freed: the audit reports
	// all of them missing.
	pool.ReleaseInstance()
	require.Zero(t, r.PoolCount())

	warns := sink.Warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "4097 entries missing")
	assert.Contains(t, warns[0], "size 8")
	assert.Empty(t, sink.Errors())
}

// Test_PoolLifecycleClean frees everything before the last release and
// expects a silent teardown.
func Test_PoolLifecycleClean(t *testing.T) {
	r, sink := newTestRegistry(t, 0)
	pool, err := r.AcquirePool(48)
	require.NoError(t, err)

	refs := make([]EntryRef, 100)
	for i := range refs {
		refs[i], _, err = pool.Alloc()
		require.NoError(t, err)
	}
	for _, ref := range refs {
		require.NoError(t, pool.Free(ref))
	}

	require.NoError(t, pool.Close())
	require.Zero(t, r.PoolCount())
	assert.Empty(t, sink.Warnings())
	assert.Empty(t, sink.Errors())
	assert.Empty(t, sink.Fatals())
}

// Test_SharedPoolLifetime exercises two owners of one size class letting go
// at different times. The pool must survive the first release untouched.
func Test_SharedPoolLifetime(t *testing.T) {
	r, sink := newTestRegistry(t, 0)

	writer, err := r.AcquirePool(32)
	require.NoError(t, err)
	reader, err := r.AcquirePool(32)
	require.NoError(t, err)
	require.Same(t, writer, reader)

	ref, buf, err := writer.Alloc()
	require.NoError(t, err)
	copy(buf, "shared across owners")

	writer.ReleaseInstance()
	require.Equal(t, 1, r.PoolCount(), "one owner left keeps the pool registered")

	got, err := reader.Bytes(ref)
	require.NoError(t, err)
	require.Equal(t, "shared across owners", string(got[:20]))

	require.NoError(t, reader.Free(ref))
	reader.ReleaseInstance()
	require.Zero(t, r.PoolCount())
	assert.Empty(t, sink.Warnings())
}
