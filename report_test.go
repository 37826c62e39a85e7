package entrypool

import (
	stdjson "encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test_ReportFields verifies the per-pool accounting arithmetic.
func Test_ReportFields(t *testing.T) {
	const epb = 8
	r, _ := newTestRegistry(t, epb)

	small, err := r.AcquirePool(8)
	require.NoError(t, err)
	refs := make([]EntryRef, 9) // one past the first block
	for i := range refs {
		refs[i], _, err = small.Alloc()
		require.NoError(t, err)
	}
	require.NoError(t, small.Free(refs[0]))
	require.NoError(t, small.Free(refs[1]))

	big, err := r.AcquirePool(32)
	require.NoError(t, err)
	big.AddInstance()
	_, _, err = big.Alloc()
	require.NoError(t, err)

	rep := r.Report()
	require.Equal(t, DefaultMaxSizeClasses, rep.RootSize)
	require.Equal(t, 2, rep.PoolCount)
	require.Equal(t, uint32(epb), rep.EntriesPerBlock)
	require.Len(t, rep.Pools, 2)
	require.False(t, rep.GeneratedAt.IsZero())

	sm := rep.Pools[0]
	require.Equal(t, uint32(1), sm.Instances)
	require.Equal(t, uint32(8), sm.EntrySize)
	require.Equal(t, uint32(3), sm.BlockArraySize)
	require.Equal(t, uint32(2), sm.AllocatedBlocks)
	require.Equal(t, uint64(7), sm.EntriesInUse, "9 carved minus 2 on the reuse list")
	require.Equal(t, uint32(7), sm.UnusedEntries, "never-carved tail of the second block")
	require.Equal(t, uint64(2), sm.ReusableEntries)
	require.Zero(t, sm.ExtraReusable)

	bg := rep.Pools[1]
	require.Equal(t, uint32(2), bg.Instances)
	require.Equal(t, uint32(32), bg.EntrySize)
	require.Equal(t, uint32(1), bg.AllocatedBlocks)
	require.Equal(t, uint64(1), bg.EntriesInUse)
	require.Zero(t, bg.ReusableEntries)
}

// Test_ReportExtraReusable flags entries freed more often than carved.
func Test_ReportExtraReusable(t *testing.T) {
	r, _ := newTestRegistry(t, 0)
	pool, err := r.AcquirePool(8)
	require.NoError(t, err)

	ref, _, err := pool.Alloc()
	require.NoError(t, err)
	require.NoError(t, pool.Free(ref))
	require.NoError(t, pool.Free(ref))

	rep := r.Report()
	pr := rep.Pools[0]
	require.Equal(t, uint64(1), pr.ExtraReusable)
	require.Equal(t, uint64(1), pr.ReusableEntries, "reusable is capped at the carved count")
	require.Zero(t, pr.EntriesInUse)

	text := rep.FormatText()
	assert.Contains(t, text, "WARNING: 1 extra reusable entries were found")
}

// Test_FormatText renders the report fields with digit grouping.
func Test_FormatText(t *testing.T) {
	r, _ := newTestRegistry(t, 0) // default 4096 entries per block
	pool, err := r.AcquirePool(16)
	require.NoError(t, err)
	defer pool.Close()

	ref, _, err := pool.Alloc()
	require.NoError(t, err)
	defer pool.Free(ref)

	text := r.Report().FormatText()
	assert.Contains(t, text, "entry pool report")
	assert.Contains(t, text, "size class limit  : 256")
	assert.Contains(t, text, "registered pools  : 1")
	assert.Contains(t, text, "entries per block : 4,096")
	assert.Contains(t, text, "[pool #0]")
	assert.Contains(t, text, "entry size       : 16")
	assert.Contains(t, text, "unused entries   : 4,095")
	assert.Contains(t, text, "end of report")
	assert.NotContains(t, text, "WARNING")
}

// Test_FormatJSON round-trips the snapshot through JSON.
func Test_FormatJSON(t *testing.T) {
	r, _ := newTestRegistry(t, 16)
	pool, err := r.AcquirePool(24)
	require.NoError(t, err)
	defer pool.Close()

	ref, _, err := pool.Alloc()
	require.NoError(t, err)
	defer pool.Free(ref)

	out, err := r.Report().FormatJSON()
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, stdjson.Unmarshal([]byte(out), &decoded))
	require.Equal(t, 1, decoded.PoolCount)
	require.Equal(t, uint32(16), decoded.EntriesPerBlock)
	require.Len(t, decoded.Pools, 1)
	require.Equal(t, uint32(24), decoded.Pools[0].EntrySize)
	require.Equal(t, uint64(1), decoded.Pools[0].EntriesInUse)
}

// Test_LogReport sends the rendered report through the sink.
func Test_LogReport(t *testing.T) {
	r, sink := newTestRegistry(t, 0)
	pool, err := r.AcquirePool(8)
	require.NoError(t, err)
	defer pool.Close()

	r.LogReport()
	msgs := sink.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "entry pool report")
	assert.Contains(t, msgs[0], "registered pools  : 1")
}
