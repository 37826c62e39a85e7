package entrypool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_EntryRefPacking verifies the block/cell split and the nil value.
func Test_EntryRefPacking(t *testing.T) {
	ref := makeRef(7, 4095)
	require.Equal(t, uint32(7), ref.Block())
	require.Equal(t, uint32(4095), ref.Cell())

	ref = makeRef(0, 0)
	require.Equal(t, uint32(0), ref.Block())
	require.Equal(t, uint32(0), ref.Cell())

	// The nil ref is outside every reachable block/cell combination.
	require.NotEqual(t, NilRef, makeRef(math.MaxUint32-1, math.MaxUint32-1))
	require.Equal(t, NilRef, makeRef(math.MaxUint32, math.MaxUint32))
}

// Test_EntryRefString renders refs for diagnostics.
func Test_EntryRefString(t *testing.T) {
	require.Equal(t, "block 7 cell 4095", makeRef(7, 4095).String())
	require.Equal(t, "nil", NilRef.String())
}
