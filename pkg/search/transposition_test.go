package search_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/herohde/kalah/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTable_SizeRoundsDownToPowerOfTwoEntries(t *testing.T) {
	ctx := context.Background()

	tt := search.NewTranspositionTable(ctx, 0x1000)
	assert.Equal(t, uint64(0x1000), tt.Size())

	tt2 := search.NewTranspositionTable(ctx, 0x1f00)
	assert.Equal(t, uint64(0x1000), tt2.Size())
}

func TestTranspositionTable_ReadMiss(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 0x1000)

	hash := rand.Uint64()
	_, _, ok := tt.Read(hash)
	assert.False(t, ok)
}

func TestTranspositionTable_FailLowWritesUpperBoundOnly(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 0x1000)
	hash := rand.Uint64()

	// alpha=10, beta=20, value=5 <= alpha: fail low.
	tt.Write(hash, 10, 20, 3, 5)

	lower, upper, ok := tt.Read(hash)
	require := assert.New(t)
	require.True(ok)
	require.Equal(math.MinInt32, lower.Value)
	require.Equal(0, lower.Depth)
	require.Equal(5, upper.Value)
	require.Equal(3, upper.Depth)
}

func TestTranspositionTable_FailHighWritesLowerBoundOnly(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 0x1000)
	hash := rand.Uint64()

	// alpha=10, beta=20, value=20 >= beta: fail high.
	tt.Write(hash, 10, 20, 3, 20)

	lower, upper, ok := tt.Read(hash)
	assert.True(t, ok)
	assert.Equal(t, 20, lower.Value)
	assert.Equal(t, 3, lower.Depth)
	assert.Equal(t, math.MaxInt32, upper.Value)
	assert.Equal(t, 0, upper.Depth)
}

func TestTranspositionTable_ExactWritesBothBounds(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 0x1000)
	hash := rand.Uint64()

	// alpha=10, beta=20, value=15 strictly inside the window: exact.
	tt.Write(hash, 10, 20, 3, 15)

	lower, upper, ok := tt.Read(hash)
	assert.True(t, ok)
	assert.Equal(t, search.Bound{Value: 15, Depth: 3}, lower)
	assert.Equal(t, search.Bound{Value: 15, Depth: 3}, upper)
}

func TestTranspositionTable_LaterWritePreservesUnrelatedBound(t *testing.T) {
	tt := search.NewTranspositionTable(context.Background(), 0x1000)
	hash := rand.Uint64()

	tt.Write(hash, 10, 20, 3, 20) // fail high: sets lower bound
	tt.Write(hash, 10, 20, 2, 5)  // fail low: sets upper bound, shallower depth

	lower, upper, ok := tt.Read(hash)
	assert.True(t, ok)
	assert.Equal(t, search.Bound{Value: 20, Depth: 3}, lower)
	assert.Equal(t, search.Bound{Value: 5, Depth: 2}, upper)
}

func TestNoTranspositionTable(t *testing.T) {
	var tt search.NoTranspositionTable

	_, _, ok := tt.Read(123)
	assert.False(t, ok)
	tt.Write(123, 0, 1, 4, 1)

	_, _, ok = tt.Read(123)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), tt.Size())
	assert.Equal(t, float64(0), tt.Used())
}
