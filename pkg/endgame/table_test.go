package endgame_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSmall(t *testing.T, maxStones int) *endgame.Table {
	t.Helper()
	tbl := endgame.NewTable(maxStones)
	require.NoError(t, tbl.Build(context.Background(), 4))
	return tbl
}

func TestTable_LookupAgreesWithUnlimitedAlphaBeta(t *testing.T) {
	tbl := buildSmall(t, 8)

	ctx := context.Background()

	var p kalah.Position
	p.Turn = true
	p.Pits[0], p.Pits[1], p.Pits[2] = 3, 3, 2

	sctx := &search.Context{TT: search.NoTranspositionTable{}, Endgame: search.NoEndgameTable{}}
	alg := search.Unlimited{}
	_, want, _, err := alg.Search(ctx, sctx, p, 0, -1000, 1000, nil)
	require.NoError(t, err)

	got, ok := tbl.Lookup(p)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestTable_LookupMissesBeyondBuiltRange(t *testing.T) {
	tbl := endgame.NewTable(2)
	require.NoError(t, tbl.Build(context.Background(), 2))

	p := kalah.NewDefaultPosition() // 48 stones in play, far beyond range 2
	_, ok := tbl.Lookup(p)
	assert.False(t, ok)
}

func TestTable_WriteToReadFromRoundTrips(t *testing.T) {
	tbl := buildSmall(t, 4)

	var buf bytes.Buffer
	_, err := tbl.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := endgame.ReadFrom(&buf)
	require.NoError(t, err)
	assert.Equal(t, tbl.MaxStones(), loaded.MaxStones())

	var p kalah.Position
	p.Turn = true
	p.Pits[0] = 4

	want, ok1 := tbl.Lookup(p)
	got, ok2 := loaded.Lookup(p)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, want, got)
}

func TestTable_ReadFromRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer(make([]byte, 12))
	_, err := endgame.ReadFrom(buf)
	assert.Error(t, err)
}

func TestTable_EmptyBoardIsADraw(t *testing.T) {
	tbl := buildSmall(t, 1)

	var p kalah.Position
	p.Turn = true
	value, ok := tbl.Lookup(p)
	require.True(t, ok)
	assert.Equal(t, 0, value)
}
