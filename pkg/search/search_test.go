package search_test

import (
	"context"
	"testing"

	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestMinimaxAgreesWithAlphaBeta(t *testing.T) {
	ctx := context.Background()
	p := kalah.NewDefaultPosition()

	for depth := 1; depth <= 6; depth++ {
		minimax := search.Minimax{}
		_, want, _, err := minimax.Search(ctx, &search.Context{}, p, depth, -1000, 1000, nil)
		assert.NoError(t, err)

		ab := search.AlphaBeta{}
		_, got, _, err := ab.Search(ctx, &search.Context{}, p, depth, -1000, 1000, nil)
		assert.NoError(t, err)

		assert.Equalf(t, want, got, "alpha-beta disagrees with minimax at depth=%v", depth)
	}
}

func TestAlphaBetaMemoryAgreesWithAlphaBeta(t *testing.T) {
	ctx := context.Background()
	p := kalah.NewDefaultPosition()

	for depth := 1; depth <= 6; depth++ {
		ab := search.AlphaBeta{}
		_, want, _, err := ab.Search(ctx, &search.Context{}, p, depth, -1000, 1000, nil)
		assert.NoError(t, err)

		sctx := &search.Context{TT: search.NewTranspositionTable(ctx, 1<<16), Endgame: search.NoEndgameTable{}}
		abm := search.AlphaBetaMemory{}
		_, got, _, err := abm.Search(ctx, sctx, p, depth, -1000, 1000, nil)
		assert.NoError(t, err)

		assert.Equalf(t, want, got, "memoized alpha-beta disagrees with plain alpha-beta at depth=%v", depth)
	}
}

func TestMTDFAgreesWithAlphaBeta(t *testing.T) {
	ctx := context.Background()
	p := kalah.NewDefaultPosition()

	for depth := 1; depth <= 6; depth++ {
		ab := search.AlphaBeta{}
		_, want, _, err := ab.Search(ctx, &search.Context{}, p, depth, -1000, 1000, nil)
		assert.NoError(t, err)

		sctx := &search.Context{TT: search.NewTranspositionTable(ctx, 1<<16), Endgame: search.NoEndgameTable{}}
		driver := search.MTDF{Root: search.AlphaBetaMemory{}}
		_, got, _, err := driver.Search(ctx, sctx, p, depth, 0, 0, nil)
		assert.NoError(t, err)

		assert.Equalf(t, want, got, "MTD(f) disagrees with plain alpha-beta at depth=%v", depth)
	}
}

func TestAlphaBetaMemory_PVIsNoLongerThanDepth(t *testing.T) {
	ctx := context.Background()
	p := kalah.NewDefaultPosition()

	sctx := &search.Context{TT: search.NewTranspositionTable(ctx, 1<<16), Endgame: search.NoEndgameTable{}}
	abm := search.AlphaBetaMemory{}
	_, _, pv, err := abm.Search(ctx, sctx, p, 4, -1000, 1000, nil)
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(pv), 4)
}

func TestSearch_HaltStopsEarly(t *testing.T) {
	ctx := context.Background()
	p := kalah.NewDefaultPosition()

	halt := make(chan struct{})
	close(halt)

	ab := search.AlphaBeta{}
	_, _, _, err := ab.Search(ctx, &search.Context{}, p, 4, -1000, 1000, halt)
	assert.ErrorIs(t, err, search.ErrHalted)
}
