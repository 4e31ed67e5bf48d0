package solver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolver_AnalyseToDepth_EmitsOnePVPerDepth(t *testing.T) {
	ctx := context.Background()
	s := solver.New(ctx, 1<<16, 4)

	last := -1
	for pv := range s.AnalyseToDepth(ctx, kalah.NewDefaultPosition(), 4) {
		assert.Greater(t, pv.Depth, last)
		last = pv.Depth
	}
	assert.Equal(t, 4, last)
}

func TestSolver_StrongSolve_WithoutTableReturnsInsufficientTable(t *testing.T) {
	ctx := context.Background()
	s := solver.New(ctx, 1<<16, 3)

	_, _, err := s.StrongSolve(ctx, kalah.NewDefaultPosition())
	require.Error(t, err)
	assert.True(t, errors.Is(err, endgame.ErrInsufficientTable))
}

func TestSolver_StrongSolve_WithSmallEndgameWithinRangeSolvesExactly(t *testing.T) {
	ctx := context.Background()

	var p kalah.Position
	p.Turn = true
	p.Pits[0] = 2
	p.Pits[1] = 1

	tbl := endgame.NewTable(4)
	require.NoError(t, tbl.Build(ctx, 2))

	s := solver.New(ctx, 1<<12, 2).WithTable(tbl)

	move, _, err := s.StrongSolve(ctx, p)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, move)
}
