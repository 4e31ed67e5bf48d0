package search

import (
	"context"

	"github.com/herohde/kalah/pkg/kalah"
)

// MTDF implements the MTD(f) zero-window driver over any underlying Search
// (AlphaBeta, AlphaBetaMemory, or Unlimited): it repeatedly re-searches the
// root with a window of width one, narrowing a [lowerBound, upperBound)
// bracket around the true value until it collapses. MTD(f) only pays off
// when the underlying Search memoizes across calls (a transposition table,
// an endgame database, or both), since each zero-window call re-explores
// much of the same tree; it is still correct, just slower, over a
// non-memoizing Search.
//
// Pseudo-code:
//
//	function mtdf(root, guess, depth) is
//	    lower, upper := -inf, +inf
//	    while lower < upper do
//	        beta := max(guess, lower+1)
//	        guess := search(root, depth, beta-1, beta)
//	        if guess < beta then upper := guess else lower := guess
//	    return guess
type MTDF struct {
	Root Search
}

func (d MTDF) Search(ctx context.Context, sctx *Context, p kalah.Position, depth, firstGuess, _ int, halt <-chan struct{}) (uint64, int, []int, error) {
	guess := firstGuess
	lower, upper := minInt, maxInt

	var nodes uint64
	var pv []int

	for lower < upper {
		beta := guess
		if lower+1 > beta {
			beta = lower + 1
		}

		n, value, moves, err := d.Root.Search(ctx, sctx, p, depth, beta-1, beta, halt)
		nodes += n
		if err != nil {
			return nodes, 0, nil, err
		}

		guess = value
		pv = moves
		if guess < beta {
			upper = guess
		} else {
			lower = guess
		}
	}

	return nodes, guess, pv, nil
}
