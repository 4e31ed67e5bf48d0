// Package search implements depth-limited and unlimited alpha-beta tree
// search over kalah.Position, plus an MTD(f) zero-window driver and the
// transposition table that backs both. See package searchctl for the
// iterative-deepening harness built on top of these primitives.
package search

import (
	"context"
	"errors"
	"math"

	"github.com/herohde/kalah/pkg/kalah"
)

// minInt and maxInt bound the search's integer score range. Kalah(6,4)'s
// heuristic never approaches these, so they serve purely as -inf/+inf.
const (
	minInt = math.MinInt32
	maxInt = math.MaxInt32
)

// ErrHalted is returned by a Search when its halt channel fired before it
// completed (e.g. via Handle.Halt). Searches do not poll the context.
var ErrHalted = errors.New("search: halted")

// EndgameTable answers exact lookups for positions with few enough stones
// still in play to have been precomputed. A Search consults it before
// recursing, exactly as it would a transposition table entry with infinite
// depth: the endgame database is always more authoritative.
type EndgameTable interface {
	// Lookup returns the exact value of p as P1's store minus P2's store,
	// whichever side is to move, if p's stones in play are within the
	// table's built range.
	Lookup(p kalah.Position) (value int, ok bool)
}

// NoEndgameTable is a Nop implementation, used when no endgame database has
// been built or loaded.
type NoEndgameTable struct{}

func (NoEndgameTable) Lookup(p kalah.Position) (int, bool) { return 0, false }

// Context carries the state shared across one invocation of a Search:
// the transposition table and endgame database to consult, and the per-ply
// children-buffer arena that lets Children() avoid allocating on every node.
//
// A fresh Context is created per search call (e.g. per depth of an
// iterative-deepening loop); TT and Endgame are typically long-lived and
// shared across many Contexts.
type Context struct {
	TT      TranspositionTable
	Endgame EndgameTable

	// arena holds one child-buffer slice per remaining ply, so recursive
	// calls never allocate children on the heap. Indexed by remaining depth;
	// grown lazily the first time a depth is seen.
	arena [][]kalah.Child
}

// children returns (and, if necessary, allocates) the child-buffer for the
// given remaining depth: this call's frame gets one buffer, its children
// get the rest, so recursive search never allocates children on the heap.
func (c *Context) children(depth int) []kalah.Child {
	if depth < 0 {
		depth = 0
	}
	for len(c.arena) <= depth {
		c.arena = append(c.arena, make([]kalah.Child, 0, kalah.PitsPerSide))
	}
	return c.arena[depth]
}

// Search is implemented by each tree-search variant (Minimax, AlphaBeta,
// AlphaBetaMemory, Unlimited). depth is the remaining search depth in
// plies; alpha and beta bound the window in absolute terms (P1's store minus
// P2's store; P1 maximises, P2 minimises), whichever side is to move at the
// root or at p. halt, if non-nil, is
// polled for early termination and causes ErrHalted.
type Search interface {
	Search(ctx context.Context, sctx *Context, p kalah.Position, depth, alpha, beta int, halt <-chan struct{}) (nodes uint64, value int, pv []int, err error)
}

// isHalted reports whether halt has fired, without blocking.
func isHalted(halt <-chan struct{}) bool {
	if halt == nil {
		return false
	}
	select {
	case <-halt:
		return true
	default:
		return false
	}
}

// prepend returns a new slice with move in front of pv. pv is not mutated.
func prepend(move int, pv []int) []int {
	out := make([]int, 0, len(pv)+1)
	out = append(out, move)
	out = append(out, pv...)
	return out
}
