package search

import (
	"context"
	"math"

	"github.com/herohde/kalah/pkg/kalah"
)

// AlphaBetaMemory implements fail-hard alpha-beta pruning to a fixed depth,
// consulting the endgame database first (exact, so it short-circuits both
// bounds to its value) and the transposition table otherwise. A TT entry is
// only trusted if it was recorded at least as deep as the current remaining
// depth, and only written for nodes within MaxTableDepth plies of the root:
// nodes many plies deep are visited too rarely for memoization to pay for
// the extra write traffic.
//
// Write semantics classify the result against the window it was searched
// with: a value at or below alpha is a new upper bound (fail low), a value
// at or above beta is a new lower bound (fail high), and a value strictly
// inside the window is exact (both bounds collapse to it).
type AlphaBetaMemory struct {
	// MaxTableDepth bounds how many plies from the root the transposition
	// table is written to. Zero means unbounded.
	MaxTableDepth int
}

func (p AlphaBetaMemory) Search(ctx context.Context, sctx *Context, pos kalah.Position, depth, alpha, beta int, halt <-chan struct{}) (uint64, int, []int, error) {
	run := &runAlphaBetaMemory{halt: halt, sctx: sctx, maxTableDepth: p.MaxTableDepth, rootDepth: depth}
	value, pv := run.search(pos, depth, alpha, beta)
	if isHalted(halt) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, value, pv, nil
}

type runAlphaBetaMemory struct {
	sctx          *Context
	nodes         uint64
	halt          <-chan struct{}
	maxTableDepth int
	rootDepth     int
}

func (m *runAlphaBetaMemory) tableEligible(depth int) bool {
	if m.maxTableDepth == 0 {
		return true
	}
	ply := m.rootDepth - depth
	return ply <= m.maxTableDepth
}

func (m *runAlphaBetaMemory) search(p kalah.Position, depth, alpha, beta int) (int, []int) {
	if isHalted(m.halt) {
		return 0, nil
	}

	eligible := m.tableEligible(depth)

	if value, ok := m.sctx.Endgame.Lookup(p); ok {
		// §4.4.2: an endgame-database hit is exact at any depth, so it is
		// recorded as both bounds with depth = infinity, just like a
		// terminal leaf.
		if eligible {
			m.sctx.TT.Write(p.Hash(), math.MinInt32, math.MaxInt32, math.MaxInt32, value)
		}
		return value, nil
	}

	if eligible {
		if lower, upper, ok := m.sctx.TT.Read(p.Hash()); ok {
			if lower.Depth >= depth && lower.Value >= beta {
				return lower.Value, nil
			}
			if lower.Depth >= depth && lower.Value > alpha {
				alpha = lower.Value
			}
			if upper.Depth >= depth && upper.Value <= alpha {
				return upper.Value, nil
			}
			if upper.Depth >= depth && upper.Value < beta {
				beta = upper.Value
			}
		}
	}

	m.nodes++

	if depth == 0 || p.Terminal {
		value := p.Heuristic()
		if eligible {
			m.sctx.TT.Write(p.Hash(), alpha, beta, depth, value)
		}
		return value, nil
	}

	children := p.Children(m.sctx.children(depth))

	var value int
	var pv []int
	if p.Turn {
		a := alpha
		value = minInt
		for _, c := range children {
			s, rem := m.search(c.Position, depth-1, a, beta)
			if s > value {
				value = s
				pv = prepend(c.Move, rem)
			}
			if value >= beta {
				break
			}
			if value > a {
				a = value
			}
		}
	} else {
		b := beta
		value = maxInt
		for _, c := range children {
			s, rem := m.search(c.Position, depth-1, alpha, b)
			if s < value {
				value = s
				pv = prepend(c.Move, rem)
			}
			if value <= alpha {
				break
			}
			if value < b {
				b = value
			}
		}
	}

	if eligible {
		m.sctx.TT.Write(p.Hash(), alpha, beta, depth, value)
	}
	return value, pv
}
