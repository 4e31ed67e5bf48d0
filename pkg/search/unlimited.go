package search

import (
	"context"
	"math"

	"github.com/herohde/kalah/pkg/kalah"
)

// Unlimited implements alpha-beta pruning with no depth limit: recursion
// only stops at a true terminal position or an endgame database hit. It is
// only safe to run from positions within (or very close to) the endgame
// database's built range, since otherwise it may not terminate in
// practice; callers are expected to guard that precondition (see package
// solver's StrongSolve).
//
// ply, here, counts plies already played from the position Search was first
// called with (it increases with recursion, unlike AlphaBetaMemory's
// depth, which decreases). Transposition table entries written during an
// unlimited search record depth as math.MaxInt32, so they satisfy any
// future depth-limited read's "recorded at least as deep" check. Reads
// during an unlimited search likewise only trust bounds recorded at that
// depth.
type Unlimited struct {
	// MaxTableDepth bounds how many plies from the root the transposition
	// table is written to. Zero means unbounded.
	MaxTableDepth int
}

const unlimitedDepth = math.MaxInt32

func (p Unlimited) Search(ctx context.Context, sctx *Context, pos kalah.Position, depth, alpha, beta int, halt <-chan struct{}) (uint64, int, []int, error) {
	run := &runUnlimited{halt: halt, sctx: sctx, maxTableDepth: p.MaxTableDepth}
	value, pv := run.search(pos, 0, alpha, beta)
	if isHalted(halt) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, value, pv, nil
}

type runUnlimited struct {
	sctx          *Context
	nodes         uint64
	halt          <-chan struct{}
	maxTableDepth int
}

func (m *runUnlimited) tableEligible(ply int) bool {
	return m.maxTableDepth == 0 || ply <= m.maxTableDepth
}

func (m *runUnlimited) search(p kalah.Position, ply, alpha, beta int) (int, []int) {
	if isHalted(m.halt) {
		return 0, nil
	}

	eligible := m.tableEligible(ply)

	if value, ok := m.sctx.Endgame.Lookup(p); ok {
		// As with a terminal leaf, an endgame-database hit is exact at any
		// depth: record it as both bounds with depth = infinity.
		if eligible {
			m.sctx.TT.Write(p.Hash(), math.MinInt32, math.MaxInt32, unlimitedDepth, value)
		}
		return value, nil
	}

	if eligible {
		if lower, upper, ok := m.sctx.TT.Read(p.Hash()); ok {
			if lower.Depth >= unlimitedDepth && lower.Value >= beta {
				return lower.Value, nil
			}
			if lower.Depth >= unlimitedDepth && lower.Value > alpha {
				alpha = lower.Value
			}
			if upper.Depth >= unlimitedDepth && upper.Value <= alpha {
				return upper.Value, nil
			}
			if upper.Depth >= unlimitedDepth && upper.Value < beta {
				beta = upper.Value
			}
		}
	}

	m.nodes++

	if p.Terminal {
		value := p.Heuristic()
		if eligible {
			m.sctx.TT.Write(p.Hash(), alpha, beta, unlimitedDepth, value)
		}
		return value, nil
	}

	children := p.Children(m.sctx.children(ply))

	var value int
	var pv []int
	if p.Turn {
		a := alpha
		value = minInt
		for _, c := range children {
			s, rem := m.search(c.Position, ply+1, a, beta)
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
			s, rem := m.search(c.Position, ply+1, alpha, b)
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
		m.sctx.TT.Write(p.Hash(), alpha, beta, unlimitedDepth, value)
	}
	return value, pv
}
