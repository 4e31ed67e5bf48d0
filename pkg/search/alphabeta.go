package search

import (
	"context"

	"github.com/herohde/kalah/pkg/kalah"
)

// AlphaBeta implements fail-hard alpha-beta pruning to a fixed depth,
// without consulting a transposition table or endgame database. It is the
// building block AlphaBetaMemory adds memoization to; kept separate so the
// pruning logic itself can be validated against Minimax in isolation.
// Pseudo-code:
//
//	function alphabeta(node, depth, alpha, beta) is
//	    if depth = 0 or node is terminal then
//	        return heuristic(node)
//	    if node.turn is maximising then
//	        value := -inf
//	        for each child of node do
//	            value := max(value, alphabeta(child, depth-1, alpha, beta))
//	            if value >= beta then break  (* beta cutoff *)
//	            alpha := max(alpha, value)
//	        return value
//	    else
//	        value := +inf
//	        for each child of node do
//	            value := min(value, alphabeta(child, depth-1, alpha, beta))
//	            if value <= alpha then break  (* alpha cutoff *)
//	            beta := min(beta, value)
//	        return value
//
// See: https://en.wikipedia.org/wiki/Alpha–beta_pruning.
type AlphaBeta struct{}

func (AlphaBeta) Search(ctx context.Context, sctx *Context, p kalah.Position, depth, alpha, beta int, halt <-chan struct{}) (uint64, int, []int, error) {
	run := &runAlphaBeta{halt: halt, sctx: sctx}
	value, pv := run.search(p, depth, alpha, beta)
	if isHalted(halt) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, value, pv, nil
}

type runAlphaBeta struct {
	sctx  *Context
	nodes uint64
	halt  <-chan struct{}
}

func (m *runAlphaBeta) search(p kalah.Position, depth, alpha, beta int) (int, []int) {
	m.nodes++

	if isHalted(m.halt) {
		return 0, nil
	}
	if depth == 0 || p.Terminal {
		return p.Heuristic(), nil
	}

	children := p.Children(m.sctx.children(depth))

	var pv []int
	if p.Turn {
		value := minInt
		for _, c := range children {
			s, rem := m.search(c.Position, depth-1, alpha, beta)
			if s > value {
				value = s
				pv = prepend(c.Move, rem)
			}
			if value >= beta {
				break
			}
			if value > alpha {
				alpha = value
			}
		}
		return value, pv
	}

	value := maxInt
	for _, c := range children {
		s, rem := m.search(c.Position, depth-1, alpha, beta)
		if s < value {
			value = s
			pv = prepend(c.Move, rem)
		}
		if value <= alpha {
			break
		}
		if value < beta {
			beta = value
		}
	}
	return value, pv
}
