package search

import (
	"context"

	"github.com/herohde/kalah/pkg/kalah"
)

// Minimax implements naive, unpruned minimax search to a fixed depth. It
// exists for correctness comparison against AlphaBeta and AlphaBetaMemory,
// which must agree with it on every position. Pseudo-code:
//
//	function minimax(node, depth) is
//	    if depth = 0 or node is terminal then
//	        return heuristic(node)
//	    if node.turn is maximising then
//	        value := -inf
//	        for each child of node do
//	            value := max(value, minimax(child, depth-1))
//	        return value
//	    else
//	        value := +inf
//	        for each child of node do
//	            value := min(value, minimax(child, depth-1))
//	        return value
type Minimax struct{}

func (Minimax) Search(ctx context.Context, sctx *Context, p kalah.Position, depth, alpha, beta int, halt <-chan struct{}) (uint64, int, []int, error) {
	run := &runMinimax{halt: halt, sctx: sctx}
	value, pv := run.search(p, depth)
	if isHalted(halt) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, value, pv, nil
}

type runMinimax struct {
	sctx  *Context
	nodes uint64
	halt  <-chan struct{}
}

func (m *runMinimax) search(p kalah.Position, depth int) (int, []int) {
	m.nodes++

	if isHalted(m.halt) {
		return 0, nil
	}
	if depth == 0 || p.Terminal {
		return p.Heuristic(), nil
	}

	var pv []int
	children := p.Children(m.sctx.children(depth))

	if p.Turn {
		value := minInt
		for _, c := range children {
			s, rem := m.search(c.Position, depth-1)
			if s > value {
				value = s
				pv = prepend(c.Move, rem)
			}
		}
		return value, pv
	}

	value := maxInt
	for _, c := range children {
		s, rem := m.search(c.Position, depth-1)
		if s < value {
			value = s
			pv = prepend(c.Move, rem)
		}
	}
	return value, pv
}
