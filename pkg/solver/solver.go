// Package solver is the facade over pkg/search and pkg/endgame: the
// session-level entry point a caller (CLI, engine, test) uses to actually
// evaluate and play Kalah(6,4), without touching the search algorithms or
// endgame indexing directly.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/herohde/kalah/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ErrNoBestMove is returned when a search produces no usable principal
// variation and the position has no legal move to fall back on, e.g. a
// terminal position.
var ErrNoBestMove = errors.New("solver: no best move found")

// Solver bundles the shared state a session of play or analysis needs: a
// transposition table reused across searches, and an optional endgame
// database consulted whenever a position's stones in play fall within its
// built range.
type Solver struct {
	TT       search.TranspositionTable
	Table    *endgame.Table
	MaxDepth int // iterative MTD(f) depth ceiling before the unlimited phase
}

// New returns a Solver with a freshly allocated transposition table of the
// given size (in bytes, rounded down to a power-of-two entry count) and no endgame
// database. Use WithTable to attach one.
func New(ctx context.Context, ttSize uint64, maxDepth int) *Solver {
	return &Solver{
		TT:       search.NewTranspositionTable(ctx, ttSize),
		MaxDepth: maxDepth,
	}
}

// WithTable attaches an endgame database, consulted by every subsequent search.
func (s *Solver) WithTable(t *endgame.Table) *Solver {
	s.Table = t
	return s
}

func (s *Solver) endgameTable() search.EndgameTable {
	if s.Table == nil {
		return search.NoEndgameTable{}
	}
	return s.Table
}

// AnalyseToDepth runs iterative MTD(f) from depth (maxDepth mod 2) up to
// maxDepth in steps of two (or until the time control, if any, elapses),
// emitting one PV per completed depth. The returned channel is closed when
// the search is done; it never blocks writers, mirroring
// searchctl.Iterative's single-slot channel.
func (s *Solver) AnalyseToDepth(ctx context.Context, p kalah.Position, maxDepth int) <-chan search.PV {
	launcher := &searchctl.Iterative{Root: search.MTDF{Root: search.AlphaBetaMemory{}}}
	opt := searchctl.Options{DepthLimit: lang.Some(uint(maxDepth))}

	_, out := launcher.Launch(ctx, p, s.TT, s.endgameTable(), opt)
	return out
}

// StrongSolve computes the exact game-theoretic value of p and the move
// that achieves it. It first runs iterative MTD(f) to MaxDepth, then, if
// p's stones in play fall within the endgame database's built range,
// continues with an unlimited MTD(f) pass to the exact end of the game.
// If the position's stones in play exceed the database's range,
// StrongSolve returns before the unlimited phase and reports
// endgame.ErrInsufficientTable wrapped alongside the best depth-limited
// result's move and value, leaving the caller to decide whether an
// approximate answer is acceptable.
func (s *Solver) StrongSolve(ctx context.Context, p kalah.Position) (int, int, error) {
	sctx := &search.Context{TT: s.TT, Endgame: s.endgameTable()}

	driver := search.MTDF{Root: search.AlphaBetaMemory{}}

	// §4.4.4: g=0, d = MaxDepth mod 2, incrementing by two so d lands
	// exactly on MaxDepth regardless of its parity.
	guess := 0

	var nodes uint64
	var pv []int
	for depth := s.MaxDepth % 2; depth <= s.MaxDepth; depth += 2 {
		n, value, moves, err := driver.Search(ctx, sctx, p, depth, guess, guess, nil)
		if err != nil {
			return 0, 0, fmt.Errorf("solver: depth-limited search failed: %w", err)
		}
		nodes += n
		guess = value
		pv = moves
	}

	move, ok := bestMove(pv)
	if !ok {
		if move, ok = bestRootMove(sctx, p); !ok {
			return 0, 0, ErrNoBestMove
		}
	}

	if s.Table == nil || !s.Table.Covers(p) {
		logw.Debugf(ctx, "StrongSolve: %v exceeds endgame table range, returning depth-limited result", p)
		return move, guess, fmt.Errorf("%w", endgame.ErrInsufficientTable)
	}

	unlimited := search.MTDF{Root: search.Unlimited{}}
	_, value, moves, err := unlimited.Search(ctx, sctx, p, 0, guess, guess, nil)
	if err != nil {
		return move, guess, fmt.Errorf("solver: unlimited search failed: %w", err)
	}

	if final, ok := bestMove(moves); ok {
		move = final
	}
	return move, value, nil
}

func bestMove(pv []int) (int, bool) {
	if len(pv) == 0 {
		return 0, false
	}
	return pv[0], true
}

// bestRootMove falls back to an explicit one-ply comparison of the root's
// children when a search returns no principal variation (e.g. a zero-depth
// search at a terminal-adjacent position): it picks the child with the best
// 6-ply plain alpha-beta value, without consulting the endgame database or
// reusing the search's own node exploration.
func bestRootMove(sctx *search.Context, p kalah.Position) (int, bool) {
	children := p.Children(nil)
	if len(children) == 0 {
		return 0, false
	}

	alg := search.AlphaBeta{}
	best := children[0].Move
	bestValue := worstPossibleValue(p.Turn)

	for _, c := range children {
		_, value, _, err := alg.Search(context.Background(), sctx, c.Position, 6, -1<<30, 1<<30, nil)
		if err != nil {
			continue
		}
		if p.Turn && value > bestValue || !p.Turn && value < bestValue {
			bestValue = value
			best = c.Move
		}
	}
	return best, true
}

func worstPossibleValue(maximizing bool) int {
	if maximizing {
		return -1 << 30
	}
	return 1 << 30
}
