package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a Launcher that starts at depth (DepthLimit mod 2), or 0
// with no DepthLimit configured, and deepens two plies per iteration up to
// DepthLimit, feeding each depth's resulting score forward as the next
// depth's first guess (seeded at 0 for the very first iteration). Root is
// expected to be an MTDF (directly, or wrapping AlphaBetaMemory/Unlimited):
// Iterative always calls Search with alpha == beta == the running guess,
// which MTDF interprets as the zero-window starting point and any other
// Search would just treat as a (valid but uninformative) null-window probe.
type Iterative struct {
	Root search.Search
}

func (i *Iterative) Launch(ctx context.Context, p kalah.Position, tt search.TranspositionTable, endgame search.EndgameTable, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, p, tt, endgame, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, p kalah.Position, tt search.TranspositionTable, endgame search.EndgameTable, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	// §4.4.4: start at g=0, d = MaxDepth mod 2 (so d climbs by two and lands
	// exactly on MaxDepth regardless of its parity), and increment d by two
	// each iteration. With no depth limit configured there is no MaxDepth to
	// take the parity of, so depth starts at 0 as if MaxDepth were even.
	guess := 0
	depth := 0
	if limit, ok := opt.DepthLimit.V(); ok {
		depth = int(limit) % 2
	}
	begin := time.Now()
	for !h.quit.IsClosed() {
		start := time.Now()

		sctx := &search.Context{TT: tt, Endgame: endgame}
		nodes, score, moves, err := root.Search(wctx, sctx, p, depth, guess, guess, quitHalt(h))
		if err != nil {
			if err == search.ErrHalted {
				return // Halt was called.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", p, depth, err)
			return
		}
		guess = score

		pv := search.PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}
		if tt != nil {
			pv.Hash = tt.Used()
		}

		logw.Debugf(ctx, "Searched %v: %v", p, pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if useSoft && soft < time.Since(begin) {
			return // halt: exceeded soft time limit. Do not start new search.
		}
		depth += 2
	}
}

// quitHalt adapts the handle's quit signal to the <-chan struct{} halt
// channel Search expects.
func quitHalt(h *handle) <-chan struct{} {
	return h.quit.Closed()
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
