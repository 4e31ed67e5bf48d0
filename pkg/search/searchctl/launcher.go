// Package searchctl wraps the synchronous search algorithms in package
// search with an asynchronous iterative-deepening harness: a caller
// launches a search from a Position, receives progressively deeper PVs on
// a channel, and can halt it at any time from another goroutine.
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic search options. The caller may change these between
// launches.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth; a limit of
	// zero runs a single depth-0 search. If unset, there is no limit.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given thinking budget.
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher manages asynchronous searches.
type Launcher interface {
	// Launch a new search from the given position and returns a PV channel
	// for iteratively deeper searches. If the search is exhausted, the
	// channel is closed. The search can be stopped at any time via Handle.
	Launch(ctx context.Context, p kalah.Position, tt search.TranspositionTable, endgame search.EndgameTable, opt Options) (Handle, <-chan search.PV)
}

// Handle lets a caller manage a launched search. The caller is expected to
// spin off searches and halt/abandon them when no longer needed.
type Handle interface {
	// Halt halts the search, if running, and returns its last completed PV. Idempotent.
	Halt() search.PV
}
