package search

import (
	"fmt"
	"time"
)

// PV represents the principal variation found for some search depth: the
// sequence of moves (pit indices) the search believes both sides will play,
// and the value of the root position under that line.
type PV struct {
	Depth int           // depth of search, in plies
	Moves []int         // principal variation, root move first
	Score int           // value at Depth, as P1's store minus P2's store
	Nodes uint64        // interior/leaf nodes searched
	Time  time.Duration // time taken by search
	Hash  float64       // transposition table used [0;1]
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v hash=%v%% pv=%v", p.Depth, p.Score, p.Nodes, p.Time, int(100*p.Hash), p.Moves)
}

// BestMove returns the root move of the principal variation, if any.
func (p PV) BestMove() (int, bool) {
	if len(p.Moves) == 0 {
		return 0, false
	}
	return p.Moves[0], true
}
