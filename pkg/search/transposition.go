package search

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"sync/atomic"
	"unsafe"

	"github.com/seekerror/logw"
)

// Bound records a single depth-qualified score bound: the search that
// produced it explored to Depth plies of remaining depth, so the bound is
// only safe to reuse at a depth less than or equal to Depth.
type Bound struct {
	Value int
	Depth int
}

var (
	noLowerBound = Bound{Value: math.MinInt32, Depth: 0}
	noUpperBound = Bound{Value: math.MaxInt32, Depth: 0}
)

// TranspositionTable caches, per position, the tightest lower and upper
// score bounds established so far. The two independent bounds let a
// fail-low result from one search narrow a later search's window without
// overwriting an unrelated fail-high result for the same position. Must be
// safe for concurrent use.
type TranspositionTable interface {
	// Read returns the lower and upper bounds recorded for hash, if the
	// position has been visited before.
	Read(hash uint64) (lower, upper Bound, ok bool)
	// Write records the outcome of searching hash with window [alpha,beta)
	// to the given remaining depth, classifying it as a fail-low (new upper
	// bound), exact (both bounds) or fail-high (new lower bound) result.
	Write(hash uint64, alpha, beta, depth, value int)

	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
}

type TranspositionTableFactory func(ctx context.Context, size uint64) TranspositionTable

// entry is the immutable snapshot stored per slot; a write always replaces
// the whole entry via CAS rather than mutating fields in place, so a reader
// never observes a torn lower/upper pair.
type entry struct {
	hash  uint64
	lower Bound
	upper Bound
}

// table is a lock-free transposition table addressed by the low bits of the
// position hash. Collisions are resolved by unconditional overwrite: Kalah's
// search depths and branching factor are small enough that a
// replacement-priority scheme, as worthwhile for chess's much larger tree,
// isn't worth the complexity here.
type table struct {
	slots []unsafe.Pointer // *entry
	mask  uint64
	used  uint64
}

// NewTranspositionTable allocates a table sized to the largest power of two
// number of 32-byte entries that fits within size bytes.
func NewTranspositionTable(ctx context.Context, size uint64) TranspositionTable {
	n := uint64(1 << (63 - 5 - bits.LeadingZeros64(size)))

	logw.Infof(ctx, "allocating %vMB transposition table with %v entries", size>>20, n)

	return &table{
		slots: make([]unsafe.Pointer, n),
		mask:  n - 1,
	}
}

func (t *table) Size() uint64 {
	return uint64(len(t.slots)) << 5
}

func (t *table) Used() float64 {
	return float64(t.used) / float64(len(t.slots))
}

func (t *table) Read(hash uint64) (Bound, Bound, bool) {
	key := hash & t.mask
	addr := &t.slots[key]

	ptr := (*entry)(atomic.LoadPointer(addr))
	if ptr != nil && ptr.hash == hash {
		return ptr.lower, ptr.upper, true
	}
	return Bound{}, Bound{}, false
}

func (t *table) Write(hash uint64, alpha, beta, depth, value int) {
	key := hash & t.mask
	addr := &t.slots[key]

	for {
		old := (*entry)(atomic.LoadPointer(addr))

		next := &entry{hash: hash, lower: noLowerBound, upper: noUpperBound}
		if old != nil && old.hash == hash {
			next.lower, next.upper = old.lower, old.upper
		}

		switch {
		case value <= alpha:
			// Fail low: the true value is at most what we found.
			next.upper = Bound{Value: value, Depth: depth}
		case value < beta:
			// Inside the window: an exact value.
			next.lower = Bound{Value: value, Depth: depth}
			next.upper = Bound{Value: value, Depth: depth}
		default:
			// Fail high: the true value is at least what we found.
			next.lower = Bound{Value: value, Depth: depth}
		}

		if atomic.CompareAndSwapPointer(addr, unsafe.Pointer(old), unsafe.Pointer(next)) {
			if old == nil {
				t.used++
			}
			return
		}
	}
}

func (t *table) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a Nop implementation, useful for benchmarking the
// cost of memoization or for searches shallow enough that it isn't worth it.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Read(hash uint64) (Bound, Bound, bool) { return Bound{}, Bound{}, false }
func (NoTranspositionTable) Write(hash uint64, alpha, beta, depth, value int) {}
func (NoTranspositionTable) Size() uint64                                    { return 0 }
func (NoTranspositionTable) Used() float64                                   { return 0 }
