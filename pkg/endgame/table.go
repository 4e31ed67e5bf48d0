// Package endgame builds and serves a retrograde-populated database of
// exact game values for Kalah(6,4) positions with few enough stones still
// in play, keyed by a combinatorial (stars-and-bars) perfect hash rather
// than a general-purpose map.
package endgame

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/seekerror/logw"
)

// ErrInsufficientTable is returned by callers that require a position's
// stones-in-play count to fall within a Table's built range before running
// an unbounded search against it (see package solver's StrongSolve).
var ErrInsufficientTable = errors.New("endgame: position exceeds built table range")

const (
	magic          uint32 = 0x4b414c48 // "KALH"
	formatVersion  uint32 = 1
	headerSizeUint        = 3 // magic, version, maxStones: three uint32 fields
)

// Table is an exact evaluation database over every distribution of at most
// MaxStones() stones across the twelve playing pits. Entries are stored
// canonically (mover's own pits first, both stores at zero) and adjusted
// to the real position's turn and store counts on Lookup, so the same
// physical database serves both sides to move.
type Table struct {
	idx    *indexer
	values []int8

	// built is the highest stones-in-play count whose block is fully
	// populated; it gates Lookup exactly as the reference solver's
	// current_stones watermark does, so a Table under construction can
	// safely serve as its own EndgameTable for the levels below the one
	// it is currently computing.
	built int64
}

// NewTable allocates (but does not populate) a Table covering stones-in-play
// counts 0..=maxStones.
func NewTable(maxStones int) *Table {
	idx := newIndexer(maxStones)
	size := idx.totalNumGameStatesFullBoard(maxStones)
	return &Table{idx: idx, values: make([]int8, size), built: -1}
}

// MaxStones returns the largest stones-in-play count this Table was built
// (or loaded) for.
func (t *Table) MaxStones() int { return t.idx.maxStones }

// stonesInPlay returns the number of stones on the board outside both stores.
func stonesInPlay(p kalah.Position) int {
	n := 0
	for i := 0; i < kalah.TotalPits; i++ {
		if i != kalah.Player1Store && i != kalah.Player2Store {
			n += int(p.Pits[i])
		}
	}
	return n
}

// Covers reports whether p's stones-in-play count falls within t's fully
// built range, i.e. whether Lookup(p) can possibly succeed.
func (t *Table) Covers(p kalah.Position) bool {
	return int64(stonesInPlay(p)) <= atomic.LoadInt64(&t.built)
}

// Lookup implements search.EndgameTable. It is safe to call concurrently
// with Build's construction of a higher level: built is only advanced after
// every entry below it has been written.
func (t *Table) Lookup(p kalah.Position) (int, bool) {
	remaining := stonesInPlay(p)
	if int64(remaining) > atomic.LoadInt64(&t.built) {
		return 0, false
	}

	index := t.idx.Index(p, remaining)
	eval := int(t.values[index])

	playerEval := eval
	if !p.Turn {
		playerEval = -eval
	}
	return playerEval + p.Heuristic(), true
}

// Build populates every level from 0 to t.MaxStones(), in increasing
// stones-in-play order. Each level's canonical positions are solved by an
// unlimited alpha-beta search that treats t itself as the endgame table:
// since t.built tracks only fully-completed lower levels, a search started
// at level s only ever gets table hits from levels < s, and otherwise
// recurses to a true terminal, exactly as the level-by-level retrograde
// scheme requires. Levels are solved with workers goroutines in parallel;
// the one genuinely parallel phase of the solver, since a production
// top-level search only ever touches the finished database.
func (t *Table) Build(ctx context.Context, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	for s := 0; s <= t.MaxStones(); s++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lo := uint64(0)
		if s > 0 {
			lo = t.idx.totalNumGameStatesFullBoard(s - 1)
		}
		hi := t.idx.totalNumGameStatesFullBoard(s)

		if err := t.buildLevel(ctx, lo, hi, s, workers); err != nil {
			return err
		}

		atomic.StoreInt64(&t.built, int64(s))
		logw.Infof(ctx, "endgame: built level stones=%v states=%v", s, hi-lo)
	}

	// Index 0 corresponds to the empty board, which is not a reachable game
	// state; the reference solver special-cases it to an exact draw rather
	// than whatever alpha-beta happens to compute for it.
	t.values[0] = 0
	return nil
}

func (t *Table) buildLevel(ctx context.Context, lo, hi uint64, stones, workers int) error {
	var next uint64 = lo
	var mu sync.Mutex

	var wg sync.WaitGroup
	var firstErr error

	const batch = 256
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			sctx := &search.Context{TT: search.NoTranspositionTable{}, Endgame: t}
			alg := search.Unlimited{}

			for {
				mu.Lock()
				if next >= hi || firstErr != nil {
					mu.Unlock()
					return
				}
				start := next
				end := start + batch
				if end > hi {
					end = hi
				}
				next = end
				mu.Unlock()

				for i := start; i < end; i++ {
					p := t.idx.PositionAt(i, stones)
					// PositionAt enumerates raw stone distributions with
					// Terminal always false; mirror the liquidation MakeMove
					// would have applied had this distribution actually been
					// reached by play, so a side with an empty row is scored
					// as the swept endgame it is rather than searched as if
					// play continued.
					p.HandleGameOver()
					_, value, _, err := alg.Search(ctx, sctx, p, 0, math.MinInt32, math.MaxInt32, nil)
					if err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
						return
					}
					t.values[i] = int8(value)
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// WriteTo serializes the table as a magic+version+maxStones header followed
// by the raw evaluation bytes, all little-endian. The header guards against
// the silent cross-endian misdecoding a bare length-prefixed dump would
// risk.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	var header [headerSizeUint * 4]byte
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint32(header[8:12], uint32(t.MaxStones()))
	if _, err := bw.Write(header[:]); err != nil {
		return 0, err
	}

	for _, v := range t.values {
		if err := bw.WriteByte(byte(v)); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return int64(len(header)) + int64(len(t.values)), nil
}

// ReadFrom decodes a Table previously written by WriteTo and marks every
// level fully built.
func ReadFrom(r io.Reader) (*Table, error) {
	var header [headerSizeUint * 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("endgame: reading header: %w", err)
	}

	gotMagic := binary.LittleEndian.Uint32(header[0:4])
	if gotMagic != magic {
		return nil, fmt.Errorf("endgame: bad magic %#x, want %#x", gotMagic, magic)
	}
	gotVersion := binary.LittleEndian.Uint32(header[4:8])
	if gotVersion != formatVersion {
		return nil, fmt.Errorf("endgame: unsupported format version %v, want %v", gotVersion, formatVersion)
	}
	maxStones := int(binary.LittleEndian.Uint32(header[8:12]))

	t := NewTable(maxStones)

	br := bufio.NewReader(r)
	buf := make([]byte, len(t.values))
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("endgame: reading table body: %w", err)
	}
	for i, b := range buf {
		t.values[i] = int8(b)
	}
	t.built = int64(maxStones)
	return t, nil
}
