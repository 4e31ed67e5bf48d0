package endgame

import "github.com/herohde/kalah/pkg/kalah"

// pitsNoStores is the number of playing pits across both sides (the stores
// hold captured stones and are never sown into during indexing).
const pitsNoStores = kalah.PitsPerSide * 2

// indexer implements the stars-and-bars perfect hash over distributions of
// stones across the 12 playing pits: it maps a Position with a known
// stones-in-play count to a dense table offset, and back. Grounded on the
// combinatorial indexing scheme of the reference solver this package
// generalizes from a HashMap-keyed table to a flat, file-persistable array.
//
// cache[s][k] is the number of distinct ways to distribute s stones across
// k pits (stars and bars: C(s+k-1, k-1), or 1 when s == 0). The table is
// laid out in blocks ordered by increasing stones in play; cache[s][13]
// (the 13th "virtual" pit absorbs the stones not yet accounted for) gives
// the cumulative size of every block for at most s stones, which doubles
// as the starting offset of the (s+1)-stones block.
type indexer struct {
	cache     [][]uint64 // cache[s][pits], pits in [0, pitsNoStores+1]
	maxStones int
}

func newIndexer(maxStones int) *indexer {
	b := newBinomial(maxStones + pitsNoStores + 1)

	cache := make([][]uint64, maxStones+1)
	for s := 0; s <= maxStones; s++ {
		row := make([]uint64, pitsNoStores+2)
		for pits := 1; pits <= pitsNoStores+1; pits++ {
			row[pits] = numGameStates(b, s, pits)
		}
		cache[s] = row
	}
	return &indexer{cache: cache, maxStones: maxStones}
}

func numGameStates(b *binomial, stones, pits int) uint64 {
	if stones == 0 {
		return 1
	}
	return b.c(stones+pits-1, pits-1)
}

// numGameStatesFullBoard returns the number of distinct distributions of
// exactly stones stones across the 12 playing pits.
func (x *indexer) numGameStatesFullBoard(stones int) uint64 {
	return x.cache[stones][pitsNoStores]
}

// totalNumGameStatesFullBoard returns the number of distinct distributions
// of at most stones stones across the 12 playing pits, i.e. the size of
// the table covering stones-in-play counts 0..=stones.
func (x *indexer) totalNumGameStatesFullBoard(stones int) uint64 {
	return x.cache[stones][pitsNoStores+1]
}

// Index returns p's offset into the whole table: the start of its
// stones-in-play block plus its rank within that block. It visits the
// side to move's own six pits in full, then the opponent's first five
// pits (the sixth is implied by stone conservation and never stored),
// accumulating the stars-and-bars rank of the distribution. remainingStones
// must equal the number of stones p has in play (the sum of its twelve
// playing pits).
func (x *indexer) Index(p kalah.Position, remainingStones int) uint64 {
	if remainingStones == 0 {
		return 0
	}

	remaining := remainingStones
	index := x.cache[remaining-1][pitsNoStores+1]

	ownStart, ownEnd := p.OwnPits()
	oppStart, _ := p.OpponentPits()

	freePits := pitsNoStores - 1 // counts down 11..1 across the 11 free slots
	for i := ownStart; i < ownEnd; i++ {
		remaining -= int(p.Pits[i])
		if remaining == 0 {
			return index
		}
		index += x.cache[remaining-1][freePits+1]
		freePits--
	}
	for k := 0; k < kalah.PitsPerSide-1; k++ {
		remaining -= int(p.Pits[oppStart+k])
		if remaining == 0 {
			return index
		}
		index += x.cache[remaining-1][freePits+1]
		freePits--
	}
	return index
}

// pitOrder lists the 12 playing-pit board indices in the same own-then-
// opponent order Index walks, for the side to move in p.
func pitOrder(p kalah.Position) [pitsNoStores]int {
	var order [pitsNoStores]int
	ownStart, ownEnd := p.OwnPits()
	oppStart, _ := p.OpponentPits()

	n := 0
	for i := ownStart; i < ownEnd; i++ {
		order[n] = i
		n++
	}
	for k := 0; k < kalah.PitsPerSide; k++ {
		order[n] = oppStart + k
		n++
	}
	return order
}

// PositionAt reconstructs the Position at the given table index, which must
// lie within the totalStones-stones-in-play block, with the side to move
// fixed to Player 1 and both stores empty (Build uses it as is). It is the
// exact inverse of Index for every index in
// [totalNumGameStatesFullBoard(totalStones-1), totalNumGameStatesFullBoard(totalStones)),
// or index 0 when totalStones is 0.
func (x *indexer) PositionAt(index uint64, totalStones int) kalah.Position {
	var p kalah.Position
	p.Turn = true

	if totalStones == 0 {
		return p
	}

	order := pitOrder(p)

	remaining := totalStones
	guess := x.totalNumGameStatesFullBoard(totalStones - 1)

	for slot := 0; slot < pitsNoStores; slot++ {
		freePits := pitsNoStores - slot

		var stones int
		for n := remaining; n >= 0; n-- {
			newRemaining := remaining - n
			var newGuess uint64
			if newRemaining == 0 {
				newGuess = guess
			} else {
				newGuess = guess + x.cache[newRemaining-1][freePits]
			}

			if newGuess >= index {
				if newGuess == index {
					p.Pits[order[slot]] = int8(n)
					if newRemaining != 0 && slot+1 < pitsNoStores {
						p.Pits[order[slot+1]] = int8(newRemaining)
					}
					return p
				}
				stones = n + 1
				break
			}
		}

		p.Pits[order[slot]] = int8(stones)
		remaining -= stones
		if remaining == 0 {
			return p
		}
		guess += x.cache[remaining-1][freePits]
	}

	return p
}
