package kalah_test

import (
	"testing"

	"github.com/herohde/kalah/pkg/kalah"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultPosition(t *testing.T) {
	p := kalah.NewDefaultPosition()

	assert.True(t, p.Turn)
	assert.False(t, p.Terminal)
	assert.Equal(t, kalah.TotalStones, sumPits(p))
	assert.Equal(t, 0, p.Heuristic())
}

func TestChildren_EmptyIffTerminalOrNoStones(t *testing.T) {
	p := kalah.NewDefaultPosition()
	children := p.Children(nil)
	assert.Len(t, children, 6, "all six pits are playable from the opening")

	var empty kalah.Position
	empty.Terminal = true
	assert.Empty(t, empty.Children(nil))

	var noStones kalah.Position
	noStones.Turn = true
	assert.Empty(t, noStones.Children(nil), "a side to move with all-empty pits has no children")
}

func TestChildren_ConserveStonesAndEmptySourcePit(t *testing.T) {
	p := kalah.NewDefaultPosition()
	for _, c := range p.Children(nil) {
		assert.Equal(t, kalah.TotalStones, sumPits(c.Position), "move %d must conserve total stones", c.Move)
		if c.Position.Pits[c.Move] != 0 {
			// Only true when the move sowed all the way back into its own
			// source pit, which cannot happen from the 4-stone opening.
			t.Fatalf("move %d left its source pit non-empty from the opening", c.Move)
		}
	}
}

func TestChildren_FreeTurnMovesOrderedFirst(t *testing.T) {
	p := kalah.NewDefaultPosition()
	children := p.Children(nil)

	sawOther := false
	for _, c := range children {
		grantsFreeTurn := c.Position.Turn == p.Turn
		if sawOther {
			assert.False(t, grantsFreeTurn, "move %d: free-turn moves must precede all others", c.Move)
		}
		if !grantsFreeTurn {
			sawOther = true
		}
	}
}

func TestMakeMove_ExtraTurnFromOpening(t *testing.T) {
	// From the default opening, sowing pit 2 (4 stones) lands the last seed
	// in P1's own store (pits 3,4,5,6), granting an extra turn.
	p := kalah.NewDefaultPosition()
	next := p.MakeMove(2)

	require.Equal(t, int8(0), next.Pits[2])
	assert.Equal(t, int8(5), next.Pits[3])
	assert.Equal(t, int8(5), next.Pits[4])
	assert.Equal(t, int8(5), next.Pits[5])
	assert.Equal(t, int8(1), next.Pits[kalah.Player1Store])
	assert.True(t, next.Turn, "P1 keeps the turn after landing in its own store")
	assert.False(t, next.Terminal)
	assert.Equal(t, kalah.TotalStones, sumPits(next))
}

func TestMakeMove_Capture(t *testing.T) {
	var p kalah.Position
	p.Turn = true
	p.Pits[0] = 1
	p.Pits[11] = 3

	next := p.MakeMove(0)

	// The lone seed from pit 0 lands in pit 1, which was empty: captures
	// itself plus the opposite pit (11) into P1's store.
	require.Equal(t, int8(0), next.Pits[0])
	assert.Equal(t, int8(0), next.Pits[1])
	assert.Equal(t, int8(0), next.Pits[11])
	assert.Equal(t, int8(4), next.Pits[kalah.Player1Store])
	assert.False(t, next.Turn, "capture is not a free-turn move")
	assert.Equal(t, 4, sumPits(next))
}

func TestMakeMove_Liquidation(t *testing.T) {
	var p kalah.Position
	p.Turn = true
	p.Pits[5] = 1
	p.Pits[kalah.Player1Store] = 10
	p.Pits[kalah.Player2Store] = 5

	next := p.MakeMove(5)

	// The last P1 pit empties out (landing in P1's store, an extra turn).
	// P2's pits were already empty, so both sides are now bare and the game
	// ends with no sweep needed.
	require.True(t, next.Terminal)
	for i := 0; i < kalah.PitsPerSide; i++ {
		assert.Equal(t, int8(0), next.Pits[i])
	}
	for i := kalah.Player1Store + 1; i < kalah.Player2Store; i++ {
		assert.Equal(t, int8(0), next.Pits[i])
	}
	assert.Equal(t, int8(11), next.Pits[kalah.Player1Store])
	assert.Equal(t, int8(5), next.Pits[kalah.Player2Store])
	assert.Equal(t, 16, sumPits(next))
	assert.Equal(t, 6, next.Heuristic())
}

func TestPosition_HashAndEqual(t *testing.T) {
	a := kalah.NewDefaultPosition()
	b := kalah.NewDefaultPosition()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := a.MakeMove(0)
	assert.False(t, a.Equal(c))
}

func sumPits(p kalah.Position) int {
	sum := 0
	for _, v := range p.Pits {
		sum += int(v)
	}
	return sum
}
