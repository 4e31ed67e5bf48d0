// Package console implements the Kalah(6,4) text REPL: the human enters a
// pit letter A-F (the side to move's pits, left to right) or "undo". A pit
// letter is not answered automatically; an "analyze" command runs a search
// and, when it completes, prints the bot's chosen letter and the position
// evaluation. It is a
// thin, out-of-core consumer of package engine's facade, never the core
// rule or search logic itself.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/herohde/kalah/pkg/engine"
	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/herohde/kalah/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

const ProtocolName = "console"

const pitLetters = "ABCDEF"

// Driver implements the console REPL described above. Lines come in on in
// and responses go out on the returned channel; NewDriver spins off its own
// goroutine, so the caller only needs to wire up stdin/stdout (or a test
// harness) via engine.ReadStdinLines/WriteStdoutLines.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // human is waiting for the engine's move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "reset", "r":
				d.ensureInactive(ctx)
				d.e.Reset(ctx)
				d.printBoard(ctx)

			case "undo", "u":
				d.ensureInactive(ctx)

				if err := d.e.TakeBack(ctx); err != nil {
					d.out <- fmt.Sprintf("cannot undo: %v", err)
				}
				d.printBoard(ctx)

			case "print", "p":
				d.printBoard(ctx)

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					opt.DepthLimit = lang.Some(uint(depth))
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.out <- pv.String()
					}
					d.searchCompleted(last)
				}()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(uint(depth))
				}

			case "hash": // size in MB
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "nohash":
				d.e.SetHash(0)

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume a pit letter if not a recognized command; invalid
				// input is reported and the REPL re-prompts, never errors out.

				d.ensureInactive(ctx)
				if pit, ok := parsePitLetter(cmd); ok {
					if err := d.e.Move(ctx, pit); err != nil {
						d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
					} else {
						d.printBoard(ctx)
					}
				} else {
					d.out <- fmt.Sprintf("invalid input: '%v'", cmd)
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// parsePitLetter maps A-F (either case) to a 0-based pit offset.
func parsePitLetter(s string) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	idx := strings.IndexByte(pitLetters, strings.ToUpper(s)[0])
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

func pitLetter(pit int) string {
	if pit < 0 || pit >= len(pitLetters) {
		return "?"
	}
	return string(pitLetters[pit])
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		if move, ok := pv.BestMove(); ok {
			start, _ := d.e.Position().OwnPits()
			d.out <- fmt.Sprintf("bot plays %v (eval=%v)", pitLetter(move-start), pv.Score)
		}
	} // else: stale or duplicate result
}

func (d *Driver) printBoard(ctx context.Context) {
	p := d.e.Position()

	d.out <- ""
	d.out <- renderBoard(p)
	d.out <- fmt.Sprintf("turn: %v, terminal: %v", turnLabel(p), p.Terminal)
	d.out <- ""
}

// renderBoard prints the board as two pit rows around the two stores,
// following the mancala "pretty print" convention: P2's pits run right to
// left above P2's store, P1's pits run left to right below P1's store.
func renderBoard(p kalah.Position) string {
	var sb strings.Builder

	sb.WriteString("     ")
	for i := kalah.Player2Store - 1; i > kalah.Player1Store; i-- {
		fmt.Fprintf(&sb, "%3d ", p.Pits[i])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "%3d  ", p.Pits[kalah.Player2Store])
	sb.WriteString(strings.Repeat("    ", kalah.PitsPerSide))
	fmt.Fprintf(&sb, "%3d\n", p.Pits[kalah.Player1Store])

	sb.WriteString("     ")
	for i := 0; i < kalah.Player1Store; i++ {
		fmt.Fprintf(&sb, "%3d ", p.Pits[i])
	}
	sb.WriteString("\n     ")
	for i := 0; i < kalah.PitsPerSide; i++ {
		fmt.Fprintf(&sb, "  %v ", pitLetter(i))
	}

	return sb.String()
}

func turnLabel(p kalah.Position) string {
	if p.Turn {
		return "1"
	}
	return "2"
}
