// kalah is a strong solver and text REPL for Kalah(6,4).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/herohde/kalah/pkg/engine"
	"github.com/herohde/kalah/pkg/engine/console"
	"github.com/herohde/kalah/pkg/search"
	"github.com/herohde/kalah/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var (
	depth       = flag.Uint("depth", 10, "Default search depth limit")
	hash        = flag.Uint("hash", 64, "Transposition table size, in MB (zero disables it)")
	endgamePath = flag.String("endgame", "", "Path to a precomputed endgame database (endgame.Table.WriteTo format); empty disables it")
	mode        = flag.String("mode", "play", "Mode: 'play' (console REPL) or 'analyse' (print an iterative-deepening analysis of the standard opening and exit)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: kalah [options]

kalah is a solver and REPL for Kalah(6,4).
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	var opts []engine.Option
	opts = append(opts, engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash}))

	if *endgamePath != "" {
		f, err := os.Open(*endgamePath)
		if err != nil {
			logw.Exitf(ctx, "Failed to open endgame database %v: %v", *endgamePath, err)
		}
		t, err := endgame.ReadFrom(f)
		_ = f.Close()
		if err != nil {
			logw.Exitf(ctx, "Failed to read endgame database %v: %v", *endgamePath, err)
		}
		logw.Infof(ctx, "Loaded endgame database: max_stones=%v", t.MaxStones())
		opts = append(opts, engine.WithEndgameTable(t))
	}

	root := search.MTDF{Root: search.AlphaBetaMemory{}}
	e := engine.New(ctx, "kalah", "herohde", root, opts...)

	switch *mode {
	case "play":
		in := engine.ReadStdinLines(ctx)
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case "analyse":
		out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(*depth)})
		if err != nil {
			logw.Exitf(ctx, "Analyze failed: %v", err)
		}
		for pv := range out {
			fmt.Println(pv.String())
		}

	default:
		flag.Usage()
		logw.Exitf(ctx, "Mode not supported: %v", *mode)
	}
}
