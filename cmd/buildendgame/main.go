// buildendgame is a one-shot tool that builds a Kalah(6,4) endgame database
// to a given stones-in-play ceiling and writes it to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/seekerror/logw"
)

var (
	maxStones = flag.Int("max-stones", 20, "Largest stones-in-play count to solve")
	workers   = flag.Int("workers", 0, "Parallel workers per level (zero means GOMAXPROCS)")
	out       = flag.String("out", "endgames.bin", "Output file path")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	logw.Infof(ctx, "Building endgame database: max_stones=%v, workers=%v", *maxStones, *workers)

	t := endgame.NewTable(*maxStones)

	start := time.Now()
	if err := t.Build(ctx, *workers); err != nil {
		logw.Exitf(ctx, "Build failed: %v", err)
	}
	logw.Infof(ctx, "Build finished in %v", time.Since(start))

	f, err := os.Create(*out)
	if err != nil {
		logw.Exitf(ctx, "Failed to create %v: %v", *out, err)
	}
	defer f.Close()

	n, err := t.WriteTo(f)
	if err != nil {
		logw.Exitf(ctx, "Failed to write %v: %v", *out, err)
	}
	fmt.Printf("Wrote %v bytes to %v\n", n, *out)
}
