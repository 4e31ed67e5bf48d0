// Package engine encapsulates one session of Kalah(6,4) play or analysis:
// the current Position, search options, and the active search, if any.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/kalah/pkg/endgame"
	"github.com/herohde/kalah/pkg/kalah"
	"github.com/herohde/kalah/pkg/search"
	"github.com/herohde/kalah/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v}", o.Depth, o.Hash)
}

// Engine encapsulates one position, its move history (for takeback) and
// the active search, if any.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	factory  search.TranspositionTableFactory
	opts     Options
	table    *endgame.Table

	p       kalah.Position
	history []kalah.Position
	tt      search.TranspositionTable
	active  searchctl.Handle
	mu      sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithEndgameTable attaches a precomputed endgame database, consulted by
// every subsequent search.
func WithEndgameTable(t *endgame.Table) Option {
	return func(e *Engine) {
		e.table = t
	}
}

func New(ctx context.Context, name, author string, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{Root: root},
		factory:  search.NewTranspositionTable,
	}
	for _, fn := range opts {
		fn(e)
	}

	e.Reset(ctx)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

// Position returns the current position.
func (e *Engine) Position() kalah.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.p
}

// Reset resets the engine to the standard Kalah(6,4) opening.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset, depth=%v, TT=%vMB", e.opts.Depth, e.opts.Hash)

	e.haltSearchIfActive(ctx)

	e.p = kalah.NewDefaultPosition()
	e.history = nil

	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}

	logw.Infof(ctx, "New position: %v", e.p)
}

// Move plays the given pit (0-based, relative to the side to move's own
// six pits) on the current position.
func (e *Engine) Move(ctx context.Context, pit int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	start, end := e.p.OwnPits()
	src := start + pit
	if pit < 0 || pit >= end-start || e.p.Pits[src] == 0 {
		return fmt.Errorf("illegal move: pit %v", pit)
	}

	e.haltSearchIfActive(ctx)

	e.history = append(e.history, e.p)
	e.p = e.p.MakeMove(src)

	logw.Infof(ctx, "Move %v: %v", pit, e.p)
	return nil
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.history) == 0 {
		return fmt.Errorf("no move to take back")
	}

	e.haltSearchIfActive(ctx)

	e.p = e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]

	logw.Infof(ctx, "Takeback: %v", e.p)
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.p, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	var endgameTable search.EndgameTable = search.NoEndgameTable{}
	if e.table != nil {
		endgameTable = e.table
	}

	handle, out := e.launcher.Launch(ctx, e.p, e.tt, endgameTable, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.p, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
