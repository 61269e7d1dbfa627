package reflow

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/pages"
)

// Engine closes wasted vertical space in a paginated block flow
type Engine struct {
	config Config
	log    *slog.Logger
}

// NewEngine creates an engine with default configuration
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultConfig())
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(config Config) *Engine {
	return &Engine{
		config: config,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for pass-level diagnostics
func (e *Engine) WithLogger(log *slog.Logger) *Engine {
	if log != nil {
		e.log = log
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// ApplyAutoReflow closes gaps between blocks and pushes blocks off page
// boundaries. Gaps are found on pages starting at margin; boundaries are
// multiples of pageHeight from y=0, where the document is cut when it is
// printed. The input is not modified.
//
// Running it again on the returned blocks moves nothing.
func (e *Engine) ApplyAutoReflow(blocks []model.Block, pageHeight, margin float64) Result {
	if len(blocks) == 0 {
		return emptyResult()
	}
	f := newFlow(blocks)
	r := newReport()
	e.reflow(f, r, pageHeight, margin)
	return r.result(f)
}

// reflow alternates gap filling and boundary fixes until neither changes
// anything
func (e *Engine) reflow(f *flow, r *report, pageHeight, margin float64) {
	if f.len() == 0 || pageHeight <= 0 {
		return
	}

	limit := e.config.maxPasses(f.len())
	for pass := 1; pass <= limit; pass++ {
		moved := e.fillGaps(f, r, pageHeight, margin)
		if moved > 0 {
			e.log.Debug("reflow pass", "pass", pass, "moved", moved)
			continue
		}
		pushed := e.preventSplits(f, r, pageHeight)
		e.log.Debug("reflow pass", "pass", pass, "pushed", pushed)
		if pushed == 0 {
			return
		}
	}

	e.log.Warn("reflow did not settle", "passes", limit, "blocks", f.len())
	e.preventSplits(f, r, pageHeight)
}

// fillGaps walks every gap of the current layout and pulls following blocks
// up into it. It returns the number of blocks moved.
func (e *Engine) fillGaps(f *flow, r *report, pageHeight, margin float64) int {
	layout := pages.Assign(f.blocks, pageHeight, margin)
	gaps := pages.FindGaps(layout, e.config.MinGap)

	moved := 0
	for _, gap := range gaps {
		start, cursor := e.gapOrigin(f, layout[gap.PageIndex], gap)
		if start < 0 {
			continue
		}
		moved += e.fillGap(f, r, gap, start, cursor, pageHeight)
	}
	return moved
}

// gapOrigin returns the first block that may move into a gap and the offset
// its new position is measured from. Positions are read from the live flow
// since earlier gaps on the same sweep may already have moved blocks.
func (e *Engine) gapOrigin(f *flow, page model.Page, gap model.Gap) (int, float64) {
	if gap.Anchored() {
		i := f.indexOf(gap.AfterID)
		if i < 0 {
			return -1, 0
		}
		return i + 1, f.blocks[i].Bottom()
	}

	// Top of page or empty page: candidates begin below the page start
	for i, b := range f.blocks {
		if b.Top > page.StartY {
			cursor := page.StartY
			if i > 0 {
				cursor = math.Max(cursor, f.blocks[i-1].Bottom())
			}
			return i, cursor
		}
	}
	return -1, 0
}

// fillGap moves blocks from start onward up behind cursor while they fit.
// The walk stops at the first block that cannot move so document order is
// kept.
func (e *Engine) fillGap(f *flow, r *report, gap model.Gap, start int, cursor, pageHeight float64) int {
	remaining := gap.Size
	moved := 0

	for i := start; i < f.len(); i++ {
		b := f.blocks[i]
		if b.Pinned && e.config.PreserveIntentionalSpacing {
			break
		}
		if b.Height > remaining {
			break
		}
		dest := cursor + e.config.Spacing
		distance := b.Top - dest
		if distance <= e.config.MinMove {
			break
		}
		if pages.Straddles(b.Shift(-distance), pageHeight, 0) {
			break
		}

		f.shift(i, -distance)
		r.move(fmt.Sprintf("Moved %s up by %.0fpx to fill gap on page %d",
			label(b), distance, gap.PageIndex+1))
		moved++

		remaining -= b.Height
		cursor = f.blocks[i].Bottom()
	}
	return moved
}

// preventSplits pushes every block crossing a page boundary to just below
// the boundary. Boundaries sit at multiples of pageHeight from y=0 whatever
// the margin. Pushes are reported but not counted as moves. Blocks too tall
// to fit any page are left alone.
func (e *Engine) preventSplits(f *flow, r *report, pageHeight float64) int {
	pushed := 0
	for i := 0; i < f.len(); i++ {
		b := f.blocks[i]
		if !pages.Straddles(b, pageHeight, 0) {
			continue
		}
		if b.Height > pageHeight-e.config.BoundaryInset {
			continue
		}

		last := pages.Index(math.Nextafter(b.Bottom(), math.Inf(-1)), pageHeight, 0)
		target := pages.PageStart(last, pageHeight, 0) + e.config.BoundaryInset
		f.shift(i, target-b.Top)
		r.note(fmt.Sprintf("Adjusted %s to avoid page break cut", label(b)))
		pushed++
	}
	return pushed
}

// ApplyAutoReflow runs the default engine. When preserveIntentionalSpacing is
// set, pinned blocks are never moved into a gap.
func ApplyAutoReflow(blocks []model.Block, pageHeight, margin float64, preserveIntentionalSpacing bool) Result {
	cfg := DefaultConfig()
	cfg.PreserveIntentionalSpacing = preserveIntentionalSpacing
	return NewEngineWithConfig(cfg).ApplyAutoReflow(blocks, pageHeight, margin)
}
