package pageflow

import (
	"fmt"
	"log/slog"

	"github.com/tsawler/pageflow/layout"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/pages"
	"github.com/tsawler/pageflow/reflow"
)

// Flow provides a fluent interface over a geometry snapshot. Each
// configuration method returns a new Flow instance, making it safe for
// concurrent use and allowing method chaining.
type Flow struct {
	blocks  []model.Block
	options FlowOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Flow. Blocks are never modified in place, so
// the slice is shared.
func (f *Flow) clone() *Flow {
	return &Flow{
		blocks:  f.blocks,
		options: f.options.clone(),
		err:     f.err,
	}
}

// PageHeight sets the height of one page in pixels.
//
// Example:
//
//	pages, err := pageflow.FromBlocks(blocks).PageHeight(1000).Pages()
func (f *Flow) PageHeight(h float64) *Flow {
	newF := f.clone()
	if h <= 0 && newF.err == nil {
		newF.err = fmt.Errorf("page height must be positive, got %v", h)
	}
	newF.options.pageHeight = h
	return newF
}

// Paper sets the page height to the printable height of a paper size once
// marginMM is taken from the top and the bottom.
//
// Example:
//
//	result, err := pageflow.FromBlocks(blocks).Paper(model.PaperLetter, 15).Reflow()
func (f *Flow) Paper(size model.PaperSize, marginMM float64) *Flow {
	return f.PageHeight(size.ContentHeightPx(marginMM))
}

// Margin sets the y coordinate where the first page starts. Pages are
// assigned and boundaries enforced relative to it.
func (f *Flow) Margin(m float64) *Flow {
	newF := f.clone()
	newF.options.margin = m
	return newF
}

// IgnoreIntentionalSpacing lets reflow close the space above pinned blocks
// too. By default a pinned block keeps the spacing above it.
func (f *Flow) IgnoreIntentionalSpacing() *Flow {
	newF := f.clone()
	newF.options.keepSpacing = false
	return newF
}

// ReflowConfig replaces the reflow tunables. The intentional spacing setting
// of the Flow still applies.
func (f *Flow) ReflowConfig(config reflow.Config) *Flow {
	newF := f.clone()
	newF.options.reflow = config
	return newF
}

// PlannerConfig replaces the break planner configuration.
func (f *Flow) PlannerConfig(config layout.PlannerConfig) *Flow {
	newF := f.clone()
	newF.options.planner = config
	return newF
}

// BreakPolicy sets the policy that scores break candidates.
func (f *Flow) BreakPolicy(policy layout.BreakPolicy) *Flow {
	newF := f.clone()
	newF.options.policy = policy
	return newF
}

// Logger sets the logger for reflow diagnostics.
func (f *Flow) Logger(log *slog.Logger) *Flow {
	newF := f.clone()
	newF.options.logger = log
	return newF
}

// Blocks returns a copy of the blocks of the flow.
func (f *Flow) Blocks() []model.Block {
	return model.CloneBlocks(f.blocks)
}

// Pages partitions the blocks into pages.
//
// Example:
//
//	for _, p := range pageflow.Must(pageflow.FromBlocks(blocks).Pages()) {
//	    fmt.Printf("page %d: %d blocks, %.0fpx free\n", p.Index+1, len(p.Elements), p.AvailableHeight)
//	}
func (f *Flow) Pages() ([]model.Page, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return pages.Assign(f.blocks, f.options.pageHeight, f.options.margin), nil
}

// Layout returns the page layout of the blocks with page lookups.
func (f *Flow) Layout() (*pages.Layout, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return pages.NewLayout(f.blocks, f.options.pageHeight, f.options.margin), nil
}

// Gaps returns the unused space of every page larger than the reflow
// configuration's minimum gap.
func (f *Flow) Gaps() ([]model.Gap, error) {
	all, err := f.Pages()
	if err != nil {
		return nil, err
	}
	return pages.FindGaps(all, f.options.reflow.MinGap), nil
}

// Breaks plans page breaks for a flow scrollHeight pixels tall. A
// non-positive scrollHeight means the content height of the blocks.
//
// Example:
//
//	breaks, err := pageflow.FromBlocks(blocks).PageHeight(1000).Breaks(0)
//	fmt.Println(breaks.Pages(), "pages")
func (f *Flow) Breaks(scrollHeight float64) (layout.Breaks, error) {
	if f.err != nil {
		return nil, f.err
	}
	if scrollHeight <= 0 {
		scrollHeight = model.ContentHeight(f.blocks)
	}
	if scrollHeight/f.options.pageHeight > pages.MaxPages {
		return nil, fmt.Errorf("%w: scroll height %v", pages.ErrTooManyPages, scrollHeight)
	}
	planner := layout.NewPlannerWithConfig(f.options.planner)
	if f.options.policy != nil {
		planner = planner.WithPolicy(f.options.policy)
	}
	return planner.Plan(f.blocks, scrollHeight, f.options.pageHeight), nil
}

// Reflow closes gaps and pushes blocks off page boundaries.
//
// Example:
//
//	result, err := pageflow.FromBlocks(blocks).PageHeight(1000).Reflow()
//	fmt.Printf("moved %d blocks\n", result.MovedCount)
func (f *Flow) Reflow() (reflow.Result, error) {
	if err := f.check(); err != nil {
		return reflow.Result{}, err
	}
	return f.engine().ApplyAutoReflow(f.blocks, f.options.pageHeight, f.options.margin), nil
}

// Delete removes the blocks with the given ids and reflows what remains.
// Unknown ids are ignored.
func (f *Flow) Delete(ids ...string) (reflow.Result, error) {
	if err := f.check(); err != nil {
		return reflow.Result{}, err
	}
	return f.engine().AfterDeletion(f.blocks, ids, f.options.pageHeight, f.options.margin), nil
}

// Resize records that the block with the given id changed height from
// oldHeight to newHeight and reflows the result.
func (f *Flow) Resize(id string, oldHeight, newHeight float64) (reflow.Result, error) {
	if err := f.check(); err != nil {
		return reflow.Result{}, err
	}
	return f.engine().AfterResize(f.blocks, id, oldHeight, newHeight, f.options.pageHeight, f.options.margin), nil
}

// check returns the accumulated error, or an error wrapping
// pages.ErrTooManyPages for a flow too tall to paginate
func (f *Flow) check() error {
	if f.err != nil {
		return f.err
	}
	return pages.CheckExtent(f.blocks, f.options.pageHeight, f.options.margin)
}

func (f *Flow) engine() *reflow.Engine {
	config := f.options.reflow
	config.PreserveIntentionalSpacing = f.options.keepSpacing
	return reflow.NewEngineWithConfig(config).WithLogger(f.options.logger)
}
