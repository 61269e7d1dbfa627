package pageflow

import (
	"log/slog"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/layout"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/reflow"
)

// FlowOptions holds configuration for pagination and reflow.
type FlowOptions struct {
	// Page grid
	pageHeight float64
	margin     float64

	// Reflow behavior
	keepSpacing bool
	reflow      reflow.Config

	// Break planning
	planner layout.PlannerConfig
	policy  layout.BreakPolicy

	logger *slog.Logger
}

// defaultFlowOptions returns the default options: an A4 page with the
// preview's 10mm margins, no grid offset, and intentional spacing kept.
func defaultFlowOptions() FlowOptions {
	return FlowOptions{
		pageHeight:  model.PaperA4.ContentHeightPx(model.DefaultMarginMM),
		margin:      0,
		keepSpacing: true,
		reflow:      reflow.DefaultConfig(),
		planner:     layout.DefaultPlannerConfig(),
		policy:      nil, // nil means layout.DefaultBreakPolicy
		logger:      nil, // nil means discard
	}
}

// clone creates a copy of FlowOptions. Every field is a value or an
// immutable collaborator, so a shallow copy is deep enough.
func (o FlowOptions) clone() FlowOptions {
	return o
}

// TableOptions holds configuration for table extraction.
type TableOptions struct {
	markdown       bool
	document       bool
	stylesheets    []string
	resolver       htmldoc.StyleResolver
	headerFallback string
}

// defaultTableOptions returns the default extraction options.
func defaultTableOptions() TableOptions {
	return TableOptions{
		markdown:       false,
		document:       false,
		stylesheets:    nil,
		resolver:       nil, // nil means the built-in style table
		headerFallback: htmldoc.HeaderFallbackColor,
	}
}

// clone creates a deep copy of TableOptions.
func (o TableOptions) clone() TableOptions {
	newOpts := o
	if o.stylesheets != nil {
		newOpts.stylesheets = make([]string, len(o.stylesheets))
		copy(newOpts.stylesheets, o.stylesheets)
	}
	return newOpts
}

// toHTMLDoc converts the options to their htmldoc form.
func (o TableOptions) toHTMLDoc() htmldoc.TableOptions {
	opts := htmldoc.DefaultTableOptions()
	opts.Resolver = o.resolver
	opts.HeaderFallback = o.headerFallback
	for i, sheet := range o.stylesheets {
		if i > 0 {
			opts.BaseStylesheet += "\n"
		}
		opts.BaseStylesheet += sheet
	}
	return opts
}
