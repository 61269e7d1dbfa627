// Package pageflow provides a fluent API for paginating a measured content
// flow, closing the gaps edits leave behind, and extracting styled tables
// from markup.
//
// Basic usage:
//
//	pages, err := pageflow.FromBlocks(blocks).PageHeight(1046.93).Pages()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	result, err := pageflow.FromBlocks(blocks).
//	    Paper(model.PaperA4, 10).
//	    Margin(37.8).
//	    IgnoreIntentionalSpacing().
//	    Reflow()
//
// Tables:
//
//	tables, err := pageflow.FromHTML(markup).ExportStyles().Tables()
//
// For advanced use cases, the lower-level pages, layout, reflow and htmldoc
// packages are also available.
package pageflow

import (
	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
)

// FromBlocks starts a fluent pagination over a geometry snapshot. The blocks
// are copied; later changes to the slice are not seen.
//
// Example:
//
//	breaks, err := pageflow.FromBlocks(blocks).PageHeight(1000).Breaks(3200)
func FromBlocks(blocks []model.Block) *Flow {
	return &Flow{
		blocks:  model.CloneBlocks(blocks),
		options: defaultFlowOptions(),
	}
}

// FromSnapshot starts a fluent pagination over a snapshot, taking its page
// height and margin. A snapshot without a page height keeps the default.
func FromSnapshot(s *model.Snapshot) *Flow {
	if s == nil {
		return FromBlocks(nil)
	}
	f := FromBlocks(s.Blocks).Margin(s.Margin)
	if s.PageHeight != 0 {
		f = f.PageHeight(s.PageHeight)
	}
	return f
}

// Tables extracts the tables of an HTML fragment with default options. It
// never fails; markup without tables yields an empty slice.
//
// Example:
//
//	for _, t := range pageflow.Tables(markup) {
//	    fmt.Println(t.ToCSV())
//	}
func Tables(markup string) []model.Table {
	return htmldoc.ExtractTables(markup)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	pages := pageflow.Must(pageflow.FromBlocks(blocks).PageHeight(1000).Pages())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
