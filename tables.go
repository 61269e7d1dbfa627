package pageflow

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/xlsx"
)

// TableSource provides a fluent interface for extracting tables from HTML
// or Markdown. Like Flow, every configuration method returns a new instance.
type TableSource struct {
	markup  string
	options TableOptions
}

// FromHTML starts a fluent table extraction over an HTML fragment.
//
// Example:
//
//	tables, err := pageflow.FromHTML(markup).
//	    Stylesheet(".total { background: #ffeeba }").
//	    Tables()
func FromHTML(markup string) *TableSource {
	return &TableSource{markup: markup, options: defaultTableOptions()}
}

// FromMarkdown starts a fluent table extraction over Markdown source. Pipe
// tables and raw HTML tables are both found.
func FromMarkdown(src string) *TableSource {
	ts := FromHTML(src)
	ts.options.markdown = true
	return ts
}

// FromDocument starts a fluent table extraction over a complete HTML
// document. Backgrounds are inherited up to the <html> element, and the
// document title names the sheets written by WriteXLSX.
//
// Example:
//
//	src := pageflow.FromDocument(page)
//	title, _ := src.Title()
//	tables, err := src.Tables()
func FromDocument(markup string) *TableSource {
	ts := FromHTML(markup)
	ts.options.document = true
	return ts
}

func (ts *TableSource) clone() *TableSource {
	return &TableSource{markup: ts.markup, options: ts.options.clone()}
}

// Stylesheet adds a stylesheet applied before the markup's own <style>
// elements. Later stylesheets win ties.
func (ts *TableSource) Stylesheet(css string) *TableSource {
	newTS := ts.clone()
	newTS.options.stylesheets = append(newTS.options.stylesheets, css)
	return newTS
}

// ExportStyles applies the stylesheet of the table export view, so header
// and utility-class colors resolve the way the export shows them.
func (ts *TableSource) ExportStyles() *TableSource {
	return ts.Stylesheet(htmldoc.ExportStylesheet)
}

// Resolver replaces style resolution entirely. Stylesheets are then ignored.
func (ts *TableSource) Resolver(r htmldoc.StyleResolver) *TableSource {
	newTS := ts.clone()
	newTS.options.resolver = r
	return newTS
}

// HeaderFallback sets the background of header cells that resolve to
// transparent.
func (ts *TableSource) HeaderFallback(color string) *TableSource {
	newTS := ts.clone()
	newTS.options.headerFallback = color
	return newTS
}

// Tables extracts the tables in document order.
func (ts *TableSource) Tables() ([]model.Table, error) {
	opts := ts.options.toHTMLDoc()
	if ts.options.document {
		r, err := htmldoc.OpenReaderWithOptions(strings.NewReader(ts.markup), opts)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.Tables(), nil
	}
	if ts.options.markdown {
		return htmldoc.ExtractMarkdownTables([]byte(ts.markup), opts)
	}
	return htmldoc.ExtractTablesFrom(strings.NewReader(ts.markup), opts)
}

// Title returns the <title> of a source created with FromDocument, and ""
// for fragments.
func (ts *TableSource) Title() (string, error) {
	if !ts.options.document {
		return "", nil
	}
	r, err := htmldoc.OpenReaderWithOptions(strings.NewReader(ts.markup), ts.options.toHTMLDoc())
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Title(), nil
}

// WriteXLSX extracts the tables and writes them to w as a workbook, one
// sheet per table. Without opts.SheetName, a document's title names the
// sheets.
//
// Example:
//
//	f, _ := os.Create("tables.xlsx")
//	defer f.Close()
//	err := pageflow.FromHTML(markup).WriteXLSX(f, xlsx.DefaultOptions())
func (ts *TableSource) WriteXLSX(w io.Writer, opts xlsx.Options) error {
	tables, err := ts.Tables()
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return errors.New("no tables found")
	}
	if opts.SheetName == "" {
		title, err := ts.Title()
		if err != nil {
			return err
		}
		opts.SheetName = title
	}
	return xlsx.WriteWithOptions(w, tables, opts)
}
