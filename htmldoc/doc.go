// Package htmldoc reads HTML markup: it extracts tables with resolved cell
// colors, identifies the reflowable blocks of a fragment, and provides a
// plain reader for whole documents.
//
// # Table Extraction
//
// [ExtractTables] parses a fragment into a private tree and returns every
// table in document order. Each table carries a rectangular string grid and
// a parallel grid of [model.Cell] values with background and text colors:
//
//	tables := htmldoc.ExtractTables(`<table><tr><th>Name</th></tr></table>`)
//	fmt.Println(tables[0].Cells[0][0].BackgroundColor) // rgb(233, 236, 239)
//
// Colors come from a [StyleResolver]. The default [StyleTable] cascades an
// optional base stylesheet, the fragment's own <style> elements, bgcolor
// attributes and inline styles. A cell with no background takes the first
// non-transparent ancestor background below the fragment root; header cells
// with none fall back to [HeaderFallbackColor].
//
// # Blocks
//
// [AnnotateBlocks] tags the outermost content elements with
// data-element-id. Once a layout engine has measured them,
// [BlocksFromHTML] turns the tagged elements into [model.Block] values and
// [ApplyMargins] writes reflowed margins back into the markup.
//
// # Reader
//
// [Reader] walks a full document and exposes its title, metadata, text,
// Markdown rendering and tables.
package htmldoc
