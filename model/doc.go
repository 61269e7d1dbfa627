// Package model provides the data structures shared by the pagination,
// reflow and table extraction packages.
//
// Nothing in this package measures or renders anything. Geometry arrives from
// an external oracle (a browser, a layout engine, a test fixture) as a
// [Snapshot] of [Block] values, and every other package computes new values
// from it without retaining state between calls.
//
// # Blocks
//
// A [Block] is an opaque rectangle in a single top-to-bottom flow:
//
//	b := model.Block{ID: "intro", Tag: "p", Top: 120, Height: 48}
//	b.Bottom()   // 168
//	b.Atomic()   // false
//
// Blocks whose tag is a table, image, figure, heading, blockquote or code
// block are [CategoryAtomic]; pagination tries never to cut them.
//
// # Pages and Gaps
//
// A [Page] is a fixed-height window into the flow holding the blocks whose top
// falls inside it. A [Gap] is unused vertical space on a page. Both are
// derived on every call and never patched incrementally.
//
// # Tables
//
// The [Table] type is the output of table extraction:
//
//   - Data - the plain string grid
//   - Cells - the same grid with resolved colors and header flags
//   - HTML - the serialized source fragment
//   - Export methods: ToCSV(), ToTSV() and ToMarkdown()
//
// # Paper sizes
//
// [PaperSize] converts physical paper dimensions and margins into the pixel
// page height the rest of the module works with (96 DPI).
package model
