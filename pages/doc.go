// Package pages partitions a measured content flow into fixed-height pages.
//
// The assigner is a pure function of its inputs: it never measures, never
// mutates the blocks it is given, and recomputes every page from scratch on
// each call so results cannot drift.
//
// # Assignment
//
// [Assign] places each block on the page containing its top edge and returns a
// contiguous run of pages from index 0 up to the last page any block touches:
//
//	pp := pages.Assign(blocks, 1122.52, 0)
//	for _, p := range pp {
//	    fmt.Println(p.Index, len(p.Elements), p.UsedHeight)
//	}
//
// A block that crosses a page boundary is still listed once, on its first
// page. Detecting and correcting such blocks is the job of the reflow
// package; [Span] and [Straddles] expose the arithmetic it shares with this
// package.
//
// # Layout
//
// The [Layout] type wraps an assignment with lookups by page index and by
// block id:
//
//	l := pages.NewLayout(blocks, pageHeight, 0)
//	count := l.Count()
//	page, err := l.GetPage(0)   // 0-indexed
//	idx, ok := l.PageOf("intro")
//
// # Gaps
//
// [FindGaps] reports unused space on each page: whole empty pages, space
// above the first block, between consecutive blocks and, when a later page
// exists, below the last block.
package pages
