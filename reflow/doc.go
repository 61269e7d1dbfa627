// Package reflow repositions blocks of a paginated document to close wasted
// vertical space and keep blocks from being cut by page boundaries.
//
// The engine works on a snapshot of measured blocks (see [model.Block]) and
// never touches a live document. It returns the new positions together with
// [Patch] values, the top margins a caller writes back to apply the result.
//
// # Flow Model
//
// Blocks sit in normal document flow: raising the top margin of one block
// moves that block and every block after it by the same amount, while only
// the first block's margin changes. [Apply] replays patches on a snapshot the
// same way.
//
// # Auto Reflow
//
// [Engine.ApplyAutoReflow] repeats two steps until neither changes anything:
//
//  1. Gap filling. The blocks are assigned to pages and every unused span of
//     at least [Config.MinGap] is found. Blocks after a gap move up to sit
//     [Config.Spacing] below the preceding content, provided they fit the
//     remaining gap, the move exceeds [Config.MinMove], and they would not
//     cross a page boundary at the new position. The walk stops at the first
//     block that cannot move.
//  2. Split prevention. Every block crossing a page boundary is pushed down
//     to [Config.BoundaryInset] below the start of the page holding its
//     bottom edge. Blocks taller than a page are left where they are.
//
// Gaps are measured on pages starting at the margin passed in. Boundaries
// are always multiples of the page height from y=0: that is where the
// document is cut, so both the fill check and split prevention use them.
//
// # Edits
//
// [Engine.AfterDeletion] first collapses oversized spacing between the
// surviving blocks, then reflows. [Engine.AfterResize] shifts the followers
// of a shrunken block up by the height difference, then reflows.
//
// # Example
//
//	result := reflow.ApplyAutoReflow(blocks, pageHeight, margin, true)
//	for _, p := range result.Patches {
//		fmt.Printf("%s: margin-top %.0fpx\n", p.ID, p.MarginTop)
//	}
package reflow
