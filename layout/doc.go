// Package layout plans where a continuous content flow is cut into pages.
//
// The planner is advisory: it returns Y coordinates for drawing page break
// indicators or slicing a rendered image, and never moves content. Use the
// reflow package to actually reposition blocks.
//
// # Planning
//
// [PlanBreaks] runs the default planner:
//
//	breaks := layout.PlanBreaks(blocks, scrollHeight, pageHeight)
//
// For custom configuration:
//
//	cfg := layout.DefaultPlannerConfig()
//	cfg.Monotonic = true
//	breaks := layout.NewPlannerWithConfig(cfg).Plan(blocks, scrollHeight, pageHeight)
//
// # Break Selection
//
// Break i starts at its ideal position i*pageHeight. It stays there unless a
// block straddles that position, in which case every block whose top or
// bottom lies within 20% of a page of the ideal position is asked for a
// candidate:
//
//   - atomic blocks (tables, images, figures, headings, blockquotes, code)
//     and blocks taller than 30% of a page propose a break 10px above them
//   - other blocks propose a break 10px below them
//
// The candidate closest to the ideal position wins. If none qualifies the
// ideal position is used and the straddling block is cut.
//
// # Policies
//
// Candidate scoring sits behind the [BreakPolicy] interface so alternative
// heuristics can be plugged in with [Planner.WithPolicy]. [DefaultBreakPolicy]
// implements the rules above.
//
// # Monotonicity
//
// Each break is chosen using only its own ideal position, so in extremely
// dense layouts break i+1 can land above break i. [Breaks.IsMonotonic]
// detects this; setting [PlannerConfig.Monotonic] clamps every break to be no
// higher than its predecessor.
package layout
