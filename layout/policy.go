package layout

import (
	"math"

	"github.com/tsawler/pageflow/model"
)

// Candidate is a proposed break position derived from one block
type Candidate struct {
	// Position is the proposed break Y coordinate
	Position float64

	// Distance is the score; lower is better
	Distance float64

	// BlockID is the block the candidate was derived from
	BlockID string

	// Before is true when the break sits above the block, false when below
	Before bool
}

// BreakPolicy decides which blocks are worth considering around an ideal
// break and where a break near each of them should go. Implementations must
// be pure.
type BreakPolicy interface {
	// Nearby reports whether the block is close enough to the ideal break
	// position to be considered at all
	Nearby(b model.Block, ideal, pageHeight float64) bool

	// Candidate proposes a break for break number index (1-indexed). The
	// boolean is false when the block cannot yield an acceptable break.
	Candidate(b model.Block, index int, ideal, pageHeight float64) (Candidate, bool)
}

// DefaultBreakPolicy prefers breaking just before atomic or tall blocks and
// just after small flowable ones
type DefaultBreakPolicy struct {
	config PlannerConfig
}

// NewDefaultBreakPolicy creates the default policy from a planner config
func NewDefaultBreakPolicy(config PlannerConfig) *DefaultBreakPolicy {
	return &DefaultBreakPolicy{config: config}
}

// Nearby reports whether the top or the bottom of the block lies within the
// search window around the ideal position
func (p *DefaultBreakPolicy) Nearby(b model.Block, ideal, pageHeight float64) bool {
	window := pageHeight * p.config.NearbyWindow
	return math.Abs(b.Top-ideal) < window || math.Abs(b.Bottom()-ideal) < window
}

// Candidate implements BreakPolicy
func (p *DefaultBreakPolicy) Candidate(b model.Block, index int, ideal, pageHeight float64) (Candidate, bool) {
	if b.Atomic() || b.Height > pageHeight*p.config.TallFraction {
		// Break before the block, but never above the previous ideal break
		if b.Top <= float64(index-1)*pageHeight {
			return Candidate{}, false
		}
		return Candidate{
			Position: b.Top - p.config.BreakGap,
			Distance: math.Abs(b.Top - ideal),
			BlockID:  b.ID,
			Before:   true,
		}, true
	}

	// Break after the block, as long as it ends before the next ideal break
	if b.Bottom() >= float64(index+1)*pageHeight {
		return Candidate{}, false
	}
	return Candidate{
		Position: b.Bottom() + p.config.BreakGap,
		Distance: math.Abs(b.Bottom() - ideal),
		BlockID:  b.ID,
		Before:   false,
	}, true
}
