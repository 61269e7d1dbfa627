package layout

import (
	"math"

	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/pages"
)

// PlannerConfig holds configuration for page break planning
type PlannerConfig struct {
	// NearbyWindow is the search radius around an ideal break, as a fraction
	// of the page height (default: 0.2)
	NearbyWindow float64

	// TallFraction marks flowable blocks taller than this fraction of the page
	// height as blocks to break before rather than after (default: 0.3)
	TallFraction float64

	// BreakGap is the space left between a break and the block it was placed
	// against (default: 10 pixels)
	BreakGap float64

	// Monotonic clamps each break so it never precedes the previous one.
	// Off by default: breaks are computed independently and may cross in very
	// dense layouts.
	Monotonic bool
}

// DefaultPlannerConfig returns sensible default configuration
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		NearbyWindow: 0.2,
		TallFraction: 0.3,
		BreakGap:     10,
		Monotonic:    false,
	}
}

// Breaks are page break Y coordinates, one per boundary between pages
type Breaks []float64

// Pages returns the number of pages the breaks produce
func (b Breaks) Pages() int {
	return len(b) + 1
}

// IsMonotonic reports whether every break is at or below the previous one
func (b Breaks) IsMonotonic() bool {
	for i := 1; i < len(b); i++ {
		if b[i] < b[i-1] {
			return false
		}
	}
	return true
}

// Planner computes advisory page break positions for a rendered flow
type Planner struct {
	config PlannerConfig
	policy BreakPolicy
}

// NewPlanner creates a planner with default configuration
func NewPlanner() *Planner {
	return NewPlannerWithConfig(DefaultPlannerConfig())
}

// NewPlannerWithConfig creates a planner with custom configuration and the
// default policy
func NewPlannerWithConfig(config PlannerConfig) *Planner {
	return &Planner{
		config: config,
		policy: NewDefaultBreakPolicy(config),
	}
}

// WithPolicy returns a copy of the planner that scores candidates with policy
func (p *Planner) WithPolicy(policy BreakPolicy) *Planner {
	return &Planner{config: p.config, policy: policy}
}

// Config returns the planner configuration
func (p *Planner) Config() PlannerConfig {
	return p.config
}

// Plan returns one break per page boundary: ceil(scrollHeight/pageHeight)-1
// of them, for at most pages.MaxPages pages. Each break starts at its ideal
// position i*pageHeight and only moves when a block straddles that
// position, to the best candidate the policy offers among nearby blocks.
// Without an acceptable candidate the ideal position is kept even though it
// cuts a block.
func (p *Planner) Plan(blocks []model.Block, scrollHeight, pageHeight float64) Breaks {
	breaks := make(Breaks, 0)
	if pageHeight <= 0 || scrollHeight <= 0 {
		return breaks
	}

	numberOfPages := int(math.Min(math.Ceil(scrollHeight/pageHeight), pages.MaxPages))
	for i := 1; i < numberOfPages; i++ {
		pos := p.breakAt(blocks, i, pageHeight)
		if p.config.Monotonic && len(breaks) > 0 && pos < breaks[len(breaks)-1] {
			pos = breaks[len(breaks)-1]
		}
		breaks = append(breaks, pos)
	}

	return breaks
}

// breakAt computes break number index (1-indexed) independently of the others
func (p *Planner) breakAt(blocks []model.Block, index int, pageHeight float64) float64 {
	ideal := float64(index) * pageHeight

	split := false
	for _, b := range blocks {
		if b.Contains(ideal) {
			split = true
			break
		}
	}
	if !split {
		return ideal
	}

	best := ideal
	bestDiff := math.Inf(1)
	for _, b := range blocks {
		if !p.policy.Nearby(b, ideal, pageHeight) {
			continue
		}
		c, ok := p.policy.Candidate(b, index, ideal, pageHeight)
		if !ok {
			continue
		}
		if c.Distance < bestDiff {
			bestDiff = c.Distance
			best = c.Position
		}
	}

	return best
}

// Straddled returns the blocks cut by the given break position
func Straddled(blocks []model.Block, position float64) []model.Block {
	var out []model.Block
	for _, b := range blocks {
		if b.Contains(position) {
			out = append(out, b)
		}
	}
	return out
}

// PlanBreaks computes page breaks with the default planner
func PlanBreaks(blocks []model.Block, scrollHeight, pageHeight float64) []float64 {
	return NewPlanner().Plan(blocks, scrollHeight, pageHeight)
}
