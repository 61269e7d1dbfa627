package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/pages"
)

func blk(id, tag string, top, height float64) model.Block {
	return model.Block{ID: id, Tag: tag, Top: top, Height: height}
}

// ============================================================================
// Break count Tests
// ============================================================================

func TestPlanBreaksCount(t *testing.T) {
	tests := []struct {
		name   string
		scroll float64
		want   int
	}{
		{"single page", 800, 0},
		{"exact page", 1000, 0},
		{"just over", 1001, 1},
		{"three pages", 2500, 2},
		{"empty", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaks := PlanBreaks(nil, tt.scroll, 1000)
			require.NotNil(t, breaks)
			assert.Len(t, breaks, tt.want)
		})
	}
}

func TestPlanBreaksCappedAtMaxPages(t *testing.T) {
	assert.Len(t, PlanBreaks(nil, 1e18, 10), pages.MaxPages-1)
}

func TestPlanBreaksInvalidPageHeight(t *testing.T) {
	assert.Empty(t, PlanBreaks(nil, 5000, 0))
	assert.Empty(t, PlanBreaks(nil, 5000, -100))
}

func TestBreaksPages(t *testing.T) {
	assert.Equal(t, 1, Breaks{}.Pages())
	assert.Equal(t, 3, Breaks{1000, 2000}.Pages())
}

// ============================================================================
// Break selection Tests
// ============================================================================

func TestBreakStaysAtIdealWithoutStraddle(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 400),
		blk("b", "p", 500, 500), // ends exactly on the boundary
		blk("c", "p", 1000, 300),
	}
	breaks := PlanBreaks(blocks, 1300, 1000)
	assert.Equal(t, []float64{1000}, breaks)
}

func TestBreakAfterSmallFlowableBlock(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 900),
		blk("b", "p", 950, 100),
		blk("c", "p", 1060, 300),
	}
	breaks := PlanBreaks(blocks, 1400, 1000)

	// b straddles 1000; breaking after it is 50 away from ideal
	assert.Equal(t, []float64{1060}, breaks)
}

func TestBreakBeforeAtomicBlock(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 880),
		blk("t", "table", 900, 200),
		blk("c", "p", 1110, 300),
	}
	breaks := PlanBreaks(blocks, 1500, 1000)

	// The table straddles the boundary; break 10px above it
	assert.Equal(t, []float64{890}, breaks)
}

func TestBreakBeforeTallFlowableBlock(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 850),
		blk("big", "div", 860, 400), // taller than 30% of the page
	}
	breaks := PlanBreaks(blocks, 1300, 1000)
	assert.Equal(t, []float64{850}, breaks)
}

func TestBreakClosestCandidateWins(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 820),
		blk("b", "p", 830, 150), // after: 990, distance 20
		blk("h", "h2", 990, 40), // before: 980, distance 10; straddles 1000
		blk("c", "p", 1040, 200),
	}
	breaks := PlanBreaks(blocks, 1300, 1000)
	assert.Equal(t, []float64{980}, breaks)
}

func TestBreakFallsBackToIdeal(t *testing.T) {
	// Neither edge of the image is near the boundary, so nothing qualifies
	// and the break cuts it
	blocks := []model.Block{
		blk("img", "img", 0, 1900),
	}
	breaks := PlanBreaks(blocks, 1900, 1000)
	assert.Equal(t, []float64{1000}, breaks)
}

func TestBreakIgnoresFarBlocks(t *testing.T) {
	// Only the straddler is near; it is small and ends before the next
	// boundary so the break goes after it
	blocks := []model.Block{
		blk("a", "p", 0, 300),
		blk("b", "p", 990, 20),
		blk("c", "p", 1500, 100),
	}
	breaks := PlanBreaks(blocks, 1600, 1000)
	assert.Equal(t, []float64{1020}, breaks)
}

func TestBreakAfterRejectedWhenPastNextBoundary(t *testing.T) {
	// With tall detection disabled a long paragraph can only offer an
	// "after" break, which is refused while it ends past the next boundary
	cfg := DefaultPlannerConfig()
	cfg.TallFraction = 5

	blocks := []model.Block{
		blk("x", "p", 990, 1100),
	}
	breaks := NewPlannerWithConfig(cfg).Plan(blocks, 2500, 1000)
	assert.Equal(t, Breaks{1000, 2100}, breaks)
}

func TestBreaksOnSmallPages(t *testing.T) {
	blocks := []model.Block{
		blk("b", "p", 90, 25),
	}
	breaks := PlanBreaks(blocks, 250, 100)
	assert.Equal(t, []float64{125, 200}, breaks)
}

func TestPlanDoesNotMutateBlocks(t *testing.T) {
	blocks := []model.Block{blk("a", "p", 950, 100)}
	before := model.CloneBlocks(blocks)
	PlanBreaks(blocks, 2000, 1000)
	assert.Equal(t, before, blocks)
}

// ============================================================================
// Monotonicity Tests
// ============================================================================

func denseLayout() []model.Block {
	// On a 30px page the search windows of neighbouring breaks overlap
	return []model.Block{
		blk("a", "p", 26, 9),   // straddles 30; break after it at 45
		blk("h", "h1", 54, 10), // straddles 60; break before it at 44
	}
}

func TestBreaksCanCrossWithoutClamping(t *testing.T) {
	breaks := NewPlanner().Plan(denseLayout(), 90, 30)
	require.Len(t, breaks, 2)
	assert.Equal(t, 45.0, breaks[0])
	assert.Equal(t, 44.0, breaks[1])
	assert.False(t, breaks.IsMonotonic())
}

func TestMonotonicClamp(t *testing.T) {
	cfg := DefaultPlannerConfig()
	cfg.Monotonic = true

	breaks := NewPlannerWithConfig(cfg).Plan(denseLayout(), 90, 30)
	require.Len(t, breaks, 2)
	assert.Equal(t, 45.0, breaks[0])
	assert.Equal(t, 45.0, breaks[1], "second break is clamped to the first")
	assert.True(t, breaks.IsMonotonic())
}

func TestMonotonicClampWithCustomPolicy(t *testing.T) {
	policy := fixedPolicy{positions: map[int]float64{1: 150, 2: 120}}
	cfg := DefaultPlannerConfig()
	cfg.Monotonic = true

	blocks := []model.Block{blk("x", "p", 50, 200)}
	breaks := NewPlannerWithConfig(cfg).WithPolicy(policy).Plan(blocks, 300, 100)
	assert.Equal(t, Breaks{150, 150}, breaks)

	unclamped := NewPlanner().WithPolicy(policy).Plan(blocks, 300, 100)
	assert.Equal(t, Breaks{150, 120}, unclamped)
}

// ============================================================================
// Policy Tests
// ============================================================================

// fixedPolicy proposes a fixed position per break index
type fixedPolicy struct {
	positions map[int]float64
}

func (f fixedPolicy) Nearby(model.Block, float64, float64) bool { return true }

func (f fixedPolicy) Candidate(b model.Block, index int, ideal, _ float64) (Candidate, bool) {
	pos, ok := f.positions[index]
	return Candidate{Position: pos, Distance: 0, BlockID: b.ID}, ok
}

func TestWithPolicyReplacesScoring(t *testing.T) {
	blocks := []model.Block{blk("a", "p", 900, 200)}
	p := NewPlanner().WithPolicy(fixedPolicy{positions: map[int]float64{1: 777}})
	assert.Equal(t, Breaks{777}, p.Plan(blocks, 1500, 1000))
	assert.Equal(t, DefaultPlannerConfig(), p.Config())
}

func TestDefaultPolicyNearby(t *testing.T) {
	p := NewDefaultBreakPolicy(DefaultPlannerConfig())
	assert.True(t, p.Nearby(blk("a", "p", 850, 10), 1000, 1000))  // top 150 away
	assert.True(t, p.Nearby(blk("a", "p", 500, 690), 1000, 1000)) // bottom 190 away
	assert.False(t, p.Nearby(blk("a", "p", 500, 300), 1000, 1000))
	assert.False(t, p.Nearby(blk("a", "p", 1200, 50), 1000, 1000)) // exactly at the window edge
}

func TestDefaultPolicyCandidate(t *testing.T) {
	p := NewDefaultBreakPolicy(DefaultPlannerConfig())

	c, ok := p.Candidate(blk("t", "table", 900, 200), 1, 1000, 1000)
	require.True(t, ok)
	assert.Equal(t, Candidate{Position: 890, Distance: 100, BlockID: "t", Before: true}, c)

	_, ok = p.Candidate(blk("t", "table", 0, 1200), 1, 1000, 1000)
	assert.False(t, ok, "atomic block starting at the previous boundary is rejected")

	c, ok = p.Candidate(blk("p", "p", 950, 100), 1, 1000, 1000)
	require.True(t, ok)
	assert.Equal(t, Candidate{Position: 1060, Distance: 50, BlockID: "p"}, c)
}

func TestStraddled(t *testing.T) {
	blocks := []model.Block{
		blk("a", "p", 0, 100),
		blk("b", "p", 50, 100),
		blk("c", "p", 100, 100),
	}
	got := Straddled(blocks, 100)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}
