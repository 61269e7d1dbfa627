package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pageflow/model"
)

const a4 = 1122.52

func block(id string, top, height float64) model.Block {
	return model.Block{ID: id, Tag: "div", Top: top, Height: height}
}

// ============================================================================
// Index / Span Tests
// ============================================================================

func TestIndex(t *testing.T) {
	tests := []struct {
		name   string
		y      float64
		offset float64
		want   int
	}{
		{"origin", 0, 0, 0},
		{"inside first page", 999, 0, 0},
		{"exact boundary", 1000, 0, 1},
		{"third page", 2500, 0, 2},
		{"above grid clamps", -50, 0, 0},
		{"offset shifts grid", 1050, 100, 0},
		{"offset past boundary", 1100, 100, 1},
		{"before offset clamps", 20, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Index(tt.y, 1000, tt.offset))
		})
	}
}

func TestIndexNonPositivePageHeight(t *testing.T) {
	assert.Equal(t, 0, Index(5000, 0, 0))
	assert.Equal(t, 0, Index(5000, -10, 0))
}

func TestSpan(t *testing.T) {
	first, last := Span(block("a", 900, 200), 1000, 0)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, last)
}

func TestStraddles(t *testing.T) {
	tests := []struct {
		name string
		b    model.Block
		want bool
	}{
		{"inside", block("a", 100, 200), false},
		{"crosses", block("a", 900, 200), true},
		{"ends on boundary", block("a", 900, 100), false},
		{"starts on boundary", block("a", 1000, 100), false},
		{"zero height", block("a", 1000, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Straddles(tt.b, 1000, 0))
		})
	}
}

// ============================================================================
// Assign Tests
// ============================================================================

func TestAssignEmpty(t *testing.T) {
	pp := Assign(nil, a4, 0)
	require.NotNil(t, pp)
	assert.Empty(t, pp)

	assert.Empty(t, Assign([]model.Block{block("a", 0, 10)}, 0, 0))
}

func TestAssignSinglePage(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 200, 100),
		block("c", 400, 100),
	}

	pp := Assign(blocks, a4, 0)
	require.Len(t, pp, 1)

	p := pp[0]
	assert.Equal(t, 0, p.Index)
	assert.Equal(t, 0.0, p.StartY)
	assert.InDelta(t, a4, p.EndY, 1e-9)
	require.Len(t, p.Elements, 3)
	assert.Equal(t, "a", p.Elements[0].ID)
	assert.Equal(t, "c", p.Elements[2].ID)
	assert.InDelta(t, 500.0, p.UsedHeight, 1e-9)
	assert.InDelta(t, a4-500, p.AvailableHeight, 1e-9)
}

func TestAssignContiguousPages(t *testing.T) {
	// Page 1 has no block of its own but must still exist
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 2100, 100),
	}

	pp := Assign(blocks, 1000, 0)
	require.Len(t, pp, 3)
	for i, p := range pp {
		assert.Equal(t, i, p.Index)
		assert.InDelta(t, 1000.0, p.UsedHeight+p.AvailableHeight, 1e-9)
	}
	assert.True(t, pp[1].IsEmpty())
	assert.Equal(t, 0.0, pp[1].UsedHeight)
	assert.Equal(t, 1000.0, pp[1].AvailableHeight)
	assert.Equal(t, "b", pp[2].Elements[0].ID)
}

func TestAssignStraddlingBlockStaysOnTopPage(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 900, 300),
	}

	pp := Assign(blocks, 1000, 0)
	require.Len(t, pp, 2)
	require.Len(t, pp[0].Elements, 2)
	assert.Empty(t, pp[1].Elements)

	// Used height is clamped to the page end
	assert.InDelta(t, 1000.0, pp[0].UsedHeight, 1e-9)
	assert.InDelta(t, 0.0, pp[0].AvailableHeight, 1e-9)
}

func TestAssignUsedHeightClampedToPageStart(t *testing.T) {
	blocks := []model.Block{
		block("a", 50, 100),
	}
	pp := Assign(blocks, 1000, 100)
	require.Len(t, pp, 1)
	assert.Equal(t, 100.0, pp[0].StartY)
	assert.InDelta(t, 50.0, pp[0].UsedHeight, 1e-9)
}

func TestAssignDoesNotMutateInput(t *testing.T) {
	blocks := []model.Block{block("a", 0, 100), block("b", 1500, 100)}
	before := model.CloneBlocks(blocks)

	pp := Assign(blocks, 1000, 0)
	pp[1].Elements[0].Top = 0

	assert.Equal(t, before, blocks)
}

func TestAssignDeterministic(t *testing.T) {
	blocks := []model.Block{block("a", 0, 100), block("b", 950, 100), block("c", 3000, 50)}
	assert.Equal(t, Assign(blocks, 1000, 0), Assign(blocks, 1000, 0))
}

func TestExtent(t *testing.T) {
	assert.Equal(t, 0, Extent(nil, 1000, 0))
	assert.Equal(t, 0, Extent([]model.Block{block("a", 0, 100)}, 0, 0))

	blocks := []model.Block{block("a", 0, 100), block("b", 950, 100), block("c", 3000, 50)}
	assert.Equal(t, 4, Extent(blocks, 1000, 0))
	assert.Len(t, Assign(blocks, 1000, 0), 4)
}

func TestAssignStopsAtMaxPages(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("far", 1e15, 100),
		block("tall", 200, 1e15),
	}

	err := CheckExtent(blocks, 1000, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyPages)

	pp := Assign(blocks, 1000, 0)
	require.Len(t, pp, MaxPages)
	assert.Len(t, pp[0].Elements, 2, "far starts past the cap and is left out")

	assert.NoError(t, CheckExtent(blocks[:1], 1000, 0))
}

// ============================================================================
// Layout Tests
// ============================================================================

func TestLayout(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 950, 100),
		block("c", 1200, 100),
	}
	l := NewLayout(blocks, 1000, 0)

	assert.Equal(t, 2, l.Count())
	assert.Equal(t, 1000.0, l.PageHeight())
	assert.Equal(t, 0.0, l.StartOffset())

	p, err := l.GetPage(1)
	require.NoError(t, err)
	assert.Equal(t, "c", p.Elements[0].ID)

	_, err = l.GetPage(2)
	assert.Error(t, err)
	_, err = l.GetPage(-1)
	assert.Error(t, err)

	idx, ok := l.PageOf("b")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	_, ok = l.PageOf("missing")
	assert.False(t, ok)

	straddling := l.Straddling()
	require.Len(t, straddling, 1)
	assert.Equal(t, "b", straddling[0].ID)
	assert.Len(t, l.Pages(), 2)
}

// ============================================================================
// FindGaps Tests
// ============================================================================

func TestFindGapsBetweenBlocks(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 200, 100),
		block("c", 310, 100),
	}
	gaps := FindGaps(Assign(blocks, a4, 0), 30)

	require.Len(t, gaps, 1)
	assert.Equal(t, model.Gap{PageIndex: 0, Size: 100, AfterID: "a"}, gaps[0])
}

func TestFindGapsTopOfPage(t *testing.T) {
	blocks := []model.Block{block("a", 80, 100)}
	gaps := FindGaps(Assign(blocks, 1000, 0), 30)

	require.Len(t, gaps, 1)
	assert.False(t, gaps[0].Anchored())
	assert.Equal(t, 80.0, gaps[0].Size)
}

func TestFindGapsEndOfPageOnlyWhenLaterPageExists(t *testing.T) {
	single := FindGaps(Assign([]model.Block{block("a", 0, 100)}, 1000, 0), 30)
	assert.Empty(t, single, "trailing space on the last page is not a gap")

	two := FindGaps(Assign([]model.Block{block("a", 0, 100), block("b", 1000, 100)}, 1000, 0), 30)
	require.Len(t, two, 1)
	assert.Equal(t, model.Gap{PageIndex: 0, Size: 900, AfterID: "a"}, two[0])
}

func TestFindGapsEmptyPage(t *testing.T) {
	blocks := []model.Block{block("a", 0, 1000), block("b", 2000, 100)}
	gaps := FindGaps(Assign(blocks, 1000, 0), 30)

	require.Len(t, gaps, 1)
	assert.Equal(t, model.Gap{PageIndex: 1, Size: 1000}, gaps[0])
}

func TestFindGapsIgnoresSmallSpaces(t *testing.T) {
	blocks := []model.Block{
		block("a", 10, 100),
		block("b", 120, 100),
		block("c", 249, 100),
	}
	assert.Empty(t, FindGaps(Assign(blocks, a4, 0), 30))
}

func TestFindGapsInPageOrder(t *testing.T) {
	blocks := []model.Block{
		block("a", 0, 100),
		block("b", 300, 100),
		block("c", 1100, 100),
		block("d", 1500, 100),
	}
	gaps := FindGaps(Assign(blocks, 1000, 0), 30)
	for i := 1; i < len(gaps); i++ {
		assert.LessOrEqual(t, gaps[i-1].PageIndex, gaps[i].PageIndex)
	}
}
