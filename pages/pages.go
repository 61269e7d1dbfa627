package pages

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/pageflow/model"
)

// MaxPages bounds the pages a layout may span. Assign never creates more.
const MaxPages = 100000

// ErrTooManyPages is returned for flows that would span more than MaxPages
var ErrTooManyPages = errors.New("flow spans too many pages")

// Index returns the page an offset falls on. Offsets above the page grid are
// clamped to page 0.
func Index(y, pageHeight, startOffset float64) int {
	if pageHeight <= 0 {
		return 0
	}
	idx := math.Floor((y - startOffset) / pageHeight)
	if idx < 0 || math.IsNaN(idx) {
		return 0
	}
	if idx > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(idx)
}

// Span returns the pages holding the top and the bottom edge of a block
func Span(b model.Block, pageHeight, startOffset float64) (first, last int) {
	return Index(b.Top, pageHeight, startOffset), Index(b.Bottom(), pageHeight, startOffset)
}

// Straddles reports whether a block crosses a page boundary. The bottom edge
// is exclusive: a block ending exactly on a boundary fits its page.
func Straddles(b model.Block, pageHeight, startOffset float64) bool {
	if pageHeight <= 0 || b.Height <= 0 {
		return false
	}
	first := Index(b.Top, pageHeight, startOffset)
	last := Index(math.Nextafter(b.Bottom(), math.Inf(-1)), pageHeight, startOffset)
	return first != last
}

// PageStart returns the Y offset where page index begins
func PageStart(index int, pageHeight, startOffset float64) float64 {
	return float64(index)*pageHeight + startOffset
}

// Extent returns the number of pages the blocks reach: one past the page
// holding the lowest edge of any block.
func Extent(blocks []model.Block, pageHeight, startOffset float64) int {
	if pageHeight <= 0 {
		return 0
	}
	n := 0
	for _, b := range blocks {
		first, last := Span(b, pageHeight, startOffset)
		n = max(n, first+1, last+1)
	}
	return n
}

// CheckExtent returns an error wrapping ErrTooManyPages when the blocks
// reach past MaxPages
func CheckExtent(blocks []model.Block, pageHeight, startOffset float64) error {
	if n := Extent(blocks, pageHeight, startOffset); n > MaxPages {
		return fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, n, MaxPages)
	}
	return nil
}

// Assign partitions blocks into pages of pageHeight, with page 0 starting at
// startOffset. Blocks must be in document order; each is assigned to the page
// containing its top. The result is contiguous from index 0 to the highest
// page any block's bottom reaches, up to MaxPages; blocks starting beyond
// that are left out, which CheckExtent reports beforehand. Empty input or a
// non-positive page height yields an empty result.
func Assign(blocks []model.Block, pageHeight, startOffset float64) []model.Page {
	pages := make([]model.Page, 0)
	if pageHeight <= 0 {
		return pages
	}

	for _, b := range blocks {
		first, last := Span(b, pageHeight, startOffset)
		if first >= MaxPages {
			continue
		}
		last = min(last, MaxPages-1)

		// Ensure we have pages up to this block
		for len(pages) <= last || len(pages) <= first {
			pages = append(pages, model.NewPage(len(pages), PageStart(len(pages), pageHeight, startOffset), pageHeight))
		}

		pages[first].Elements = append(pages[first].Elements, b)
	}

	for i := range pages {
		p := &pages[i]
		first, ok := p.First()
		if !ok {
			continue
		}
		last, _ := p.Last()

		usedTop := math.Max(first.Top, p.StartY)
		usedBottom := math.Min(last.Bottom(), p.EndY)
		p.UsedHeight = usedBottom - usedTop
		p.AvailableHeight = pageHeight - p.UsedHeight
	}

	return pages
}

// Layout is an assignment of blocks to pages with lookups
type Layout struct {
	pages       []model.Page
	pageOf      map[string]int
	pageHeight  float64
	startOffset float64
}

// NewLayout assigns blocks to pages and indexes the result
func NewLayout(blocks []model.Block, pageHeight, startOffset float64) *Layout {
	l := &Layout{
		pages:       Assign(blocks, pageHeight, startOffset),
		pageOf:      make(map[string]int, len(blocks)),
		pageHeight:  pageHeight,
		startOffset: startOffset,
	}
	for _, p := range l.pages {
		for _, b := range p.Elements {
			l.pageOf[b.ID] = p.Index
		}
	}
	return l
}

// Count returns the total number of pages
func (l *Layout) Count() int {
	return len(l.pages)
}

// GetPage returns the page at the given index (0-based)
func (l *Layout) GetPage(index int) (model.Page, error) {
	if index < 0 || index >= len(l.pages) {
		return model.Page{}, fmt.Errorf("page index %d out of range [0, %d)", index, len(l.pages))
	}
	return l.pages[index], nil
}

// Pages returns all pages as a slice
func (l *Layout) Pages() []model.Page {
	return l.pages
}

// PageOf returns the page a block was assigned to
func (l *Layout) PageOf(id string) (int, bool) {
	idx, ok := l.pageOf[id]
	return idx, ok
}

// PageHeight returns the page height the layout was built with
func (l *Layout) PageHeight() float64 {
	return l.pageHeight
}

// StartOffset returns the Y offset of page 0
func (l *Layout) StartOffset() float64 {
	return l.startOffset
}

// Straddling returns the blocks that cross a page boundary, in document order
func (l *Layout) Straddling() []model.Block {
	var out []model.Block
	for _, p := range l.pages {
		for _, b := range p.Elements {
			if Straddles(b, l.pageHeight, l.startOffset) {
				out = append(out, b)
			}
		}
	}
	return out
}
