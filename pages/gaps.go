package pages

import "github.com/tsawler/pageflow/model"

// FindGaps returns the unused spans of at least minGap on each page, in page
// order. An empty page counts as one full-page gap. The space below the last
// block of a page is only reported when a later page exists, since nothing
// could move into it otherwise.
func FindGaps(pages []model.Page, minGap float64) []model.Gap {
	gaps := make([]model.Gap, 0)

	for i, page := range pages {
		if page.IsEmpty() {
			gaps = append(gaps, model.Gap{
				PageIndex: i,
				Size:      page.AvailableHeight,
			})
			continue
		}

		// Gap at the beginning of the page
		first, _ := page.First()
		if size := first.Top - page.StartY; size >= minGap {
			gaps = append(gaps, model.Gap{PageIndex: i, Size: size})
		}

		// Gaps between consecutive blocks
		for j := 0; j < len(page.Elements)-1; j++ {
			current := page.Elements[j]
			next := page.Elements[j+1]
			if size := next.Top - current.Bottom(); size >= minGap {
				gaps = append(gaps, model.Gap{PageIndex: i, Size: size, AfterID: current.ID})
			}
		}

		// Gap at the end of the page
		last, _ := page.Last()
		if size := page.EndY - last.Bottom(); size >= minGap && i < len(pages)-1 {
			gaps = append(gaps, model.Gap{PageIndex: i, Size: size, AfterID: last.ID})
		}
	}

	return gaps
}
