package reflow

import (
	"fmt"

	"github.com/tsawler/pageflow/model"
)

// AfterDeletion reflows a document once blocks have been removed. Deleted
// blocks are dropped from the snapshot if still present; unknown ids are
// ignored. Any spacing above DeletionGap between surviving neighbours is
// collapsed to Spacing before the regular reflow runs.
func (e *Engine) AfterDeletion(blocks []model.Block, deletedIDs []string, pageHeight, margin float64) Result {
	deleted := make(map[string]struct{}, len(deletedIDs))
	for _, id := range deletedIDs {
		deleted[id] = struct{}{}
	}

	survivors := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if _, gone := deleted[b.ID]; gone {
			continue
		}
		survivors = append(survivors, b)
	}
	e.log.Debug("reflow after deletion", "deleted", len(blocks)-len(survivors), "requested", len(deletedIDs))

	f := newFlow(survivors)
	r := newReport()

	for i := 1; i < f.len(); i++ {
		b := f.blocks[i]
		if b.Pinned && e.config.PreserveIntentionalSpacing {
			continue
		}
		spacing := b.Top - f.blocks[i-1].Bottom()
		if spacing <= e.config.DeletionGap {
			continue
		}
		distance := spacing - e.config.Spacing
		f.shift(i, -distance)
		r.move(fmt.Sprintf("Moved %s up by %.0fpx after deletion", label(b), distance))
	}

	e.reflow(f, r, pageHeight, margin)
	return r.result(f)
}

// AfterResize reflows a document after one block changed height. When the
// block shrank, every block after it moves up by the difference and counts as
// moved. Growth shifts nothing here; the next measurement of the live
// document already reflects it. An unknown id skips the shift.
func (e *Engine) AfterResize(blocks []model.Block, resizedID string, oldHeight, newHeight, pageHeight, margin float64) Result {
	f := newFlow(blocks)
	r := newReport()

	delta := oldHeight - newHeight
	if i := f.indexOf(resizedID); i >= 0 && delta > 0 {
		f.blocks[i].Height = newHeight
		followers := f.len() - i - 1
		if followers > 0 {
			f.shift(i+1, -delta)
			r.moved += followers
			r.note(fmt.Sprintf("Moved %d blocks up by %.0fpx after resize", followers, delta))
		}
	} else if i < 0 {
		e.log.Debug("resized block not found", "id", resizedID)
	}

	e.reflow(f, r, pageHeight, margin)
	return r.result(f)
}

// AfterDeletion runs the default engine
func AfterDeletion(blocks []model.Block, deletedIDs []string, pageHeight, margin float64) Result {
	return NewEngine().AfterDeletion(blocks, deletedIDs, pageHeight, margin)
}

// AfterResize runs the default engine
func AfterResize(blocks []model.Block, resizedID string, oldHeight, newHeight, pageHeight, margin float64) Result {
	return NewEngine().AfterResize(blocks, resizedID, oldHeight, newHeight, pageHeight, margin)
}
