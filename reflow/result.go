package reflow

import "github.com/tsawler/pageflow/model"

// Patch is a margin write for the caller to apply to the live document
type Patch struct {
	ID        string  `json:"id"`
	MarginTop float64 `json:"marginTop"`
}

// Result reports what a reflow did
type Result struct {
	// MovedCount is the number of upward moves applied. Blocks pushed down
	// off a page boundary are reported in Details but not counted.
	MovedCount int `json:"movedCount"`

	// Details is a human-readable trace of every decision
	Details []string `json:"details"`

	// Patches are the new top margins, one per block whose margin changed
	Patches []Patch `json:"patches"`

	// Blocks is the snapshot after the reflow, in document order
	Blocks []model.Block `json:"blocks"`
}

func emptyResult() Result {
	return Result{
		MovedCount: 0,
		Details:    []string{},
		Patches:    []Patch{},
		Blocks:     []model.Block{},
	}
}

// report accumulates the outcome of one operation
type report struct {
	moved   int
	details []string
}

func newReport() *report {
	return &report{details: make([]string, 0)}
}

func (r *report) move(detail string) {
	r.moved++
	r.details = append(r.details, detail)
}

func (r *report) note(detail string) {
	r.details = append(r.details, detail)
}

func (r *report) result(f *flow) Result {
	return Result{
		MovedCount: r.moved,
		Details:    r.details,
		Patches:    f.patches(),
		Blocks:     f.blocks,
	}
}

// Apply writes the patches onto a copy of blocks, as a live document would
// after the caller applies them. Top moves with the margin of its own block
// and of every earlier patched block.
func Apply(blocks []model.Block, patches []Patch) []model.Block {
	f := newFlow(blocks)
	for _, p := range patches {
		if i := f.indexOf(p.ID); i >= 0 {
			f.shift(i, p.MarginTop-f.blocks[i].MarginTop)
		}
	}
	return f.blocks
}
