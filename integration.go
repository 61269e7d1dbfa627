// integration.go connects the geometry-based reflow with the markup it was
// measured from
package pageflow

import (
	"strings"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/reflow"
)

// AnnotateHTML tags the reflowable blocks of a fragment with element ids so
// a layout engine can measure them. It returns the tagged markup and the
// ids in document order.
//
// Example:
//
//	tagged, ids, err := pageflow.AnnotateHTML(markup)
//	// render tagged, measure each id, then call FromHTMLBlocks
func AnnotateHTML(fragment string) (string, []string, error) {
	return htmldoc.AnnotateBlocks(fragment)
}

// FromHTMLBlocks builds a Flow from a tagged fragment, with geometry from m.
func FromHTMLBlocks(fragment string, m htmldoc.Measurer) (*Flow, error) {
	blocks, err := htmldoc.BlocksFromHTML(strings.NewReader(fragment), m)
	if err != nil {
		return nil, err
	}
	return FromBlocks(blocks), nil
}

// ApplyPatches writes the margin changes of a reflow result into the
// tagged fragment it was computed from.
func ApplyPatches(fragment string, patches []reflow.Patch) (string, error) {
	margins := make(map[string]float64, len(patches))
	for _, p := range patches {
		margins[p.ID] = p.MarginTop
	}
	return htmldoc.ApplyMargins(fragment, margins)
}

// ReflowHTML reflows a tagged fragment and returns the updated markup with
// the result. The flow's page settings apply; its blocks are replaced by
// those measured from the fragment.
//
// Example:
//
//	settings := pageflow.FromBlocks(nil).Paper(model.PaperA4, 10)
//	out, result, err := pageflow.ReflowHTML(tagged, measurer, settings)
func ReflowHTML(fragment string, m htmldoc.Measurer, settings *Flow) (string, reflow.Result, error) {
	f, err := FromHTMLBlocks(fragment, m)
	if err != nil {
		return "", reflow.Result{}, err
	}
	if settings != nil {
		f = settings.withBlocks(f.blocks)
	}

	result, err := f.Reflow()
	if err != nil {
		return "", reflow.Result{}, err
	}
	out, err := ApplyPatches(fragment, result.Patches)
	if err != nil {
		return "", reflow.Result{}, err
	}
	return out, result, nil
}

// withBlocks returns a copy of the flow over different blocks.
func (f *Flow) withBlocks(blocks []model.Block) *Flow {
	newF := f.clone()
	newF.blocks = blocks
	return newF
}
