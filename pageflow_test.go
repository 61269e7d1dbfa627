package pageflow

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
	"github.com/tsawler/pageflow/pages"
	"github.com/tsawler/pageflow/reflow"
	"github.com/tsawler/pageflow/xlsx"
)

const a4 = 1122.52

func spacedBlocks() []model.Block {
	return []model.Block{
		{ID: "a", Tag: "p", Top: 0, Height: 100},
		{ID: "b", Tag: "p", Top: 200, Height: 100},
		{ID: "c", Tag: "p", Top: 400, Height: 100},
	}
}

func tops(blocks []model.Block) []float64 {
	out := make([]float64, len(blocks))
	for i, b := range blocks {
		out[i] = b.Top
	}
	return out
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPages(t *testing.T) {
	blocks := []model.Block{
		{ID: "a", Top: 0, Height: 100},
		{ID: "b", Top: 1100, Height: 100},
	}

	pages, err := FromBlocks(blocks).PageHeight(1000).Pages()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}
	if pages[1].Elements[0].ID != "b" {
		t.Errorf("expected b on page 2, got %s", pages[1].Elements[0].ID)
	}
	if pages[0].AvailableHeight != 900 {
		t.Errorf("expected 900px free on page 1, got %v", pages[0].AvailableHeight)
	}
}

func TestDefaultPageHeight(t *testing.T) {
	l, err := FromBlocks(spacedBlocks()).Layout()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.PaperA4.ContentHeightPx(model.DefaultMarginMM)
	if l.PageHeight() != want {
		t.Errorf("expected default page height %v, got %v", want, l.PageHeight())
	}
}

func TestInvalidPageHeight(t *testing.T) {
	for _, h := range []float64{0, -10} {
		f := FromBlocks(spacedBlocks()).PageHeight(h)
		if _, err := f.Pages(); err == nil {
			t.Errorf("expected error for page height %v", h)
		}
		if _, err := f.Reflow(); err == nil {
			t.Errorf("expected reflow error for page height %v", h)
		}
		if _, err := f.Breaks(0); err == nil {
			t.Errorf("expected breaks error for page height %v", h)
		}
	}

	// The first error sticks even when a later call is valid
	if _, err := FromBlocks(nil).PageHeight(0).PageHeight(1000).Pages(); err == nil {
		t.Error("expected error to persist through the chain")
	}
}

func TestFlowTooTallIsRejected(t *testing.T) {
	blocks := []model.Block{
		{ID: "a", Tag: "p", Top: 0, Height: 100},
		{ID: "b", Tag: "p", Top: 1e12, Height: 100},
	}
	f := FromBlocks(blocks).PageHeight(1000)

	if _, err := f.Pages(); !errors.Is(err, pages.ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages from Pages, got %v", err)
	}
	if _, err := f.Reflow(); !errors.Is(err, pages.ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages from Reflow, got %v", err)
	}
	if _, err := f.Breaks(0); !errors.Is(err, pages.ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages from Breaks, got %v", err)
	}
	if _, err := FromBlocks(blocks[:1]).PageHeight(1000).Breaks(1e12); !errors.Is(err, pages.ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages for a tall scroll height, got %v", err)
	}

	if _, err := FromBlocks(blocks[:1]).PageHeight(1000).Pages(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestChainImmutability(t *testing.T) {
	base := FromBlocks(spacedBlocks()).PageHeight(a4).Margin(20)
	ignoring := base.IgnoreIntentionalSpacing()

	if !base.options.keepSpacing {
		t.Error("base flow should still keep intentional spacing")
	}
	if ignoring.options.keepSpacing {
		t.Error("derived flow should ignore intentional spacing")
	}

	smaller := base.PageHeight(500)
	if base.options.pageHeight != a4 {
		t.Errorf("base page height changed to %v", base.options.pageHeight)
	}
	if smaller.options.pageHeight != 500 {
		t.Errorf("expected 500, got %v", smaller.options.pageHeight)
	}
}

func TestFromBlocksCopies(t *testing.T) {
	blocks := spacedBlocks()
	f := FromBlocks(blocks)
	blocks[0].Top = 999

	if f.Blocks()[0].Top != 0 {
		t.Error("flow should not see later changes to the input slice")
	}
}

func TestFromSnapshot(t *testing.T) {
	s := model.NewSnapshot(1000, 20, spacedBlocks())
	l, err := FromSnapshot(s).Layout()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.PageHeight() != 1000 || l.StartOffset() != 20 {
		t.Errorf("expected 1000/20, got %v/%v", l.PageHeight(), l.StartOffset())
	}

	if _, err := FromSnapshot(nil).Pages(); err != nil {
		t.Errorf("nil snapshot should yield an empty flow, got %v", err)
	}

	l, err = FromSnapshot(model.NewSnapshot(0, 0, spacedBlocks())).Layout()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := model.PaperA4.ContentHeightPx(model.DefaultMarginMM); l.PageHeight() != want {
		t.Errorf("expected default page height %v, got %v", want, l.PageHeight())
	}
}

func TestMust(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic from Must with error")
		}
	}()

	Must(FromBlocks(nil).PageHeight(-1).Pages())
}

func TestReflow(t *testing.T) {
	result, err := FromBlocks(spacedBlocks()).PageHeight(a4).Margin(20).Reflow()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MovedCount != 2 {
		t.Errorf("expected 2 moves, got %d", result.MovedCount)
	}
	if got := tops(result.Blocks); !equalFloats(got, []float64{0, 110, 220}) {
		t.Errorf("unexpected tops %v", got)
	}
}

func TestReflowIntentionalSpacing(t *testing.T) {
	blocks := spacedBlocks()
	blocks[1].Pinned = true
	f := FromBlocks(blocks).PageHeight(a4).Margin(20)

	kept := Must(f.Reflow())
	if got := tops(kept.Blocks); !equalFloats(got, []float64{0, 200, 310}) {
		t.Errorf("pinned block moved: %v", got)
	}

	ignored := Must(f.IgnoreIntentionalSpacing().Reflow())
	if got := tops(ignored.Blocks); !equalFloats(got, []float64{0, 110, 220}) {
		t.Errorf("unexpected tops ignoring spacing: %v", got)
	}
}

func TestReflowConfigKeepsSpacingSetting(t *testing.T) {
	blocks := spacedBlocks()
	blocks[1].Pinned = true

	config := reflow.DefaultConfig()
	config.PreserveIntentionalSpacing = false
	result := Must(FromBlocks(blocks).PageHeight(a4).Margin(20).ReflowConfig(config).Reflow())

	if result.Blocks[1].Top != 200 {
		t.Errorf("flow setting should win over the config, got top %v", result.Blocks[1].Top)
	}
}

func TestReflowLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	Must(FromBlocks(spacedBlocks()).PageHeight(a4).Logger(log).Reflow())
	if !strings.Contains(buf.String(), "reflow pass") {
		t.Errorf("expected pass logging, got %q", buf.String())
	}
}

func TestDelete(t *testing.T) {
	blocks := []model.Block{
		{ID: "a", Top: 0, Height: 100},
		{ID: "b", Top: 110, Height: 100},
		{ID: "c", Top: 220, Height: 100},
	}
	result := Must(FromBlocks(blocks).PageHeight(a4).Margin(20).Delete("b"))

	if len(result.Blocks) != 2 || result.Blocks[1].Top != 110 {
		t.Errorf("expected c at 110, got %+v", result.Blocks)
	}
}

func TestResize(t *testing.T) {
	blocks := []model.Block{
		{ID: "a", Top: 0, Height: 300},
		{ID: "b", Top: 310, Height: 100},
	}
	// a shrank from 300 to 100 but the snapshot still holds the old layout
	result, err := FromBlocks(blocks).PageHeight(a4).Resize("a", 300, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Blocks[0].Height != 100 {
		t.Errorf("expected resized height 100, got %v", result.Blocks[0].Height)
	}
	if result.Blocks[1].Top >= 310 {
		t.Errorf("expected b to move up, got %v", result.Blocks[1].Top)
	}
}

func TestBreaks(t *testing.T) {
	blocks := []model.Block{
		{ID: "a", Tag: "p", Top: 0, Height: 400},
		{ID: "b", Tag: "p", Top: 500, Height: 500},
		{ID: "c", Tag: "p", Top: 1000, Height: 300},
	}

	breaks, err := FromBlocks(blocks).PageHeight(1000).Breaks(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalFloats(breaks, []float64{1000}) {
		t.Errorf("expected one break at 1000, got %v", breaks)
	}
	if breaks.Pages() != 2 {
		t.Errorf("expected 2 pages, got %d", breaks.Pages())
	}
}

func TestGaps(t *testing.T) {
	gaps, err := FromBlocks(spacedBlocks()).PageHeight(a4).Gaps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d", len(gaps))
	}
	if gaps[0].AfterID != "a" || gaps[0].Size != 100 {
		t.Errorf("unexpected first gap %+v", gaps[0])
	}
}

// ============================================================================
// Table Tests
// ============================================================================

const salesTable = `<table>
<caption>Sales</caption>
<tr><th>Region</th><th>Total</th></tr>
<tr><td class="total">North</td><td style="background: #f00">10</td></tr>
</table>`

func TestTables(t *testing.T) {
	tables := Tables(salesTable)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].Caption != "Sales" {
		t.Errorf("expected caption Sales, got %q", tables[0].Caption)
	}
	if got := tables[0].GetCell(1, 1).BackgroundColor; got != "rgb(255, 0, 0)" {
		t.Errorf("unexpected background %q", got)
	}
}

func TestTableSourceStylesheet(t *testing.T) {
	src := FromHTML(salesTable)
	styled := src.Stylesheet(".total { background-color: #ffeeba }")

	plain := Must(src.Tables())
	if got := plain[0].GetCell(1, 0).BackgroundColor; got != htmldoc.Transparent {
		t.Errorf("base source should be unstyled, got %q", got)
	}

	tables := Must(styled.Tables())
	if got := tables[0].GetCell(1, 0).BackgroundColor; got != "rgb(255, 238, 186)" {
		t.Errorf("expected stylesheet color, got %q", got)
	}
}

func TestTableSourceResolver(t *testing.T) {
	green := htmldoc.StyleResolverFunc(func(n *html.Node) htmldoc.ComputedStyle {
		return htmldoc.ComputedStyle{Background: "rgb(0, 128, 0)"}
	})
	tables := Must(FromHTML(salesTable).Resolver(green).HeaderFallback("rgb(1, 2, 3)").Tables())

	if got := tables[0].GetCell(0, 0).BackgroundColor; got != "rgb(0, 128, 0)" {
		t.Errorf("expected resolver color, got %q", got)
	}
}

func TestFromMarkdown(t *testing.T) {
	src := "| A | B |\n|---|---|\n| 1 | 2 |\n"
	tables := Must(FromMarkdown(src).Tables())

	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].GetCell(1, 1).Value != "2" {
		t.Errorf("unexpected cell %q", tables[0].GetCell(1, 1).Value)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := FromHTML(salesTable).WriteXLSX(&buf, xlsx.DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wb, err := xlsx.OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer wb.Close()

	if names := wb.SheetNames(); len(names) != 1 || names[0] != "Table" {
		t.Errorf("unexpected sheet names %v", names)
	}

	if err := FromHTML("<p>no tables</p>").WriteXLSX(&buf, xlsx.DefaultOptions()); err == nil {
		t.Error("expected error for markup without tables")
	}
}

const salesDocument = `<!DOCTYPE html>
<html><head><title>Q3 Report</title><style>.total { background: #ffeeba }</style></head>
<body style="background-color: #d4edda">
<h1>Q3</h1>
<table>
<tr><th>Region</th><th>Total</th></tr>
<tr><td class="total">North</td><td>10</td></tr>
</table>
</body></html>`

func TestFromDocument(t *testing.T) {
	src := FromDocument(salesDocument)

	title, err := src.Title()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Q3 Report" {
		t.Errorf("expected title Q3 Report, got %q", title)
	}

	tables := Must(src.Tables())
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if got := tables[0].GetCell(1, 0).BackgroundColor; got != "rgb(255, 238, 186)" {
		t.Errorf("expected head stylesheet color, got %q", got)
	}
	// The body background is inherited inside a whole document
	if got := tables[0].GetCell(1, 1).BackgroundColor; got != "rgb(212, 237, 218)" {
		t.Errorf("expected body background, got %q", got)
	}

	if title, _ := FromHTML(salesTable).Title(); title != "" {
		t.Errorf("fragments have no title, got %q", title)
	}
}

func TestFromDocumentWriteXLSXNamesSheets(t *testing.T) {
	var buf bytes.Buffer
	if err := FromDocument(salesDocument).WriteXLSX(&buf, xlsx.DefaultOptions()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wb, err := xlsx.OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer wb.Close()

	if names := wb.SheetNames(); len(names) != 1 || names[0] != "Q3 Report" {
		t.Errorf("unexpected sheet names %v", names)
	}
}

// ============================================================================
// HTML reflow Tests
// ============================================================================

func spacedMeasurer() htmldoc.Measurer {
	geometry := map[string]htmldoc.Geometry{
		"a": {Top: 0, Height: 100},
		"b": {Top: 200, Height: 100},
		"c": {Top: 400, Height: 100},
	}
	return htmldoc.MeasurerFunc(func(id string, _ *html.Node) (htmldoc.Geometry, bool) {
		g, ok := geometry[id]
		return g, ok
	})
}

const taggedFragment = `<p data-element-id="a">A</p><p data-element-id="b">B</p><p data-element-id="c">C</p>`

func TestReflowHTML(t *testing.T) {
	settings := FromBlocks(nil).PageHeight(a4).Margin(20)
	out, result, err := ReflowHTML(taggedFragment, spacedMeasurer(), settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.MovedCount != 2 {
		t.Errorf("expected 2 moves, got %d", result.MovedCount)
	}
	if !strings.Contains(out, `<p data-element-id="b" style="margin-top: -90px">B</p>`) {
		t.Errorf("expected margin patch for b, got %s", out)
	}
	if !strings.Contains(out, `<p data-element-id="a">A</p>`) {
		t.Errorf("a should be untouched, got %s", out)
	}
}

func TestReflowHTMLSettingsError(t *testing.T) {
	_, _, err := ReflowHTML(taggedFragment, spacedMeasurer(), FromBlocks(nil).PageHeight(0))
	if err == nil {
		t.Error("expected error from invalid settings")
	}
}

func TestAnnotateHTML(t *testing.T) {
	tagged, ids, err := AnnotateHTML("<p>A</p><p>B</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}

	f, err := FromHTMLBlocks(tagged, htmldoc.MeasurerFunc(func(id string, _ *html.Node) (htmldoc.Geometry, bool) {
		return htmldoc.Geometry{Top: 0, Height: 10}, id == ids[0]
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if blocks := f.Blocks(); len(blocks) != 1 || blocks[0].ID != ids[0] {
		t.Errorf("expected only the measured block, got %+v", blocks)
	}
}

func TestApplyPatches(t *testing.T) {
	out, err := ApplyPatches(taggedFragment, []reflow.Patch{{ID: "c", MarginTop: 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `<p data-element-id="c" style="margin-top: 5px">C</p>`) {
		t.Errorf("unexpected output %s", out)
	}
}
