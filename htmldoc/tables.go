package htmldoc

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pageflow/model"
)

// ExportStylesheet is the stylesheet applied to tables rendered for export.
// Pass it as TableOptions.BaseStylesheet to resolve colors the way the export
// view shows them.
const ExportStylesheet = `
table {
  border-collapse: collapse;
  width: 100%;
}
th, td {
  border: 1px solid #ddd;
  padding: 8px;
  text-align: left;
}
th {
  background-color: #f2f2f2;
  font-weight: bold;
}
thead {
  background-color: #f8f9fa;
}
thead th {
  background-color: #e9ecef;
  font-weight: bold;
  color: #495057;
}
.bg-gray-100 { background-color: #f3f4f6 !important; }
.bg-gray-200 { background-color: #e5e7eb !important; }
.bg-blue-100 { background-color: #dbeafe !important; }
.bg-green-100 { background-color: #d1fae5 !important; }
.text-white { color: #ffffff !important; }
.text-gray-900 { color: #111827 !important; }
`

// MaxColSpan bounds colspan expansion so a hostile attribute cannot blow up
// a row
const MaxColSpan = 1000

// TableOptions configures table extraction
type TableOptions struct {
	// BaseStylesheet is applied before any <style> element of the fragment
	BaseStylesheet string

	// Resolver replaces the built-in style table. When set, BaseStylesheet
	// and embedded <style> elements are ignored.
	Resolver StyleResolver

	// HeaderFallback is the background given to header cells that resolve
	// to transparent (default: HeaderFallbackColor)
	HeaderFallback string
}

// DefaultTableOptions returns sensible default options
func DefaultTableOptions() TableOptions {
	return TableOptions{
		HeaderFallback: HeaderFallbackColor,
	}
}

// ExtractTables extracts every table of an HTML fragment with default
// options. Malformed markup never fails; a fragment without tables yields an
// empty, non-nil slice.
func ExtractTables(fragment string) []model.Table {
	tables, err := ExtractTablesFrom(strings.NewReader(fragment), DefaultTableOptions())
	if err != nil {
		return make([]model.Table, 0)
	}
	return tables
}

// ExtractTablesFrom reads an HTML fragment and extracts its tables. Errors
// come only from reading r.
func ExtractTablesFrom(r io.Reader, opts TableOptions) ([]model.Table, error) {
	root, err := parseFragment(r)
	if err != nil {
		return nil, err
	}
	return extractTables(root, opts), nil
}

// parseFragment parses markup into a private tree under a synthetic <div>
// root, the way the markup would sit inside a container element
func parseFragment(r io.Reader) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(r, root)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML fragment")
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func extractTables(root *html.Node, opts TableOptions) []model.Table {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = newFragmentStyles(root, opts.BaseStylesheet)
	}
	fallback := opts.HeaderFallback
	if fallback == "" {
		fallback = HeaderFallbackColor
	}

	tables := make([]model.Table, 0)
	for _, tableNode := range findAll(root, atom.Table) {
		if table, ok := buildTable(tableNode, root, resolver, fallback); ok {
			tables = append(tables, table)
		}
	}
	return tables
}

// buildTable extracts one table. ok is false when it has no cells.
func buildTable(tableNode, root *html.Node, resolver StyleResolver, fallback string) (model.Table, bool) {
	rows := tableRows(tableNode)

	cells := make([][]model.Cell, 0, len(rows))
	for _, tr := range rows {
		row := make([]model.Cell, 0)
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
				continue
			}
			cell := buildCell(c, root, resolver, fallback)
			for i := 0; i < cell.ColSpan; i++ {
				row = append(row, cell)
			}
		}
		if len(row) > 0 {
			cells = append(cells, row)
		}
	}
	if len(cells) == 0 {
		return model.Table{}, false
	}
	padRows(cells)

	table := model.NewTable(renderNode(tableNode), cells)
	for c := tableNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Caption {
			table.Caption = cellText(c)
			break
		}
	}
	return *table, true
}

// padRows extends short rows with empty transparent cells
func padRows(rows [][]model.Cell) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	filler := model.Cell{BackgroundColor: Transparent, TextColor: DefaultTextColor, ColSpan: 1, RowSpan: 1}
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], filler)
		}
	}
}

// tableRows returns the rows owned by a table: header section rows first,
// then body rows in source order, then footer rows. Rows of nested tables
// are not included.
func tableRows(table *html.Node) []*html.Node {
	var head, body, foot []*html.Node

	collect := func(section *html.Node) []*html.Node {
		rows := make([]*html.Node, 0)
		for c := section.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Tr {
				rows = append(rows, c)
			}
		}
		return rows
	}

	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			head = append(head, collect(c)...)
		case atom.Tbody:
			body = append(body, collect(c)...)
		case atom.Tfoot:
			foot = append(foot, collect(c)...)
		case atom.Tr:
			body = append(body, c)
		}
	}

	rows := make([]*html.Node, 0, len(head)+len(body)+len(foot))
	rows = append(rows, head...)
	rows = append(rows, body...)
	return append(rows, foot...)
}

func buildCell(n, root *html.Node, resolver StyleResolver, fallback string) model.Cell {
	style := resolver.ComputedStyle(n)
	isHeader := n.DataAtom == atom.Th

	background := style.Background
	if IsTransparent(background) {
		background = ResolveInheritedColor(n, root, resolver)
	}
	if IsTransparent(background) {
		background = Transparent
		if isHeader {
			background = fallback
		}
	}

	return model.Cell{
		Value:           cellText(n),
		BackgroundColor: background,
		TextColor:       style.Color,
		IsHeader:        isHeader,
		ColSpan:         spanAttr(n, "colspan", MaxColSpan),
		RowSpan:         spanAttr(n, "rowspan", 65534),
	}
}

// ResolveInheritedColor walks from the parent of node up to, but not
// including, root and returns the first non-transparent background. It
// returns Transparent when every ancestor is transparent.
func ResolveInheritedColor(node, root *html.Node, resolver StyleResolver) string {
	if node == nil {
		return Transparent
	}
	for p := node.Parent; p != nil && p != root; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if bg := resolver.ComputedStyle(p).Background; !IsTransparent(bg) {
			return bg
		}
	}
	return Transparent
}

// cellText returns the text content of a cell, NFC-normalised and trimmed
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(norm.NFC.String(b.String()))
}

// spanAttr reads colspan/rowspan, defaulting to 1 for missing or invalid
// values
func spanAttr(n *html.Node, key string, max int) int {
	v, err := strconv.Atoi(attr(n, key))
	if err != nil || v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}

// findAll returns every element with the given atom in document order
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	found := make([]*html.Node, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

// renderNode serialises a node back to markup
func renderNode(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// newFragmentStyles builds the style table for a fragment: the base sheet
// followed by every <style> element in document order
func newFragmentStyles(root *html.Node, base string) *StyleTable {
	t := NewStyleTable(base)
	for _, s := range findAll(root, atom.Style) {
		var css strings.Builder
		for c := s.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				css.WriteString(c.Data)
			}
		}
		t.AddStylesheet(css.String())
	}
	return t
}
