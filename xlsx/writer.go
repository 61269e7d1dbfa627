package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
)

// DefaultHeaderFill is the fill of header cells, the hex form of
// htmldoc.HeaderFallbackColor
const DefaultHeaderFill = "E9ECEF"

// Column widths are measured in characters
const (
	minColumnWidth = 10
	maxColumnWidth = 50
	columnPadding  = 2
	maxSheetName   = 31
)

// Options configures workbook output.
type Options struct {
	// HeaderFill is the RRGGBB fill of header cells (default DefaultHeaderFill)
	HeaderFill string

	// CellColors fills every cell with its resolved background instead of
	// only filling header cells. Header cells without a background still
	// get HeaderFill.
	CellColors bool

	// SheetName is the base name of the sheets (default "Table"). With
	// several tables each sheet is numbered after it.
	SheetName string
}

// DefaultOptions returns the options matching the table download view:
// bold header cells with a light gray fill and unstyled body cells.
func DefaultOptions() Options {
	return Options{HeaderFill: DefaultHeaderFill}
}

// Write writes tables to w as a workbook with one sheet per table.
func Write(w io.Writer, tables []model.Table) error {
	return WriteWithOptions(w, tables, DefaultOptions())
}

// WriteWithOptions writes tables to w as a workbook with one sheet per table.
// A single table is written to a sheet named after opts.SheetName; several
// tables are named "<SheetName> N", followed by the start of their caption
// when present.
func WriteWithOptions(w io.Writer, tables []model.Table, opts Options) error {
	if len(tables) == 0 {
		return errors.New("no tables to write")
	}
	if opts.HeaderFill == "" {
		opts.HeaderFill = DefaultHeaderFill
	}

	styles := newStyleRegistry()
	strs := newStringTable()
	names := sheetNames(tables, opts.SheetName)

	sheets := make([]*worksheetXML, len(tables))
	for i := range tables {
		sheets[i] = buildSheet(&tables[i], opts, styles, strs)
	}

	zw := zip.NewWriter(w)
	parts := []part{
		{"[Content_Types].xml", contentTypes(len(tables))},
		{"_rels/.rels", &relationshipsXML{Relationship: []relationshipXML{
			{ID: "rId1", Type: relOfficeDocument, Target: "xl/workbook.xml"},
		}}},
		{"xl/workbook.xml", workbook(names)},
		{"xl/_rels/workbook.xml.rels", workbookRels(len(tables))},
		{"xl/styles.xml", styles.xml()},
		{"xl/sharedStrings.xml", strs.xml()},
	}
	for i, sheet := range sheets {
		parts = append(parts, part{fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1), sheet})
	}

	for _, p := range parts {
		if err := writePart(zw, p.name, p.v); err != nil {
			return err
		}
	}
	return errors.Wrap(zw.Close(), "finishing workbook")
}

// part is one XML file of the package
type part struct {
	name string
	v    any
}

func writePart(zw *zip.Writer, name string, v any) error {
	f, err := zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	if err := xml.NewEncoder(f).Encode(v); err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	return nil
}

func buildSheet(t *model.Table, opts Options, styles *styleRegistry, strs *stringTable) *worksheetXML {
	ws := &worksheetXML{}

	cols := 0
	for i, row := range t.Data {
		rx := rowXML{R: i + 1, Cells: make([]cellXML, 0, len(row))}
		for j, value := range row {
			var cell model.Cell
			if i < len(t.Cells) && j < len(t.Cells[i]) {
				cell = t.Cells[i][j]
			}
			rx.Cells = append(rx.Cells, cellXML{
				R: CellRef(j, i),
				T: "s",
				S: styles.cellStyle(cell, opts),
				V: strconv.Itoa(strs.index(value)),
			})
		}
		if len(row) > cols {
			cols = len(row)
		}
		ws.SheetData.Rows = append(ws.SheetData.Rows, rx)
	}

	if cols == 0 {
		ws.Dimension = &dimensionXML{Ref: "A1"}
		return ws
	}
	ws.Dimension = &dimensionXML{Ref: "A1:" + CellRef(cols-1, len(t.Data)-1)}
	ws.Cols = &colsXML{Col: make([]colXML, cols)}
	for j := 0; j < cols; j++ {
		ws.Cols.Col[j] = colXML{Min: j + 1, Max: j + 1, Width: columnWidth(t.Data, j), CustomWidth: 1}
	}
	return ws
}

// columnWidth fits the longest value of a column within the width bounds
func columnWidth(data [][]string, col int) float64 {
	width := minColumnWidth
	for _, row := range data {
		if col < len(row) {
			if n := utf8.RuneCountInString(row[col]); n > width {
				width = n
			}
		}
	}
	return float64(min(width+columnPadding, maxColumnWidth))
}

// sheetNames names one sheet per table. Names are unique, at most 31
// characters and free of characters spreadsheet applications reject.
func sheetNames(tables []model.Table, base string) []string {
	base = truncateRunes(sanitizeSheetName(base), 20)
	if base == "" {
		base = "Table"
	}

	names := make([]string, len(tables))
	used := make(map[string]bool)
	for i, t := range tables {
		name := base
		if len(tables) > 1 {
			name = fmt.Sprintf("%s %d", base, i+1)
			if caption := []rune(t.Caption); len(caption) > 0 {
				name += " - " + string(caption[:min(len(caption), 20)])
			}
		}
		name = truncateRunes(sanitizeSheetName(name), maxSheetName)

		base := name
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf(" (%d)", n)
			name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(strings.Trim(name, "'"))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func contentTypes(sheets int) *contentTypesXML {
	ct := &contentTypesXML{
		Defaults: []defaultXML{
			{Extension: "rels", ContentType: ctRelationships},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []overrideXML{
			{PartName: "/xl/workbook.xml", ContentType: ctWorkbook},
			{PartName: "/xl/styles.xml", ContentType: ctStyles},
			{PartName: "/xl/sharedStrings.xml", ContentType: ctSharedStrings},
		},
	}
	for i := 1; i <= sheets; i++ {
		ct.Overrides = append(ct.Overrides, overrideXML{
			PartName:    fmt.Sprintf("/xl/worksheets/sheet%d.xml", i),
			ContentType: ctWorksheet,
		})
	}
	return ct
}

func workbook(names []string) *workbookXML {
	wb := &workbookXML{}
	for i, name := range names {
		wb.Sheets.Sheet = append(wb.Sheets.Sheet, sheetRefXML{
			Name:    name,
			SheetID: i + 1,
			RID:     fmt.Sprintf("rId%d", i+1),
		})
	}
	return wb
}

// workbookRels links sheets as rId1..rIdN, then styles and shared strings
func workbookRels(sheets int) *relationshipsXML {
	rels := &relationshipsXML{}
	for i := 1; i <= sheets; i++ {
		rels.Relationship = append(rels.Relationship, relationshipXML{
			ID:     fmt.Sprintf("rId%d", i),
			Type:   relWorksheet,
			Target: fmt.Sprintf("worksheets/sheet%d.xml", i),
		})
	}
	rels.Relationship = append(rels.Relationship,
		relationshipXML{ID: fmt.Sprintf("rId%d", sheets+1), Type: relStyles, Target: "styles.xml"},
		relationshipXML{ID: fmt.Sprintf("rId%d", sheets+2), Type: relSharedStrings, Target: "sharedStrings.xml"},
	)
	return rels
}

// stringTable deduplicates cell text into the shared strings part
type stringTable struct {
	ids    map[string]int
	values []string
	refs   int
}

func newStringTable() *stringTable {
	return &stringTable{ids: make(map[string]int)}
}

func (s *stringTable) index(v string) int {
	s.refs++
	if i, ok := s.ids[v]; ok {
		return i
	}
	i := len(s.values)
	s.ids[v] = i
	s.values = append(s.values, v)
	return i
}

func (s *stringTable) xml() *sharedStringsXML {
	sst := &sharedStringsXML{Count: s.refs, Unique: len(s.values), SI: make([]siXML, len(s.values))}
	for i, v := range s.values {
		sst.SI[i] = siXML{T: v}
	}
	return sst
}

// Fonts and fills every styles part starts with
const (
	fontRegular = 0
	fontBold    = 1
	firstFill   = 2 // fills 0 and 1 are reserved as none and gray125
)

type xfKey struct {
	fill string
	bold bool
}

// styleRegistry assigns cell format indexes to fill/bold combinations
type styleRegistry struct {
	fills []string
	fill  map[string]int
	xfs   []xfKey
	xf    map[xfKey]int
}

func newStyleRegistry() *styleRegistry {
	r := &styleRegistry{
		fill: make(map[string]int),
		xf:   make(map[xfKey]int),
	}
	r.style(xfKey{}) // format 0 is the plain default
	return r
}

// cellStyle returns the cell format of a table cell
func (r *styleRegistry) cellStyle(c model.Cell, opts Options) int {
	key := xfKey{bold: c.IsHeader}
	if opts.CellColors {
		key.fill = htmldoc.HexColor(c.BackgroundColor)
	}
	if c.IsHeader && (key.fill == "" || !opts.CellColors) {
		key.fill = strings.ToUpper(opts.HeaderFill)
	}
	return r.style(key)
}

func (r *styleRegistry) style(key xfKey) int {
	if i, ok := r.xf[key]; ok {
		return i
	}
	if key.fill != "" {
		if _, ok := r.fill[key.fill]; !ok {
			r.fill[key.fill] = firstFill + len(r.fills)
			r.fills = append(r.fills, key.fill)
		}
	}
	i := len(r.xfs)
	r.xf[key] = i
	r.xfs = append(r.xfs, key)
	return i
}

func (r *styleRegistry) xml() *stylesXML {
	s := &stylesXML{
		Fonts: fontsXML{Font: []fontXML{
			{Sz: valXML{"11"}, Name: valXML{"Calibri"}},
			{B: &struct{}{}, Sz: valXML{"11"}, Name: valXML{"Calibri"}},
		}},
		Fills: fillsXML{Fill: []fillXML{
			{PatternFill: patternFillXML{PatternType: "none"}},
			{PatternFill: patternFillXML{PatternType: "gray125"}},
		}},
		Borders:      bordersXML{Border: []borderXML{{}}},
		CellStyleXfs: cellXfsXML{Xf: []xfXML{{}}},
		CellXfs:      &cellXfsXML{},
	}
	for _, hex := range r.fills {
		s.Fills.Fill = append(s.Fills.Fill, fillXML{PatternFill: patternFillXML{
			PatternType: "solid",
			FgColor:     &colorXML{RGB: "FF" + hex},
		}})
	}
	for _, key := range r.xfs {
		xf := xfXML{FontID: fontRegular}
		if key.bold {
			xf.FontID = fontBold
			xf.ApplyFont = 1
		}
		if key.fill != "" {
			xf.FillID = r.fill[key.fill]
			xf.ApplyFill = 1
		}
		s.CellXfs.Xf = append(s.CellXfs.Xf, xf)
	}

	s.Fonts.Count = len(s.Fonts.Font)
	s.Fills.Count = len(s.Fills.Fill)
	s.Borders.Count = len(s.Borders.Border)
	s.CellStyleXfs.Count = len(s.CellStyleXfs.Xf)
	s.CellXfs.Count = len(s.CellXfs.Xf)
	return s
}
