package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// Reader provides access to the sheets of an XLSX workbook. It reads cell
// values and the bold/fill part of cell formats, enough to verify what
// Write produced or to inspect a workbook from elsewhere.
type Reader struct {
	files         map[string]*zip.File
	sharedStrings []string
	formats       []cellFormat
	sheets        []*Sheet
}

// cellFormat is the resolved style of one cellXfs entry
type cellFormat struct {
	bold bool
	fill string
}

// Open opens an XLSX file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file info: %w", err)
	}
	return OpenReader(f, info.Size())
}

// OpenReader reads a workbook from r. The workbook is parsed completely
// before OpenReader returns, so r is not used afterwards.
func OpenReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	reader := &Reader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		reader.files[f.Name] = f
	}

	// Validate required files exist
	for _, name := range []string{"[Content_Types].xml", "xl/workbook.xml"} {
		if reader.files[name] == nil {
			return nil, fmt.Errorf("missing required file: %s", name)
		}
	}

	// Shared strings and styles are optional
	_ = reader.parseSharedStrings()
	_ = reader.parseStyles()

	if err := reader.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
	}
	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	r.files = nil
	return nil
}

// decode unmarshals a part of the archive.
func (r *Reader) decode(name string, v any) error {
	f := r.files[name]
	if f == nil {
		return fmt.Errorf("file not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// parseSharedStrings parses the shared strings table.
func (r *Reader) parseSharedStrings() error {
	var sst sharedStringsXML
	if err := r.decode("xl/sharedStrings.xml", &sst); err != nil {
		return err
	}

	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if si.T != "" || len(si.R) == 0 {
			r.sharedStrings[i] = si.T
			continue
		}
		// Rich text - concatenate all runs
		var text strings.Builder
		for _, run := range si.R {
			text.WriteString(run.T)
		}
		r.sharedStrings[i] = text.String()
	}
	return nil
}

// parseStyles resolves every cell format to its bold flag and solid fill.
func (r *Reader) parseStyles() error {
	var styles stylesXML
	if err := r.decode("xl/styles.xml", &styles); err != nil {
		return err
	}
	if styles.CellXfs == nil {
		return nil
	}

	r.formats = make([]cellFormat, len(styles.CellXfs.Xf))
	for i, xf := range styles.CellXfs.Xf {
		var format cellFormat
		if xf.FontID >= 0 && xf.FontID < len(styles.Fonts.Font) {
			format.bold = styles.Fonts.Font[xf.FontID].B != nil
		}
		if xf.FillID >= 0 && xf.FillID < len(styles.Fills.Fill) {
			pf := styles.Fills.Fill[xf.FillID].PatternFill
			if pf.PatternType == "solid" && pf.FgColor != nil {
				format.fill = strings.ToUpper(pf.FgColor.RGB)
				if len(format.fill) == 8 {
					format.fill = format.fill[2:] // drop alpha
				}
			}
		}
		r.formats[i] = format
	}
	return nil
}

// parseWorksheets parses all worksheet files in workbook order.
func (r *Reader) parseWorksheets() error {
	var wb workbookXML
	if err := r.decode("xl/workbook.xml", &wb); err != nil {
		return fmt.Errorf("parsing workbook: %w", err)
	}

	targets := make(map[string]string)
	var rels relationshipsXML
	if err := r.decode("xl/_rels/workbook.xml.rels", &rels); err == nil {
		for _, rel := range rels.Relationship {
			targets[rel.ID] = rel.Target
		}
	}

	r.sheets = make([]*Sheet, 0, len(wb.Sheets.Sheet))
	for i, ref := range wb.Sheets.Sheet {
		target := targets[ref.RID]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Join("xl", target)
		}

		var ws worksheetXML
		if err := r.decode(target, &ws); err != nil {
			continue // Skip sheets we can't read
		}
		r.sheets = append(r.sheets, r.buildSheet(ref.Name, &ws))
	}

	if len(r.sheets) == 0 {
		return fmt.Errorf("no worksheets found")
	}
	return nil
}

// buildSheet turns a parsed worksheet into a dense grid of cells.
func (r *Reader) buildSheet(name string, ws *worksheetXML) *Sheet {
	sheet := &Sheet{Name: name}

	// First pass: find dimensions
	maxRow, maxCol := 0, -1
	for _, row := range ws.SheetData.Rows {
		maxRow = max(maxRow, row.R)
		for _, c := range row.Cells {
			if col, _, err := ParseCellRef(c.R); err == nil {
				maxCol = max(maxCol, col)
			}
		}
	}

	sheet.Rows = make([][]Cell, maxRow)
	for i := range sheet.Rows {
		sheet.Rows[i] = make([]Cell, maxCol+1)
		for j := range sheet.Rows[i] {
			sheet.Rows[i][j] = Cell{Row: i, Col: j}
		}
	}

	// Second pass: populate cells
	for _, row := range ws.SheetData.Rows {
		rowIdx := row.R - 1
		if rowIdx < 0 || rowIdx >= len(sheet.Rows) {
			continue
		}
		for _, c := range row.Cells {
			col, _, err := ParseCellRef(c.R)
			if err != nil || col >= len(sheet.Rows[rowIdx]) {
				continue
			}
			cell := &sheet.Rows[rowIdx][col]
			cell.Value = r.cellValue(c)
			if c.S >= 0 && c.S < len(r.formats) {
				cell.Bold = r.formats[c.S].bold
				cell.Fill = r.formats[c.S].fill
			}
		}
	}

	if ws.Cols != nil {
		sheet.Widths = make([]float64, maxCol+1)
		for _, col := range ws.Cols.Col {
			for j := col.Min; j <= col.Max && j <= len(sheet.Widths); j++ {
				if j >= 1 {
					sheet.Widths[j-1] = col.Width
				}
			}
		}
	}
	return sheet
}

func (r *Reader) cellValue(c cellXML) string {
	switch c.T {
	case "s": // Shared string
		idx, err := strconv.Atoi(c.V)
		if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
			return r.sharedStrings[idx]
		}
		return ""
	case "b": // Boolean
		if c.V == "1" {
			return "TRUE"
		}
		return "FALSE"
	case "inlineStr": // Inline string
		if c.Is != nil {
			return c.Is.T
		}
		return ""
	default: // Number, error or formula result
		return c.V
	}
}

// SheetCount returns the number of sheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all sheets in workbook order.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.Name
	}
	return names
}

// Sheet returns the sheet at the given index (0-indexed).
func (r *Reader) Sheet(index int) (*Sheet, error) {
	if index < 0 || index >= len(r.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range [0, %d)", index, len(r.sheets))
	}
	return r.sheets[index], nil
}

// SheetByName returns the sheet with the given name.
func (r *Reader) SheetByName(name string) (*Sheet, error) {
	for _, s := range r.sheets {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("sheet not found: %s", name)
}
