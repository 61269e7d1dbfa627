package model

import (
	"fmt"
	"strings"
)

// Table represents a table extracted from markup. Data and Cells always have
// the same dimensions and every row has the same length.
type Table struct {
	HTML    string     `json:"html"`
	Caption string     `json:"caption,omitempty"`
	Data    [][]string `json:"data"`
	Cells   [][]Cell   `json:"cellData"`
}

// Cell represents a table cell with its resolved styling
type Cell struct {
	Value           string `json:"value"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"color,omitempty"`
	IsHeader        bool   `json:"isHeader,omitempty"`

	// Spans as declared in the source. ColSpan is already expanded in the
	// grid; RowSpan is recorded only.
	ColSpan int `json:"colSpan,omitempty"`
	RowSpan int `json:"rowSpan,omitempty"`
}

// NewTable creates a table from a styled grid, deriving the string grid.
// Ragged rows are padded with empty cells so the table is rectangular.
func NewTable(html string, cells [][]Cell) *Table {
	width := 0
	for _, row := range cells {
		if len(row) > width {
			width = len(row)
		}
	}

	table := &Table{
		HTML:  html,
		Data:  make([][]string, len(cells)),
		Cells: make([][]Cell, len(cells)),
	}
	for i, row := range cells {
		padded := make([]Cell, width)
		copy(padded, row)
		data := make([]string, width)
		for j := range padded {
			data[j] = padded[j].Value
		}
		table.Cells[i] = padded
		table.Data[i] = data
	}
	return table
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Cells)
}

// ColCount returns the number of columns in the first row
func (t *Table) ColCount() int {
	if len(t.Cells) == 0 {
		return 0
	}
	return len(t.Cells[0])
}

// IsRectangular reports whether every row has the same length in both grids
func (t *Table) IsRectangular() bool {
	if len(t.Data) != len(t.Cells) {
		return false
	}
	cols := t.ColCount()
	for i := range t.Cells {
		if len(t.Cells[i]) != cols || len(t.Data[i]) != cols {
			return false
		}
	}
	return true
}

// GetCell returns the cell at the given row and column (0-indexed)
func (t *Table) GetCell(row, col int) *Cell {
	if row < 0 || row >= len(t.Cells) {
		return nil
	}
	if col < 0 || col >= len(t.Cells[row]) {
		return nil
	}
	return &t.Cells[row][col]
}

// HasHeader reports whether the first row consists of header cells
func (t *Table) HasHeader() bool {
	if len(t.Cells) == 0 {
		return false
	}
	for _, cell := range t.Cells[0] {
		if cell.IsHeader {
			return true
		}
	}
	return false
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.Data) == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		for _, v := range row {
			sb.WriteString("| ")
			sb.WriteString(escapeMarkdownCell(v))
			sb.WriteString(" ")
		}
		sb.WriteString("|\n")
	}

	// Header row
	writeRow(t.Data[0])

	// Separator
	for range t.Data[0] {
		sb.WriteString("|---")
	}
	sb.WriteString("|\n")

	// Data rows
	for _, row := range t.Data[1:] {
		writeRow(row)
	}

	return sb.String()
}

// ToCSV converts the table to CSV format
func (t *Table) ToCSV() string {
	var sb strings.Builder
	for _, row := range t.Data {
		for j, text := range row {
			// Escape quotes and wrap in quotes if necessary
			if strings.ContainsAny(text, ",\"\n") {
				text = "\"" + strings.ReplaceAll(text, "\"", "\"\"") + "\""
			}
			sb.WriteString(text)
			if j < len(row)-1 {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToTSV converts the table to tab-separated rows, the format pasted by
// spreadsheet applications
func (t *Table) ToTSV() string {
	rows := make([]string, len(t.Data))
	for i, row := range t.Data {
		rows[i] = strings.Join(row, "\t")
	}
	return strings.Join(rows, "\n")
}

// TableExport is the JSON download form of a table. Data holds keyed
// records ([]map[string]string) when the first row is entirely header cells
// and at least one body row follows, and the raw grid ([][]string)
// otherwise.
type TableExport struct {
	Caption string   `json:"caption,omitempty"`
	Headers []string `json:"headers,omitempty"`
	Data    any      `json:"data"`
}

// Export builds the JSON download form of the table. Empty header texts
// are keyed "Column N"; a repeated header text, such as one duplicated by
// colspan, gets a numeric suffix ("Info", "Info 2") so no column is lost.
func (t *Table) Export() TableExport {
	allHeaders := len(t.Cells) > 0 && len(t.Cells[0]) > 0
	if allHeaders {
		for _, cell := range t.Cells[0] {
			if !cell.IsHeader {
				allHeaders = false
				break
			}
		}
	}
	if !allHeaders || len(t.Data) < 2 {
		return TableExport{Caption: t.Caption, Data: t.Data}
	}

	headers := recordKeys(t.Data[0])
	records := make([]map[string]string, 0, len(t.Data)-1)
	for _, row := range t.Data[1:] {
		record := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = row[i]
			} else {
				record[h] = ""
			}
		}
		records = append(records, record)
	}
	return TableExport{Caption: t.Caption, Headers: headers, Data: records}
}

// recordKeys turns a header row into distinct record keys
func recordKeys(row []string) []string {
	keys := make([]string, len(row))
	seen := make(map[string]bool, len(row))
	for i, h := range row {
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		key := h
		for n := 2; seen[key]; n++ {
			key = fmt.Sprintf("%s %d", h, n)
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

func escapeMarkdownCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\n", " ")
}
