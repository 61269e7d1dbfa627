package xlsx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pageflow/htmldoc"
	"github.com/tsawler/pageflow/model"
)

func roundTrip(t *testing.T, tables []model.Table, opts Options) *Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteWithOptions(&buf, tables, opts))
	r, err := OpenReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return r
}

func TestWriteSingleTable(t *testing.T) {
	tables := htmldoc.ExtractTables(`<table>
		<tr><th>Name</th><th>Notes</th></tr>
		<tr><td style="background: #ff0000">Alice</td><td></td></tr>
		<tr><td colspan="2">Total</td></tr>
	</table>`)
	require.Len(t, tables, 1)

	r := roundTrip(t, tables, DefaultOptions())
	assert.Equal(t, []string{"Table"}, r.SheetNames())

	sheet, err := r.Sheet(0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name", "Notes"}, {"Alice", ""}, {"Total", "Total"}}, sheet.Data())

	header := sheet.CellByRef("A1")
	assert.True(t, header.Bold)
	assert.Equal(t, DefaultHeaderFill, header.Fill)

	// Body colors are only written when asked for
	body := sheet.CellByRef("A2")
	assert.False(t, body.Bold)
	assert.Empty(t, body.Fill)
}

func TestWriteCellColors(t *testing.T) {
	tables := htmldoc.ExtractTables(`<table>
		<tr><th style="background-color: #336699">Styled</th><th>Plain</th></tr>
		<tr><td style="background: #ff0000">red</td><td>none</td></tr>
	</table>`)

	r := roundTrip(t, tables, Options{CellColors: true})
	sheet, _ := r.Sheet(0)

	assert.Equal(t, "336699", sheet.CellByRef("A1").Fill)
	assert.Equal(t, DefaultHeaderFill, sheet.CellByRef("B1").Fill)
	assert.Equal(t, "FF0000", sheet.CellByRef("A2").Fill)
	assert.Empty(t, sheet.CellByRef("B2").Fill)
	assert.True(t, sheet.CellByRef("A1").Bold)
	assert.False(t, sheet.CellByRef("A2").Bold)
}

func TestWriteMultipleTablesNamesSheets(t *testing.T) {
	tables := []model.Table{
		*model.NewTable("", [][]model.Cell{{{Value: "a"}}}),
		*model.NewTable("", [][]model.Cell{{{Value: "b"}}}),
		*model.NewTable("", [][]model.Cell{{{Value: "c"}}}),
	}
	tables[1].Caption = "Quarterly results: by region"
	tables[2].Caption = "x"

	r := roundTrip(t, tables, DefaultOptions())
	assert.Equal(t, []string{"Table 1", "Table 2 - Quarterly results_ b", "Table 3 - x"}, r.SheetNames())

	sheet, err := r.SheetByName("Table 3 - x")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c"}}, sheet.Data())
}

func TestSheetNamesAreUniqueAndBounded(t *testing.T) {
	tables := make([]model.Table, 2)
	tables[0].Caption = strings.Repeat("z", 40)
	tables[1].Caption = strings.Repeat("z", 40)

	names := sheetNames(tables, "")
	assert.Equal(t, "Table 1 - zzzzzzzzzzzzzzzzzzzz", names[0])
	assert.Equal(t, "Table 2 - zzzzzzzzzzzzzzzzzzzz", names[1])

	assert.Equal(t, "Table 1 - _x_", sheetNames([]model.Table{{Caption: "[x]"}, {}}, "")[0])
	assert.Equal(t, "Table", sheetNames([]model.Table{{Caption: "ignored"}}, "")[0])

	for _, n := range sheetNames([]model.Table{{Caption: strings.Repeat("long ", 10)}, {}}, "") {
		assert.LessOrEqual(t, len([]rune(n)), maxSheetName)
	}
}

func TestSheetNamesUseBaseName(t *testing.T) {
	assert.Equal(t, []string{"Q3 Report"}, sheetNames([]model.Table{{}}, "Q3 Report"))
	assert.Equal(t, []string{"Sales 1", "Sales 2 - North"},
		sheetNames([]model.Table{{}, {Caption: "North"}}, "Sales"))
	assert.Equal(t, []string{"a_b"}, sheetNames([]model.Table{{}}, "a/b"))
	assert.Equal(t, []string{"Table"}, sheetNames([]model.Table{{}}, "  "))
}

func TestColumnWidths(t *testing.T) {
	long := strings.Repeat("w", 80)
	tables := []model.Table{*model.NewTable("", [][]model.Cell{
		{{Value: "id"}, {Value: "fifteen chars!!"}, {Value: long}},
	})}

	r := roundTrip(t, tables, DefaultOptions())
	sheet, _ := r.Sheet(0)
	assert.Equal(t, []float64{12, 17, 50}, sheet.Widths)
}

func TestWriteSharesStrings(t *testing.T) {
	strs := newStringTable()
	assert.Equal(t, 0, strs.index("x"))
	assert.Equal(t, 1, strs.index(""))
	assert.Equal(t, 0, strs.index("x"))

	sst := strs.xml()
	assert.Equal(t, 3, sst.Count)
	assert.Equal(t, 2, sst.Unique)
}

func TestWriteNoTables(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, nil))
	assert.Zero(t, buf.Len())
}
