// Package xlsx writes extracted tables to XLSX (Office Open XML
// Spreadsheet) workbooks and reads workbooks back.
//
// Each table becomes one sheet. Header cells are bold with a light gray
// fill, and column widths follow the longest value in each column:
//
//	tables := htmldoc.ExtractTables(markup)
//	f, _ := os.Create("tables.xlsx")
//	defer f.Close()
//	if err := xlsx.Write(f, tables); err != nil {
//		log.Fatal(err)
//	}
//
// The [Reader] resolves cell values together with their bold flag and
// solid fill.
package xlsx
