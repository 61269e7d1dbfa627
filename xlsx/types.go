package xlsx

import "encoding/xml"

// nsRelationships is the namespace of workbook relationship types
const nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Relationship and content types of the parts a workbook is made of
const (
	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relStyles         = nsRelationships + "/styles"
	relSharedStrings  = nsRelationships + "/sharedStrings"

	ctRelationships = "application/vnd.openxmlformats-package.relationships+xml"
	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
)

// contentTypesXML represents [Content_Types].xml.
type contentTypesXML struct {
	XMLName   xml.Name      `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []defaultXML  `xml:"Default"`
	Overrides []overrideXML `xml:"Override"`
}

type defaultXML struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type overrideXML struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// workbookXML represents the xl/workbook.xml file structure.
type workbookXML struct {
	XMLName xml.Name  `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main workbook"`
	Sheets  sheetsXML `xml:"sheets"`
}

type sheetsXML struct {
	Sheet []sheetRefXML `xml:"sheet"`
}

type sheetRefXML struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// worksheetXML represents a xl/worksheets/sheet*.xml file structure.
type worksheetXML struct {
	XMLName    xml.Name       `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main worksheet"`
	Dimension  *dimensionXML  `xml:"dimension"`
	Cols       *colsXML       `xml:"cols"`
	SheetData  sheetDataXML   `xml:"sheetData"`
	MergeCells *mergeCellsXML `xml:"mergeCells"`
}

type dimensionXML struct {
	Ref string `xml:"ref,attr"` // e.g., "A1:D10"
}

type colsXML struct {
	Col []colXML `xml:"col"`
}

type colXML struct {
	Min         int     `xml:"min,attr"`
	Max         int     `xml:"max,attr"`
	Width       float64 `xml:"width,attr"`
	CustomWidth int     `xml:"customWidth,attr,omitempty"`
}

type sheetDataXML struct {
	Rows []rowXML `xml:"row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // Row number (1-indexed)
	Cells []cellXML `xml:"c"`
}

type cellXML struct {
	R  string        `xml:"r,attr"`           // Cell reference (e.g., "A1")
	T  string        `xml:"t,attr,omitempty"` // s=shared string, n=number, b=bool, str, inlineStr, e=error
	S  int           `xml:"s,attr,omitempty"` // Style index
	V  string        `xml:"v,omitempty"`
	Is *inlineStrXML `xml:"is"`
}

type inlineStrXML struct {
	T string `xml:"t"`
}

type mergeCellsXML struct {
	MergeCell []mergeCellXML `xml:"mergeCell"`
}

type mergeCellXML struct {
	Ref string `xml:"ref,attr"` // e.g., "A1:B2"
}

// sharedStringsXML represents the xl/sharedStrings.xml file structure.
type sharedStringsXML struct {
	XMLName xml.Name `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main sst"`
	Count   int      `xml:"count,attr"`
	Unique  int      `xml:"uniqueCount,attr"`
	SI      []siXML  `xml:"si"`
}

type siXML struct {
	T string `xml:"t"`  // Simple text
	R []rXML `xml:"r"` // Rich text runs
}

type rXML struct {
	T string `xml:"t"`
}

// stylesXML represents the xl/styles.xml file structure. Only fonts, fills
// and cell formats are modelled; borders are a single empty entry.
type stylesXML struct {
	XMLName      xml.Name    `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main styleSheet"`
	Fonts        fontsXML    `xml:"fonts"`
	Fills        fillsXML    `xml:"fills"`
	Borders      bordersXML  `xml:"borders"`
	CellStyleXfs cellXfsXML  `xml:"cellStyleXfs"`
	CellXfs      *cellXfsXML `xml:"cellXfs"`
}

type fontsXML struct {
	Count int       `xml:"count,attr"`
	Font  []fontXML `xml:"font"`
}

type fontXML struct {
	B    *struct{} `xml:"b"`
	Sz   valXML    `xml:"sz"`
	Name valXML    `xml:"name"`
}

type valXML struct {
	Val string `xml:"val,attr"`
}

type fillsXML struct {
	Count int       `xml:"count,attr"`
	Fill  []fillXML `xml:"fill"`
}

type fillXML struct {
	PatternFill patternFillXML `xml:"patternFill"`
}

type patternFillXML struct {
	PatternType string    `xml:"patternType,attr"`
	FgColor     *colorXML `xml:"fgColor"`
}

type colorXML struct {
	RGB string `xml:"rgb,attr"` // ARGB, e.g. "FFE9ECEF"
}

type bordersXML struct {
	Count  int         `xml:"count,attr"`
	Border []borderXML `xml:"border"`
}

type borderXML struct{}

type cellXfsXML struct {
	Count int     `xml:"count,attr"`
	Xf    []xfXML `xml:"xf"`
}

type xfXML struct {
	NumFmtID  int `xml:"numFmtId,attr"`
	FontID    int `xml:"fontId,attr"`
	FillID    int `xml:"fillId,attr"`
	BorderID  int `xml:"borderId,attr"`
	ApplyFont int `xml:"applyFont,attr,omitempty"`
	ApplyFill int `xml:"applyFill,attr,omitempty"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
