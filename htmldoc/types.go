package htmldoc

import "github.com/tsawler/pageflow/model"

// parsedElement is a content element of a parsed document
type parsedElement struct {
	Type    ElementType
	Text    string
	Level   int        // For headings (1-6)
	Items   []listItem // For lists
	Ordered bool       // For lists
	Table   *model.Table
}

// ElementType represents the type of HTML element.
type ElementType int

const (
	ElementParagraph ElementType = iota
	ElementHeading
	ElementList
	ElementTable
	ElementCode
	ElementBlockquote
)

// String returns a lowercase name for the element type
func (t ElementType) String() string {
	switch t {
	case ElementParagraph:
		return "paragraph"
	case ElementHeading:
		return "heading"
	case ElementList:
		return "list"
	case ElementTable:
		return "table"
	case ElementCode:
		return "code"
	case ElementBlockquote:
		return "blockquote"
	default:
		return "unknown"
	}
}

// listItem represents an item in a list.
type listItem struct {
	Text  string
	Level int
}
