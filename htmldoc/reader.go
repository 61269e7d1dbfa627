package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pageflow/model"
)

// Reader provides access to the content of a full HTML document: its title
// and metadata, its text in reading order, and its tables.
type Reader struct {
	doc      *html.Node
	title    string
	metadata map[string]string
	elements []parsedElement

	resolver StyleResolver
	fallback string
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader with default table options.
func OpenReader(r io.Reader) (*Reader, error) {
	return OpenReaderWithOptions(r, DefaultTableOptions())
}

// OpenReaderWithOptions parses HTML from an io.Reader. The options control
// how table cell colors are resolved.
func OpenReaderWithOptions(r io.Reader, opts TableOptions) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{
		doc:      doc,
		metadata: make(map[string]string),
		elements: make([]parsedElement, 0),
		resolver: opts.Resolver,
		fallback: opts.HeaderFallback,
	}
	if reader.resolver == nil {
		reader.resolver = newFragmentStyles(doc, opts.BaseStylesheet)
	}
	if reader.fallback == "" {
		reader.fallback = HeaderFallbackColor
	}

	reader.extractHead(doc)
	reader.extractBody(doc)

	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	return nil
}

// Title returns the document title
func (r *Reader) Title() string {
	return r.title
}

// Meta returns the content of a <meta> tag by name or property
func (r *Reader) Meta(name string) (string, bool) {
	v, ok := r.metadata[name]
	return v, ok
}

// Tables returns the tables of the document in document order
func (r *Reader) Tables() []model.Table {
	tables := make([]model.Table, 0)
	for _, elem := range r.elements {
		if elem.Type == ElementTable && elem.Table != nil {
			tables = append(tables, *elem.Table)
		}
	}
	return tables
}

// extractHead extracts title and meta tags from the head element.
func (r *Reader) extractHead(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Title:
				r.title = getTextContent(c)
			case atom.Meta:
				name := attr(c, "name")
				if name == "" {
					name = attr(c, "property")
				}
				if content := attr(c, "content"); name != "" && content != "" {
					r.metadata[name] = content
				}
			}
		}
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.extractHead(c)
	}
}

// extractBody extracts content from the body element.
func (r *Reader) extractBody(n *html.Node) {
	body := findElement(n, atom.Body)
	if body == nil {
		body = n
	}

	ctx := &parseContext{}
	r.traverseNode(body, ctx)
	r.flushList(ctx)
}

// parseContext tracks the current list while walking the tree
type parseContext struct {
	inList      bool
	listOrdered bool
	listLevel   int
	listItems   []listItem
}

// flushList emits the list being built, if any
func (r *Reader) flushList(ctx *parseContext) {
	if ctx.inList && len(ctx.listItems) > 0 {
		r.elements = append(r.elements, parsedElement{
			Type:    ElementList,
			Items:   ctx.listItems,
			Ordered: ctx.listOrdered,
		})
	}
	ctx.inList = false
	ctx.listItems = nil
}

// traverseNode recursively processes DOM nodes.
func (r *Reader) traverseNode(n *html.Node, ctx *parseContext) {
	if n.Type == html.ElementNode {
		if shouldSkipElement(n.DataAtom) {
			return
		}

		switch n.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			r.flushList(ctx)
			if text := getTextContent(n); text != "" {
				r.elements = append(r.elements, parsedElement{
					Type:  ElementHeading,
					Text:  text,
					Level: int(n.Data[1] - '0'),
				})
			}
			return

		case atom.P, atom.Div:
			if n.DataAtom == atom.P {
				r.flushList(ctx)
			}
			if text := getTextContent(n); text != "" && !isBlockContainer(n) {
				r.elements = append(r.elements, parsedElement{Type: ElementParagraph, Text: text})
				return
			}

		case atom.Ul, atom.Ol:
			r.traverseList(n, ctx)
			return

		case atom.Li:
			if !ctx.inList {
				break
			}
			if text := getDirectTextContent(n); text != "" {
				ctx.listItems = append(ctx.listItems, listItem{Text: text, Level: ctx.listLevel})
			}
			ctx.listLevel++
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
					r.traverseNode(c, ctx)
				}
			}
			ctx.listLevel--
			return

		case atom.Table:
			r.flushList(ctx)
			if table, ok := buildTable(n, r.doc, r.resolver, r.fallback); ok {
				r.elements = append(r.elements, parsedElement{Type: ElementTable, Table: &table})
			}
			return

		case atom.Pre, atom.Code:
			if text := cellText(n); text != "" {
				r.elements = append(r.elements, parsedElement{Type: ElementCode, Text: text})
			}
			return

		case atom.Blockquote:
			if text := getTextContent(n); text != "" {
				r.elements = append(r.elements, parsedElement{Type: ElementBlockquote, Text: text})
			}
			return

		case atom.Br, atom.Hr:
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.traverseNode(c, ctx)
	}
}

// traverseList collects a list, nesting levels for lists inside items
func (r *Reader) traverseList(n *html.Node, ctx *parseContext) {
	outer := !ctx.inList
	if outer {
		ctx.inList = true
		ctx.listOrdered = n.DataAtom == atom.Ol
		ctx.listItems = make([]listItem, 0)
		ctx.listLevel = 0
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.traverseNode(c, ctx)
	}

	if outer {
		r.flushList(ctx)
	}
}

// shouldSkipElement returns true if the element holds no readable content.
func shouldSkipElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Math,
		atom.Iframe, atom.Object, atom.Embed:
		return true
	}
	return false
}

// isBlockContainer returns true if the element has block-level children.
func isBlockContainer(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Div, atom.P, atom.Ul, atom.Ol, atom.Table, atom.H1, atom.H2, atom.H3,
			atom.H4, atom.H5, atom.H6, atom.Blockquote, atom.Pre, atom.Article, atom.Section:
			return true
		}
	}
	return false
}

// findElement finds the first element with the given tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, a); result != nil {
			return result
		}
	}
	return nil
}

// getTextContent extracts the text of a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.Join(strings.Fields(result.String()), " ")
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode && shouldSkipElement(n.DataAtom) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Br, atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4,
			atom.H5, atom.H6, atom.Tr, atom.Td, atom.Th:
			result.WriteString(" ")
		}
	}
}

// getDirectTextContent gets text content from a node, excluding nested block elements.
func getDirectTextContent(n *html.Node) string {
	var result strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			result.WriteString(c.Data)
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Ul, atom.Ol, atom.Div, atom.P, atom.Table, atom.Blockquote:
		default:
			result.WriteString(" " + getTextContent(c) + " ")
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

// Text returns the document text in reading order. Tables are rendered as
// tab-separated rows.
func (r *Reader) Text() string {
	parts := make([]string, 0, len(r.elements))

	for _, elem := range r.elements {
		switch elem.Type {
		case ElementList:
			var b strings.Builder
			for i, item := range elem.Items {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(strings.Repeat("  ", item.Level))
				b.WriteString("• ")
				b.WriteString(item.Text)
			}
			parts = append(parts, b.String())

		case ElementTable:
			parts = append(parts, elem.Table.ToTSV())

		default:
			parts = append(parts, elem.Text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// Markdown returns the document as Markdown.
func (r *Reader) Markdown() string {
	parts := make([]string, 0, len(r.elements))

	for _, elem := range r.elements {
		switch elem.Type {
		case ElementHeading:
			parts = append(parts, strings.Repeat("#", elem.Level)+" "+elem.Text)

		case ElementList:
			var b strings.Builder
			for i, item := range elem.Items {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(strings.Repeat("  ", item.Level))
				if elem.Ordered {
					b.WriteString("1. ")
				} else {
					b.WriteString("- ")
				}
				b.WriteString(item.Text)
			}
			parts = append(parts, b.String())

		case ElementTable:
			parts = append(parts, strings.TrimRight(elem.Table.ToMarkdown(), "\n"))

		case ElementCode:
			parts = append(parts, "```\n"+elem.Text+"\n```")

		case ElementBlockquote:
			lines := strings.Split(elem.Text, "\n")
			for i, line := range lines {
				lines[i] = "> " + line
			}
			parts = append(parts, strings.Join(lines, "\n"))

		default:
			parts = append(parts, elem.Text)
		}
	}

	return strings.Join(parts, "\n\n")
}
