package htmldoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/pageflow/model"
)

const (
	// ElementIDAttr carries the block id of a reflowable element
	ElementIDAttr = "data-element-id"

	// PinnedAttr marks an element whose spacing above must be kept
	PinnedAttr = "data-keep-spacing"
)

// selectableTags are the elements that become blocks when annotating
var selectableTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P: true, atom.Table: true, atom.Ul: true, atom.Ol: true, atom.Blockquote: true,
	atom.Pre: true, atom.Img: true, atom.Figure: true, atom.Section: true, atom.Article: true,
	atom.Aside: true, atom.Nav: true, atom.Header: true, atom.Footer: true, atom.Main: true,
	atom.Div: true,
}

// Geometry is the measured vertical extent of an element
type Geometry struct {
	Top          float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
}

// Measurer reports the geometry of an element from a laid-out document.
// ok is false when the element is not rendered.
type Measurer interface {
	Measure(id string, n *html.Node) (g Geometry, ok bool)
}

// MeasurerFunc adapts a function to Measurer
type MeasurerFunc func(id string, n *html.Node) (Geometry, bool)

// Measure calls f(id, n)
func (f MeasurerFunc) Measure(id string, n *html.Node) (Geometry, bool) {
	return f(id, n)
}

// AnnotateBlocks assigns sequential element ids ("element-0", ...) to the
// outermost selectable elements of a fragment and returns the annotated
// markup with the ids in document order. Elements without text are skipped
// unless they are images or tables; a div qualifies only if it has direct
// text or a child that is not a div.
func AnnotateBlocks(fragment string) (string, []string, error) {
	root, err := parseFragment(strings.NewReader(fragment))
	if err != nil {
		return "", nil, err
	}

	ids := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if selectable(c) {
				id := fmt.Sprintf("element-%d", len(ids))
				setAttr(c, ElementIDAttr, id)
				ids = append(ids, id)
				continue
			}
			walk(c)
		}
	}
	walk(root)

	out, err := renderChildren(root)
	if err != nil {
		return "", nil, err
	}
	return out, ids, nil
}

func selectable(n *html.Node) bool {
	if !selectableTags[n.DataAtom] {
		return false
	}
	if n.DataAtom == atom.Img || n.DataAtom == atom.Table {
		return true
	}
	if strings.TrimSpace(cellText(n)) == "" {
		return false
	}
	if n.DataAtom != atom.Div {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
		if c.Type == html.ElementNode && c.DataAtom != atom.Div {
			return true
		}
	}
	return false
}

// BlocksFromHTML returns one block per element carrying an element id, in
// document order, with geometry from m. Elements nested inside another
// identified element move with it and are not returned. Elements the
// measurer cannot place are skipped.
func BlocksFromHTML(r io.Reader, m Measurer) ([]model.Block, error) {
	root, err := parseFragment(r)
	if err != nil {
		return nil, err
	}

	blocks := make([]model.Block, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			id := attr(c, ElementIDAttr)
			if id == "" {
				walk(c)
				continue
			}
			g, ok := m.Measure(id, c)
			if !ok {
				continue
			}
			_, pinned := attrLookup(c, PinnedAttr)
			blocks = append(blocks, model.Block{
				ID:           id,
				Tag:          c.Data,
				Top:          g.Top,
				Height:       g.Height,
				MarginTop:    g.MarginTop,
				MarginBottom: g.MarginBottom,
				Pinned:       pinned,
			})
		}
	}
	walk(root)
	return blocks, nil
}

// ApplyMargins writes top margins, keyed by element id, into the inline
// style of the matching elements and returns the updated markup. Unknown ids
// are ignored.
func ApplyMargins(fragment string, margins map[string]float64) (string, error) {
	root, err := parseFragment(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if mt, ok := margins[attr(n, ElementIDAttr)]; ok {
				setAttr(n, "style", withMarginTop(attr(n, "style"), mt))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return renderChildren(root)
}

// StripAnnotations removes element ids and pinning markers from a fragment
func StripAnnotations(fragment string) (string, error) {
	root, err := parseFragment(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if a.Key != ElementIDAttr && a.Key != PinnedAttr {
					kept = append(kept, a)
				}
			}
			n.Attr = kept
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return renderChildren(root)
}

// withMarginTop replaces any margin-top declaration of an inline style
func withMarginTop(style string, marginTop float64) string {
	parts := make([]string, 0)
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		if colon := strings.IndexByte(decl, ':'); colon >= 0 &&
			strings.EqualFold(strings.TrimSpace(decl[:colon]), "margin-top") {
			continue
		}
		parts = append(parts, decl)
	}
	value := strconv.FormatFloat(marginTop, 'f', -1, 64)
	parts = append(parts, "margin-top: "+value+"px")
	return strings.Join(parts, "; ")
}

func renderChildren(root *html.Node) (string, error) {
	var b strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", errors.Wrap(err, "rendering HTML")
		}
	}
	return b.String(), nil
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func attrLookup(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
