package htmldoc

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
	"golang.org/x/net/html"
)

// ComputedStyle is the subset of resolved style the extractor reads
type ComputedStyle struct {
	Background string `json:"backgroundColor"`
	Color      string `json:"color"`
	Width      string `json:"width"`
	Position   string `json:"position"`
}

// StyleResolver answers computed-style queries for element nodes. It stands
// in for a rendering engine; implementations must be safe to call
// repeatedly for the same node.
type StyleResolver interface {
	ComputedStyle(n *html.Node) ComputedStyle
}

// StyleResolverFunc adapts a function to StyleResolver
type StyleResolverFunc func(n *html.Node) ComputedStyle

// ComputedStyle calls f(n)
func (f StyleResolverFunc) ComputedStyle(n *html.Node) ComputedStyle {
	return f(n)
}

// Origins in increasing cascade precedence
const (
	originHint = iota // presentational attributes such as bgcolor
	originRule
	originInline
	originRuleImportant
	originInlineImportant
)

type declaration struct {
	property  string
	value     string
	important bool
}

type styleRule struct {
	selector cascadia.Sel
	order    int
	decls    []declaration
}

// cascadeKey orders competing declarations
type cascadeKey struct {
	origin      int
	specificity cascadia.Specificity
	order       int
}

func (k cascadeKey) less(other cascadeKey) bool {
	if k.origin != other.origin {
		return k.origin < other.origin
	}
	if k.specificity != other.specificity {
		return k.specificity.Less(other.specificity)
	}
	return k.order < other.order
}

// StyleTable is a materialised per-node style table built from stylesheets,
// presentational attributes and inline styles. Color inherits from the
// parent element; background, width and position do not.
//
// A StyleTable caches results and is not safe for concurrent use.
type StyleTable struct {
	rules []styleRule
	cache map[*html.Node]ComputedStyle
	order int
}

// NewStyleTable creates a style table from zero or more stylesheets, later
// sheets taking precedence on ties
func NewStyleTable(sheets ...string) *StyleTable {
	t := &StyleTable{
		rules: make([]styleRule, 0),
		cache: make(map[*html.Node]ComputedStyle),
	}
	for _, sheet := range sheets {
		t.AddStylesheet(sheet)
	}
	return t
}

// AddStylesheet appends the rules of a stylesheet. At-rules and rules
// whose selectors cascadia rejects are skipped; a stylesheet that fails to
// parse adds nothing.
func (t *StyleTable) AddStylesheet(sheet string) {
	parsed, err := parser.Parse(sheet)
	if err != nil {
		return
	}
	for _, rule := range parsed.Rules {
		if rule.Kind != css.QualifiedRule {
			continue
		}
		group, err := cascadia.ParseGroup(strings.TrimSpace(rule.Prelude))
		if err != nil {
			continue
		}
		decls := resolvedDeclarations(rule.Declarations)
		if len(decls) == 0 {
			continue
		}
		for _, sel := range group {
			t.rules = append(t.rules, styleRule{selector: sel, order: t.order, decls: decls})
			t.order++
		}
	}
	// New rules invalidate anything computed so far
	t.cache = make(map[*html.Node]ComputedStyle)
}

// ComputedStyle resolves the style of an element node
func (t *StyleTable) ComputedStyle(n *html.Node) ComputedStyle {
	if n == nil || n.Type != html.ElementNode {
		return ComputedStyle{Background: Transparent, Color: DefaultTextColor, Width: "auto", Position: "static"}
	}
	if cs, ok := t.cache[n]; ok {
		return cs
	}

	parentColor := DefaultTextColor
	parentBackground := Transparent
	if p := n.Parent; p != nil && p.Type == html.ElementNode {
		parent := t.ComputedStyle(p)
		parentColor = parent.Color
		parentBackground = parent.Background
	}

	declared := t.cascade(n)

	cs := ComputedStyle{
		Color:    parentColor,
		Width:    "auto",
		Position: "static",
	}
	if v, ok := declared["color"]; ok && v != "inherit" {
		if c, ok := NormalizeColor(v); ok {
			cs.Color = c
		}
	}

	cs.Background = Transparent
	if v, ok := declared["background-color"]; ok {
		switch v {
		case "inherit":
			cs.Background = parentBackground
		case "currentcolor":
			cs.Background = cs.Color
		default:
			if c, ok := NormalizeColor(v); ok {
				cs.Background = c
			}
		}
	}
	if v, ok := declared["width"]; ok {
		cs.Width = v
	}
	if v, ok := declared["position"]; ok {
		cs.Position = v
	}

	t.cache[n] = cs
	return cs
}

// cascade returns the winning declared value per property
func (t *StyleTable) cascade(n *html.Node) map[string]string {
	values := make(map[string]string)
	keys := make(map[string]cascadeKey)

	apply := func(d declaration, key cascadeKey) {
		if cur, ok := keys[d.property]; ok && key.less(cur) {
			return
		}
		keys[d.property] = key
		values[d.property] = d.value
	}

	if v := attr(n, "bgcolor"); v != "" {
		apply(declaration{property: "background-color", value: v}, cascadeKey{origin: originHint})
	}
	if v := attr(n, "width"); v != "" {
		if !strings.ContainsAny(v, "%") {
			v += "px"
		}
		apply(declaration{property: "width", value: v}, cascadeKey{origin: originHint})
	}

	for _, rule := range t.rules {
		if !rule.selector.Match(n) {
			continue
		}
		for _, d := range rule.decls {
			origin := originRule
			if d.important {
				origin = originRuleImportant
			}
			apply(d, cascadeKey{origin: origin, specificity: rule.selector.Specificity(), order: rule.order})
		}
	}

	if style := attr(n, "style"); style != "" {
		inline, err := parser.ParseDeclarations(style)
		if err == nil {
			for i, d := range resolvedDeclarations(inline) {
				origin := originInline
				if d.important {
					origin = originInlineImportant
				}
				apply(d, cascadeKey{origin: origin, order: i})
			}
		}
	}

	return values
}

// resolvedDeclarations keeps the properties the extractor resolves, with
// the background shorthand reduced to its color
func resolvedDeclarations(parsed []*css.Declaration) []declaration {
	decls := make([]declaration, 0, len(parsed))
	for _, d := range parsed {
		property := strings.ToLower(strings.TrimSpace(d.Property))
		value := strings.ToLower(strings.TrimSpace(d.Value))
		important := d.Important
		if v, ok := strings.CutSuffix(value, "!important"); ok {
			value, important = strings.TrimSpace(v), true
		}
		if property == "" || value == "" {
			continue
		}

		switch property {
		case "background":
			if c := backgroundColorOf(value); c != "" {
				decls = append(decls, declaration{property: "background-color", value: c, important: important})
			}
		case "background-color", "color", "width", "position":
			decls = append(decls, declaration{property: property, value: value, important: important})
		}
	}
	return decls
}

// backgroundColorOf picks the color layer out of a background shorthand
func backgroundColorOf(value string) string {
	if value == "none" {
		return "transparent"
	}
	s := scanner.New(value)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return ""
		case scanner.TokenIdent, scanner.TokenHash:
			if _, ok := NormalizeColor(tok.Value); ok {
				return tok.Value
			}
		case scanner.TokenFunction:
			fn := functionText(s, tok.Value)
			if _, ok := NormalizeColor(fn); ok {
				return fn
			}
		}
	}
}

// functionText reads a function's arguments up to the matching ')'
func functionText(s *scanner.Scanner, name string) string {
	var b strings.Builder
	b.WriteString(name)
	for depth := 1; depth > 0; {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return b.String()
		case scanner.TokenFunction:
			depth++
		case scanner.TokenChar:
			if tok.Value == ")" {
				depth--
			}
		}
		b.WriteString(tok.Value)
	}
	return b.String()
}

// attr returns the value of an attribute, or ""
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
