package model

import "strings"

// Category partitions blocks into those that may be cut by a page boundary
// and those that may not
type Category int

const (
	CategoryFlowable Category = iota
	CategoryAtomic
)

func (c Category) String() string {
	switch c {
	case CategoryAtomic:
		return "Atomic"
	default:
		return "Flowable"
	}
}

// atomicTags are the elements a page break should never cut through
var atomicTags = map[string]bool{
	"table":      true,
	"img":        true,
	"figure":     true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"blockquote": true,
	"pre":        true,
}

// CategoryForTag returns the category of an element name. Matching is
// case-insensitive; unknown and empty tags are flowable.
func CategoryForTag(tag string) Category {
	if atomicTags[strings.ToLower(strings.TrimSpace(tag))] {
		return CategoryAtomic
	}
	return CategoryFlowable
}

// AtomicTags returns the element names classified as atomic
func AtomicTags() []string {
	return []string{"table", "img", "figure", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre"}
}
