package htmldoc

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/tsawler/pageflow/model"
)

// markdownRenderer renders GitHub-style pipe tables and passes raw HTML
// through, so tables written either way are found
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// RenderMarkdown converts Markdown source to an HTML fragment
func RenderMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert(src, &buf); err != nil {
		return "", errors.Wrap(err, "rendering markdown")
	}
	return buf.String(), nil
}

// ExtractMarkdownTables renders Markdown and extracts the resulting tables
func ExtractMarkdownTables(src []byte, opts TableOptions) ([]model.Table, error) {
	fragment, err := RenderMarkdown(src)
	if err != nil {
		return nil, err
	}
	root, err := parseFragment(bytes.NewReader([]byte(fragment)))
	if err != nil {
		return nil, err
	}
	return extractTables(root, opts), nil
}
