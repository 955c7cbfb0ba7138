package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// GoldmarkConverter converts markdown to html in process.
type GoldmarkConverter struct {
	engine goldmark.Markdown
}

var _ DocumentConverter = (*GoldmarkConverter)(nil)

// NewGoldmarkConverter creates a converter with GitHub flavored markdown
// extensions and auto heading ids.
func NewGoldmarkConverter() *GoldmarkConverter {
	return &GoldmarkConverter{
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (c *GoldmarkConverter) Supports(from, to string) bool {
	return isMarkdown(from) && to == "html"
}

func (c *GoldmarkConverter) Available() error {
	return nil
}

func (c *GoldmarkConverter) Convert(ctx context.Context, from, to, text string) (string, error) {
	if !c.Supports(from, to) {
		return "", fmt.Errorf("goldmark cannot convert %s to %s", from, to)
	}
	var buf bytes.Buffer
	if err := c.engine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("markdown parse: %w", err)
	}
	return buf.String(), nil
}

func isMarkdown(format string) bool {
	switch format {
	case "markdown", "md", "gfm", "commonmark":
		return true
	}
	return false
}
