package markdown

import (
	"bytes"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts a bookmark description to HTML.
type Renderer interface {
	Render(text string) string
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a GitHub flavoured renderer. Raw HTML in the input is not passed through.
func NewRenderer() Renderer {
	return &goldmarkRenderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

func (r *goldmarkRenderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}
