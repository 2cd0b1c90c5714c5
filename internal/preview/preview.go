// Package preview renders downloaded markdown pages to HTML.
package preview

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// Render converts markdown text to HTML. On a conversion failure the raw
// text is escaped and returned instead, so a preview is always produced.
func Render(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
