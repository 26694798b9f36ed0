// Package markdown renders the inline Markdown allowed in About Us points.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dalemusser/aboutadmin/internal/app/system/htmlsanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML passthrough stays disabled (no html.WithUnsafe), and the output is
// sanitized again before it is trusted.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
)

// Inline renders src as Markdown and strips the paragraph wrapper when the
// result is a single paragraph, so a point can sit inside an <li>.
func Inline(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var b bytes.Buffer
	if err := renderer.Convert([]byte(src), &b); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}

	out := strings.TrimSpace(b.String())
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return htmlsanitize.SanitizeToHTML(out)
}
