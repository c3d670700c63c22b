// Package markdown renders post bodies to sanitized HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

// Render converts GitHub flavoured Markdown to HTML and strips anything a user
// could use to inject script. Conversion errors degrade to escaped plain text.
func Render(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// Excerpt returns at most n runes of src with a trailing ellipsis when cut.
func Excerpt(src string, n int) string {
	r := []rune(src)
	if len(r) <= n {
		return src
	}
	return string(r[:n]) + "..."
}
