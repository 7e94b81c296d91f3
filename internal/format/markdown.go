package format

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Typographer))
	policy   = bluemonday.UGCPolicy()
)

// Markdown renders a short markdown snippet to sanitized HTML.
// Rendering failures yield an empty fragment.
func Markdown(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}
