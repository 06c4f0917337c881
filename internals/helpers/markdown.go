package helper

import (
	"bytes"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var mdRenderer = goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()))

// RenderMarkdown converts markdown to HTML. Raw HTML in the source is dropped.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}
