package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/matthewbaird/commonapply/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// markdown renders paragraph content. Raw HTML in the source is dropped by
// goldmark's default renderer.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"markdown": renderMarkdown,
	"percent":  percent,
	"isSet":    types.IsSet,
	"display":  answerText,
}).ParseFS(templateFS, "templates/*.html"))

// HTML writes the preview as a standalone HTML page.
func HTML(w io.Writer, view PreviewView) error {
	return execute(w, "preview.html", view)
}

// CanvasHTML writes the design canvas as a standalone HTML page.
func CanvasHTML(w io.Writer, view CanvasView) error {
	return execute(w, "canvas.html", view)
}

func execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		log.Warn("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// percent converts a grid span to a CSS width percentage.
func percent(span int) string {
	return strconv.FormatFloat(float64(span)*100/GridColumns, 'f', -1, 64)
}
