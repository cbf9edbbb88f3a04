package converter

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	courseSvc "coursehub/internal/domain/services/course"

	"github.com/PuerkitoBio/goquery"
)

// ErrEmptyDocument is returned when sanitized content has nothing printable
var ErrEmptyDocument = errors.New("document has no printable content")

const defaultDocumentTitle = "Lesson"

// pageTemplate is the printable A4 page handed to HTML-capable renderers.
// Margins are fixed by the renderer, so @page only pins the paper size.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  @page { size: A4; }
  html, body { margin: 0; padding: 0; }
  body {
    font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
    font-size: 12pt;
    line-height: 1.5;
    color: #1f2328;
  }
  h1, h2, h3, h4, h5, h6 { line-height: 1.25; margin: 1.2em 0 0.5em; page-break-after: avoid; }
  h1 { font-size: 22pt; }
  h2 { font-size: 17pt; }
  h3 { font-size: 14pt; }
  p, ul, ol, blockquote, pre, table { margin: 0 0 0.8em; }
  img { max-width: 100%; height: auto; page-break-inside: avoid; }
  blockquote { border-left: 3px solid #d0d7de; padding-left: 1em; color: #57606a; }
  pre, code { font-family: "SFMono-Regular", Menlo, Consolas, monospace; font-size: 10pt; }
  pre { background: #f6f8fa; padding: 0.8em; white-space: pre-wrap; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #d0d7de; padding: 4px 8px; text-align: left; }
  tr { page-break-inside: avoid; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// BuildDocument wraps sanitized HTML into a printable document.
// The title is the given one, else the first heading, else a generic label.
func BuildDocument(title, sanitizedBody string) (*courseSvc.PDFDocument, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizedBody))
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	body := dom.Find("body")
	if strings.TrimSpace(body.Text()) == "" && body.Find("img").Length() == 0 {
		return nil, ErrEmptyDocument
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(dom.Find("h1, h2, h3").First().Text())
	}
	if title == "" {
		title = defaultDocumentTitle
	}

	var page bytes.Buffer
	err = pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(sanitizedBody), // Already sanitized
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	return &courseSvc.PDFDocument{
		Title: title,
		Body:  sanitizedBody,
		Page:  page.String(),
	}, nil
}
