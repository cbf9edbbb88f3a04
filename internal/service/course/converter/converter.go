package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	courseModels "coursehub/internal/domain/models/course"
	courseSvc "coursehub/internal/domain/services/course"
	"coursehub/internal/service/course/converter/sanitizer"
)

const pdfMimeType = "application/pdf"

// DefaultRenderTimeout bounds a single item's render and store
const DefaultRenderTimeout = 30 * time.Second

// NeedsConversion reports whether an item holds rich text that should become a PDF.
//
// An explicit ContentKind decides on its own. Untagged items fall back to
// sniffing: content authored in the rich-text editor ("write"), or untyped
// content containing a '<'. Plain text that happens to contain '<' (e.g.
// "a < b") is therefore converted too; callers that care should tag items.
func NeedsConversion(item *courseModels.ContentItem) bool {
	switch item.ContentKind {
	case courseModels.ContentKindRichText:
		return item.ContentValue() != ""
	case courseModels.ContentKindURL, courseModels.ContentKindPlainText:
		return false
	}

	content := item.ContentValue()
	if content == "" {
		return false
	}
	return item.ContentType == courseModels.AuthoringWrite ||
		(item.ContentType == "" && strings.Contains(content, "<"))
}

// Converter materializes rich-text content items as stored PDF files.
// Implements courseSvc.ChapterConverter.
type Converter struct {
	renderer  courseSvc.PDFRenderer
	uploads   courseSvc.UploadService
	sanitizer *sanitizer.HTMLSanitizer
	timeout   time.Duration
	logger    *slog.Logger
}

// NewConverter creates a converter. A non-positive timeout uses DefaultRenderTimeout.
func NewConverter(
	renderer courseSvc.PDFRenderer,
	uploads courseSvc.UploadService,
	timeout time.Duration,
	logger *slog.Logger,
) *Converter {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &Converter{
		renderer:  renderer,
		uploads:   uploads,
		sanitizer: sanitizer.NewHTMLSanitizer(),
		timeout:   timeout,
		logger:    logger,
	}
}

// ConvertChapters returns a copy of chapters with every rich-text item replaced
// by a reference to its generated PDF. Items are handled one at a time in list
// order. A failed item is left as it was; failures never abort the pass.
func (c *Converter) ConvertChapters(ctx context.Context, owner courseModels.FileOwner, chapters []courseModels.Chapter) ([]courseModels.Chapter, courseSvc.ConversionReport) {
	var report courseSvc.ConversionReport

	out := make([]courseModels.Chapter, len(chapters))
	for ci, ch := range chapters {
		items := make([]courseModels.ContentItem, len(ch.Videos))
		copy(items, ch.Videos)

		for ii := range items {
			if !NeedsConversion(&items[ii]) {
				continue
			}
			report.Candidates++

			converted, err := c.convertItem(ctx, owner, &items[ii])
			if err != nil {
				report.Failed++
				c.logger.Warn("content conversion failed",
					"chapter", ci,
					"item", ii,
					"title", items[ii].Title,
					"renderer", c.renderer.Name(),
					"error", err,
				)
				continue
			}

			items[ii] = converted
			report.Converted++
		}

		ch.Videos = items
		out[ci] = ch
	}

	return out, report
}

func (c *Converter) convertItem(ctx context.Context, owner courseModels.FileOwner, item *courseModels.ContentItem) (courseModels.ContentItem, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	source := item.ContentValue()

	doc, err := BuildDocument(item.Title, c.sanitizer.Sanitize(source))
	if err != nil {
		return courseModels.ContentItem{}, err
	}

	pdf, err := c.renderer.RenderPDF(ctx, doc)
	if err != nil {
		return courseModels.ContentItem{}, fmt.Errorf("render pdf: %w", err)
	}

	stored, err := c.uploads.Store(ctx, courseModels.UploadKindPDF, &courseSvc.UploadInput{
		OriginalName: fileBaseName(doc.Title) + ".pdf",
		MimeType:     pdfMimeType,
		Body:         bytes.NewReader(pdf),
		Owner:        owner,
	})
	if err != nil {
		return courseModels.ContentItem{}, fmt.Errorf("store pdf: %w", err)
	}

	converted := *item
	converted.Content = &stored.URL
	converted.ContentType = courseModels.AuthoringPDF
	converted.Type = courseModels.ItemTypePDF
	converted.GeneratedPDF = true
	converted.OriginalContent = source
	// The tag described the source; the stored content is now a locator
	if converted.ContentKind != "" {
		converted.ContentKind = courseModels.ContentKindURL
	}

	c.logger.Debug("content converted",
		"title", item.Title,
		"url", stored.URL,
		"bytes", stored.Size,
	)

	return converted, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// fileBaseName turns a title into a short filesystem-friendly stem
func fileBaseName(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		return "document"
	}
	return s
}
