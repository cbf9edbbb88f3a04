package course

import (
	"context"

	courseModels "coursehub/internal/domain/models/course"
)

// ConversionReport summarizes one pass of the content converter
type ConversionReport struct {
	Candidates int `json:"candidates"`
	Converted  int `json:"converted"`
	Failed     int `json:"failed"`
}

// ChapterConverter materializes authored rich text as PDF artifacts.
//
// Failures are per item: a failed item keeps its original content and the
// caller's save proceeds. Implementations must process items strictly in list
// order and must be a no-op over already converted items. Generated files are
// stored under owner.
type ChapterConverter interface {
	ConvertChapters(ctx context.Context, owner courseModels.FileOwner, chapters []courseModels.Chapter) ([]courseModels.Chapter, ConversionReport)
}

// PDFDocument is the renderer input: sanitized body plus a printable page
type PDFDocument struct {
	Title string
	Body  string // Sanitized HTML fragment
	Page  string // Complete HTML page with print styles
}

// PDFRenderer turns a document into PDF bytes.
// Implementations must be safe for concurrent use.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, doc *PDFDocument) ([]byte, error)

	// Name returns the renderer name for logging
	Name() string

	// Close releases any process or resources held by the renderer
	Close() error
}
