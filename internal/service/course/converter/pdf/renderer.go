package pdf

import (
	"fmt"
	"log/slog"

	courseSvc "coursehub/internal/domain/services/course"
)

// Renderer names accepted by New
const (
	RendererFPDF   = "fpdf"
	RendererChrome = "chrome"
)

// New returns the renderer registered under name
func New(name string, chrome ChromeOptions, logger *slog.Logger) (courseSvc.PDFRenderer, error) {
	switch name {
	case "", RendererFPDF:
		return NewFPDFRenderer(), nil
	case RendererChrome:
		return NewChromeRenderer(chrome, logger), nil
	default:
		return nil, fmt.Errorf("unknown pdf renderer %q (want %s or %s)", name, RendererFPDF, RendererChrome)
	}
}
