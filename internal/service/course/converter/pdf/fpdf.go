package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	courseSvc "coursehub/internal/domain/services/course"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres (A4 portrait)
const (
	marginMM     = 20.0
	bodyFontSize = 11.0
	bodyLineMM   = 6.0
	codeFontSize = 9.0
	codeLineMM   = 4.5
	indentMM     = 6.0
	cellFontSize = 10.0
	cellLineMM   = 5.0
	cellPadMM    = 1.5
)

var headingSizes = map[int]float64{1: 20, 2: 16, 3: 14}

// FPDFRenderer lays out sanitized HTML as an A4 PDF without any external
// process. The body is first flattened to block markdown; inline styling is
// dropped but structure (headings, lists, quotes, code, tables) is kept.
// Text is drawn with the embedded Go fonts; a document with characters they
// cannot draw fails with ErrUnsupportedText instead of printing boxes.
//
// Safe for concurrent use: every call builds its own document.
type FPDFRenderer struct {
	markdown *md.Converter
}

// NewFPDFRenderer creates the pure-Go renderer
func NewFPDFRenderer() *FPDFRenderer {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
		EmDelimiter:      "*",
		StrongDelimiter:  "**",
	})
	conv.Use(plugin.Table(), plugin.Strikethrough(""))
	return &FPDFRenderer{markdown: conv}
}

// Name returns the renderer name for logging
func (r *FPDFRenderer) Name() string { return "fpdf" }

// Close is a no-op; the renderer holds no resources
func (r *FPDFRenderer) Close() error { return nil }

// RenderPDF renders doc.Body to PDF bytes
func (r *FPDFRenderer) RenderPDF(ctx context.Context, doc *courseSvc.PDFDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markdown, err := r.markdown.ConvertString(doc.Body)
	if err != nil {
		return nil, fmt.Errorf("flatten html: %w", err)
	}
	blocks := parseBlocks(markdown)
	if err := checkCoverage(blocks); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	registerFonts(pdf)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("coursehub", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-marginMM + 5)
		pdf.SetFont(fontText, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	left, _, right, _ := pdf.GetMargins()
	pageW, _ := pdf.GetPageSize()

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pdf.SetTextColor(31, 35, 40)
		pdf.SetX(left)

		switch b.kind {
		case blockHeading:
			size, ok := headingSizes[b.level]
			if !ok {
				size = 12
			}
			pdf.Ln(2)
			pdf.SetFont(fontText, "B", size)
			pdf.MultiCell(0, size*0.5, b.text, "", "L", false)
			pdf.Ln(2)

		case blockBullet, blockOrdered:
			marker := "•"
			if b.kind == blockOrdered {
				marker = b.marker
			}
			pdf.SetFont(fontText, "", bodyFontSize)
			pdf.SetX(left + float64(b.level)*indentMM)
			pdf.CellFormat(indentMM, bodyLineMM, marker, "", 0, "L", false, 0, "")
			pdf.MultiCell(0, bodyLineMM, b.text, "", "L", false)
			pdf.Ln(1)

		case blockQuote:
			pdf.SetFont(fontText, "I", bodyFontSize)
			pdf.SetTextColor(87, 96, 106)
			pdf.SetX(left + indentMM/2)
			pdf.MultiCell(0, bodyLineMM, b.text, "L", "L", false)
			pdf.Ln(3)

		case blockCode:
			pdf.SetFont(fontMono, "", codeFontSize)
			pdf.SetFillColor(246, 248, 250)
			pdf.MultiCell(0, codeLineMM, strings.TrimRight(b.text, "\n"), "", "L", true)
			pdf.Ln(3)

		case blockTable:
			drawTable(pdf, b.rows, pageW-left-right)
			pdf.Ln(3)

		case blockRule:
			y := pdf.GetY() + 2
			pdf.SetDrawColor(208, 215, 222)
			pdf.Line(left, y, pageW-right, y)
			pdf.Ln(6)

		default:
			pdf.SetFont(fontText, "", bodyFontSize)
			pdf.MultiCell(0, bodyLineMM, b.text, "", "L", false)
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawTable lays rows out as a bordered grid of equal-width columns. Cells
// wrap, each row is as tall as its tallest cell, and a row that does not fit
// moves to the next page. The first row is drawn as the header.
func drawTable(pdf *fpdf.Fpdf, rows [][]string, width float64) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return
	}

	colW := width / float64(cols)
	left, _, _, bottom := pdf.GetMargins()
	_, pageH := pdf.GetPageSize()

	pdf.SetDrawColor(208, 215, 222)
	pdf.SetFillColor(246, 248, 250)

	for ri, row := range rows {
		style := ""
		if ri == 0 {
			style = "B"
		}
		pdf.SetFont(fontText, style, cellFontSize)

		lines := make([][]string, cols)
		height := 1
		for ci := 0; ci < cols; ci++ {
			cell := ""
			if ci < len(row) {
				cell = row[ci]
			}
			lines[ci] = pdf.SplitText(cell, colW-2*cellPadMM)
			height = max(height, len(lines[ci]))
		}
		rowH := float64(height)*cellLineMM + 2*cellPadMM

		if pdf.GetY()+rowH > pageH-bottom {
			pdf.AddPage()
			pdf.SetFont(fontText, style, cellFontSize)
		}

		y := pdf.GetY()
		for ci := 0; ci < cols; ci++ {
			x := left + float64(ci)*colW
			fill := "D"
			if ri == 0 {
				fill = "FD"
			}
			pdf.Rect(x, y, colW, rowH, fill)
			for li, line := range lines[ci] {
				pdf.SetXY(x+cellPadMM, y+cellPadMM+float64(li)*cellLineMM)
				pdf.CellFormat(colW-2*cellPadMM, cellLineMM, line, "", 0, "L", false, 0, "")
			}
		}
		pdf.SetXY(left, y+rowH)
	}
}
