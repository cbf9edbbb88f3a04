package pdf

import (
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Font families registered on every document
const (
	fontText = "go"
	fontMono = "gomono"
)

// ErrUnsupportedText is returned when a document uses characters the
// embedded fonts cannot draw. Rendering it would print empty boxes.
var ErrUnsupportedText = errors.New("text not supported by pdf fonts")

// glyphFonts are the parsed faces used to check coverage before layout
type glyphFonts struct {
	text *sfnt.Font
	mono *sfnt.Font
}

var loadGlyphFonts = sync.OnceValues(func() (*glyphFonts, error) {
	text, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse text font: %w", err)
	}
	mono, err := sfnt.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}
	return &glyphFonts{text: text, mono: mono}, nil
})

// registerFonts embeds the Go fonts as UTF-8 fonts in pdf
func registerFonts(pdf *fpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(fontText, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(fontText, "B", gobold.TTF)
	pdf.AddUTF8FontFromBytes(fontText, "I", goitalic.TTF)
	pdf.AddUTF8FontFromBytes(fontMono, "", gomono.TTF)
}

// checkCoverage fails on the first characters of blocks the fonts have no glyph for
func checkCoverage(blocks []block) error {
	fonts, err := loadGlyphFonts()
	if err != nil {
		return err
	}

	var buf sfnt.Buffer
	var missing []rune
	check := func(f *sfnt.Font, s string) {
		for _, r := range s {
			if len(missing) >= 8 {
				return
			}
			if unicode.IsSpace(r) || unicode.IsControl(r) {
				continue
			}
			if idx, err := f.GlyphIndex(&buf, r); err != nil || idx == 0 {
				missing = append(missing, r)
			}
		}
	}

	for _, b := range blocks {
		switch b.kind {
		case blockCode:
			check(fonts.mono, b.text)
		case blockTable:
			for _, row := range b.rows {
				for _, cell := range row {
					check(fonts.text, cell)
				}
			}
		default:
			check(fonts.text, b.marker)
			check(fonts.text, b.text)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %q", ErrUnsupportedText, string(missing))
	}
	return nil
}
