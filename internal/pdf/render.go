package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pageMargin     = 72.0
	lineSpacing    = 1.2
	coreFontFamily = "Helvetica"
	utf8FontFamily = "DocumentFont"
)

type styleSpec struct {
	fontStyle   string
	size        float64
	align       string
	indent      float64
	spaceBefore float64
	spaceAfter  float64
}

var styles = map[Style]styleSpec{
	StyleTitle:    {fontStyle: "B", size: 20, align: "C", spaceAfter: 30},
	StyleHeader:   {fontStyle: "B", size: 16, align: "C", spaceBefore: 20, spaceAfter: 20},
	StyleNormal:   {size: 12, align: "J", indent: 20, spaceAfter: 12},
	StyleNumbered: {fontStyle: "B", size: 12, align: "J", indent: 20, spaceAfter: 8},
}

// Renderer dibuja bloques en un A4 con margenes de 72pt.
type Renderer struct {
	fontPath string
}

// NewRenderer usa Helvetica salvo que fontPath apunte a una TTF, que se
// registra como fuente UTF-8 para texto fuera de latin-1.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{fontPath: fontPath}
}

func (r *Renderer) Render(blocks []Block) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)

	family := coreFontFamily
	translate := doc.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		doc.AddUTF8Font(utf8FontFamily, "", r.fontPath)
		doc.AddUTF8Font(utf8FontFamily, "B", r.fontPath)
		family = utf8FontFamily
		translate = func(s string) string { return s }
	}
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	doc.AddPage()
	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	for _, b := range blocks {
		switch b.Kind {
		case KindSpacer:
			doc.Ln(b.Height)
		case KindPageBreak:
			doc.AddPage()
		case KindParagraph:
			st, ok := styles[b.Style]
			if !ok {
				st = styles[StyleNormal]
			}
			if st.spaceBefore > 0 {
				doc.Ln(st.spaceBefore)
			}
			doc.SetFont(family, st.fontStyle, st.size)
			doc.SetX(pageMargin + st.indent)
			doc.MultiCell(contentWidth-st.indent, st.size*lineSpacing, translate(b.Text), "", st.align, false)
			doc.Ln(st.spaceAfter)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
