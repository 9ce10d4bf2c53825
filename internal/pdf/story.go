package pdf

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	documentTitle  = "AI LEGAL COMPANION"
	stampHeading   = "STAMP DUTY REQUIREMENT"
	stampNote      = "This amount is based on the document type and state regulations."
	signatureRule  = "__________________________________________________"
	generatedDate  = "January 02, 2006"
	filenameLayout = "20060102-150405"
)

type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindSpacer
	KindPageBreak
)

type Style string

const (
	StyleTitle    Style = "title"
	StyleHeader   Style = "header"
	StyleNormal   Style = "normal"
	StyleNumbered Style = "numbered"
)

// Block es un elemento del documento en orden de aparicion.
type Block struct {
	Kind   BlockKind
	Style  Style
	Text   string
	Height float64
}

func paragraph(style Style, text string) Block {
	return Block{Kind: KindParagraph, Style: style, Text: text}
}

func spacer(height float64) Block {
	return Block{Kind: KindSpacer, Height: height}
}

var (
	numberedLine = regexp.MustCompile(`^\d+\.`)
	headerLine   = regexp.MustCompile(`^[A-Z][A-Z\s]+:?$`)
	titleCaser   = cases.Title(language.English)
)

// BuildStory arma los bloques del PDF: encabezado, contenido linea por
// linea, seccion de sellado opcional y firmas.
func BuildStory(content, action, stampValue string, now time.Time) []Block {
	blocks := []Block{
		paragraph(StyleTitle, documentTitle),
		paragraph(StyleNormal, "Generated on "+now.Format(generatedDate)),
		spacer(20),
		paragraph(StyleHeader, ActionTitle(action)),
		spacer(20),
	}

	for _, line := range strings.Split(content, "\n") {
		blocks = append(blocks, classifyLine(line))
	}

	if stampValue != "" {
		blocks = append(blocks,
			spacer(20),
			paragraph(StyleHeader, stampHeading),
			paragraph(StyleNormal, "Required Stamp Paper Value: Rs. "+stampValue),
			paragraph(StyleNormal, stampNote),
			spacer(20),
		)
	}

	return append(blocks,
		spacer(40),
		paragraph(StyleNormal, signatureRule),
		paragraph(StyleNormal, "Signature"),
		spacer(20),
		paragraph(StyleNormal, signatureRule),
		paragraph(StyleNormal, "Date"),
	)
}

func classifyLine(line string) Block {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return spacer(12)
	case numberedLine.MatchString(trimmed):
		return paragraph(StyleNumbered, trimmed)
	case headerLine.MatchString(trimmed):
		return paragraph(StyleHeader, strings.ReplaceAll(trimmed, ":", ""))
	default:
		return paragraph(StyleNormal, trimmed)
	}
}

// ActionTitle convierte "check-document" en "Check Document".
func ActionTitle(action string) string {
	action = strings.TrimSpace(action)
	if action == "" {
		return "Document"
	}
	return titleCaser.String(strings.ReplaceAll(action, "-", " "))
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename devuelve "<action>-YYYYMMDD-HHMMSS.pdf" apto para Content-Disposition.
func Filename(action string, now time.Time) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(action), "-"), "-")
	if name == "" {
		name = "document"
	}
	return fmt.Sprintf("%s-%s.pdf", name, now.Format(filenameLayout))
}
