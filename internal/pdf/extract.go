package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

var ErrNoText = errors.New("pdf has no extractable text")

// Extractor lee el texto plano de cada pagina de un PDF subido.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText concatena el texto de todas las paginas separadas por salto
// de linea. El parser entra en panic con algunos archivos corruptos; se
// reporta como error.
func (e *Extractor) ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", ErrNoText
	}
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", rec)
		}
	}()

	reader, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrNoText
	}
	return sb.String(), nil
}
