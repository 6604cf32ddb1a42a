package report

import (
	"fmt"
	"io"
	"strings"
)

// Format names accepted by NewRenderer
const (
	FormatPDF  = "pdf"
	FormatText = "text"
	FormatJSON = "json"
)

// Renderer writes a Document in one output format
// ⭐ SSOT: 보고서 출력 인터페이스
type Renderer interface {
	Render(w io.Writer, doc *Document) error
	ContentType() string
	Extension() string
}

// NewRenderer returns the renderer for format (pdf | text | json)
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPDF:
		return NewPDFRenderer(), nil
	case FormatText, "txt":
		return NewTextRenderer(), nil
	case FormatJSON:
		return NewJSONRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (expected pdf, text or json)", format)
	}
}
