package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wonny/eventreport/internal/contracts"
)

// JSONRenderer renders the document as indented JSON
type JSONRenderer struct{}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// ContentType implements Renderer
func (r *JSONRenderer) ContentType() string { return "application/json" }

// Extension implements Renderer
func (r *JSONRenderer) Extension() string { return ".json" }

// Render implements Renderer.
// 지표는 PDF/텍스트와 같은 표시 단위 (alpha, volatility, tracking error ×100)
func (r *JSONRenderer) Render(w io.Writer, doc *Document) error {
	out := *doc
	out.Metrics = make([]contracts.MetricRecord, len(doc.Metrics))
	for i, rec := range doc.Metrics {
		out.Metrics[i] = rec.Display()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
