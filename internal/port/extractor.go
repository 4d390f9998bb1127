package port

import "context"

// AnalyzeInput carries one page's bytes to the extraction capability.
type AnalyzeInput struct {
	PageBytes   []byte
	ContentType string
}

// ExtractedField is a single labeled field returned by the extraction
// capability. Absence of a name in AnalyzeOutput.Fields means the field was
// not present on the page; downstream code must check membership rather than
// assume zero values.
type ExtractedField struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeOutput contains the raw labeled fields from one page analysis.
// Field semantics are not interpreted here; the assembler owns mapping.
type AnalyzeOutput struct {
	Fields               map[string]ExtractedField
	ModelID              string
	ModelVersion         string
	ProcessingDurationMs int64
}

// PageAnalyzer abstracts the external OCR/LLM extraction capability:
// page bytes in, labeled fields with per-field confidence out.
type PageAnalyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}

// PageSplitter splits a PDF byte buffer into ordered single-page buffers.
type PageSplitter interface {
	// Validate reports a structural error if data is not a parsable PDF.
	Validate(data []byte) error
	// Split returns one buffer per page, preserving page order. Index i
	// holds page i+1.
	Split(data []byte) ([][]byte, error)
}
