package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"bookingflow/internal/domain"
)

var pdfSignature = []byte("%PDF-")

// Splitter segments a PDF byte buffer into single-page PDF buffers using
// pdfcpu. It performs no I/O beyond the buffers it is given.
type Splitter struct {
	conf *model.Configuration
}

// NewSplitter creates a Splitter with relaxed validation, which tolerates the
// slightly out-of-spec output common to scanner and print-to-PDF toolchains.
func NewSplitter() *Splitter {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Splitter{conf: conf}
}

// Validate reports a structural error if data is not a parsable PDF.
// Signature and structural failures are distinct so callers can answer 400
// for non-PDF bytes without paying for a full parse.
func (s *Splitter) Validate(data []byte) error {
	if len(data) == 0 {
		return domain.ErrEmptyFile
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return domain.ErrNotPDF
	}
	if err := api.Validate(bytes.NewReader(data), s.conf); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}
	return nil
}

// Split returns one single-page PDF buffer per page of data, in original page
// order. A corrupt input yields an error wrapping domain.ErrInvalidPDF, never
// a silent empty result.
func (s *Splitter) Split(data []byte) ([][]byte, error) {
	if err := s.Validate(data); err != nil {
		return nil, err
	}

	rs := bytes.NewReader(data)
	count, err := api.PageCount(rs, s.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: counting pages: %v", domain.ErrInvalidPDF, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrInvalidPDF)
	}

	pages := make([][]byte, 0, count)
	for i := 1; i <= count; i++ {
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seeking source buffer: %w", err)
		}
		var buf bytes.Buffer
		if err := api.Trim(rs, &buf, []string{strconv.Itoa(i)}, s.conf); err != nil {
			return nil, fmt.Errorf("%w: extracting page %d: %v", domain.ErrInvalidPDF, i, err)
		}
		pages = append(pages, buf.Bytes())
	}
	return pages, nil
}
