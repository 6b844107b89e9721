package normalize

import (
	"bytes"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// extractPDF is the local-extraction path used when native ingestion is
// disabled. Pages are visited in order; pages without a readable text
// stream are skipped, but a document yielding no text at all fails.
func extractPDF(data []byte) (*Result, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var blocks []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(text); t != "" {
			blocks = append(blocks, t)
		}
	}

	if len(blocks) == 0 {
		return nil, fmt.Errorf("pdf contains no extractable text (%d pages)", numPages)
	}

	return &Result{Text: joinBlocks(blocks)}, nil
}
