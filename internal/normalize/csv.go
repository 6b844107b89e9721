package normalize

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// extractCSV renders CSV rows as "header: value" lines, one block per row,
// so the model sees labeled cells instead of bare commas.
func extractCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return &Result{}, nil
	}

	headers := records[0]
	blocks := []string{"Headers: " + strings.Join(headers, ", ")}

	for _, row := range records[1:] {
		var line strings.Builder
		for j, cell := range row {
			if j > 0 {
				line.WriteString(", ")
			}
			if j < len(headers) {
				line.WriteString(headers[j] + ": " + cell)
			} else {
				line.WriteString(cell)
			}
		}
		blocks = append(blocks, line.String())
	}

	return &Result{Text: joinBlocks(blocks)}, nil
}
