package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders each worksheet as a labeled text section. Sheets are
// visited in stored workbook order so identical bytes always produce
// identical text. An unreadable sheet fails the whole document.
func extractXLSX(data []byte) (*Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var blocks []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if block := sheetText(sheet, rows); block != "" {
			blocks = append(blocks, block)
		}
	}

	return &Result{Text: joinBlocks(blocks)}, nil
}

// sheetText formats one sheet: a "Sheet: name" header, then one line per
// row with cells joined by " | ". Trailing empty cells are trimmed and
// empty rows are dropped.
func sheetText(name string, rows [][]string) string {
	var lines []string
	for _, row := range rows {
		for len(row) > 0 && strings.TrimSpace(row[len(row)-1]) == "" {
			row = row[:len(row)-1]
		}
		if len(row) == 0 {
			continue
		}
		lines = append(lines, strings.Join(row, " | "))
	}
	if len(lines) == 0 {
		return ""
	}
	return "Sheet: " + name + "\n" + strings.Join(lines, "\n")
}
