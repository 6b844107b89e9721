package normalize

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// extractXLS handles legacy BIFF workbooks, reusing the xlsx sheet
// rendering so both spreadsheet formats normalize identically.
func extractXLS(data []byte) (*Result, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	var blocks []string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			return nil, fmt.Errorf("read sheet %d: missing sheet data", i)
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			var cells []string
			// LastCol is exclusive: the BIFF row record stores the
			// last defined column index plus one.
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		if block := sheetText(sheet.Name, rows); block != "" {
			blocks = append(blocks, block)
		}
	}

	return &Result{Text: joinBlocks(blocks)}, nil
}
