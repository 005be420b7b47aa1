package loader

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX returns one text unit per sheet, rows rendered as
// tab-separated lines.
func extractXLSX(content []byte) ([]string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	var sheets []string
	for _, name := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(name)
		if err != nil {
			return nil, err
		}

		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sheets = append(sheets, sb.String())
	}

	return sheets, nil
}
