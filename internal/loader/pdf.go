package loader

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns one text unit per page.
func extractPDF(content []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages with unsupported encodings are skipped rather than
			// failing the whole document.
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
