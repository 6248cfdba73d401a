package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/ledongthuc/pdf"
)

// extractPDF returns the page text and, when set, the Title entry of the document info
// dictionary.
func extractPDF(content []byte) (*models.DocumentInput, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}
	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(text)
	}
	title := strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text())
	return &models.DocumentInput{Title: title, Content: strings.TrimSpace(buf.String())}, nil
}
