package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetTaxonomy lists the worksheet names of a spreadsheet, so typing a sheet name
// suggests the workbook.
const SheetTaxonomy = "sheet"

func extractExcel(content []byte) (*models.DocumentInput, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	var sheets []models.Term
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		sheets = append(sheets, models.Term{Name: sheet})
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
	}
	in := &models.DocumentInput{Content: strings.TrimSpace(buf.String())}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		in.Title = strings.TrimSpace(props.Title)
	}
	if len(sheets) > 0 {
		in.TaxonomyTerms = in.TaxonomyTerms.Set(SheetTaxonomy, sheets)
	}
	return in, nil
}
