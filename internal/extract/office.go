package extract

import (
	"fmt"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/lu4p/cat"
)

// extractOffice reads RTF and OpenDocument text. The document title is left to the
// file name since neither reader exposes metadata.
func extractOffice(content []byte, ext string) (*models.DocumentInput, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return &models.DocumentInput{Content: strings.Join(strings.Fields(text), " ")}, nil
}
