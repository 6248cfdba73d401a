// Package extract turns content files into document inputs: structured JSON and YAML
// documents as they are, other formats as a titled body of text.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
)

// Extractor builds document inputs from files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extensions lists the file extensions the extractor understands.
var Extensions = []string{".json", ".yaml", ".yml", ".txt", ".md", ".markdown", ".rst", ".pdf", ".docx", ".xlsx", ".rtf", ".odt"}

// Supports reports whether ext (with leading dot, any case) has a dedicated extractor.
func Supports(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extract reads the file at path and returns its document input. When the format
// carries no title, the file name without extension is used.
func (e *Extractor) Extract(path string) (*models.DocumentInput, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	in, err := e.ExtractBytes(content, ext)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		in.Title = TitleFromFileName(base)
	}
	return in, nil
}

// ExtractBytes builds a document input from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions are read as text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (*models.DocumentInput, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return decodeJSONDocument(content)
	case ".yaml", ".yml":
		return decodeYAMLDocument(content)
	case ".md", ".markdown":
		return extractMarkdown(content)
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	case ".rtf", ".odt":
		return extractOffice(content, ext)
	default:
		text, err := extractPlain(content)
		if err != nil {
			return nil, err
		}
		return &models.DocumentInput{Content: text}, nil
	}
}

// TitleFromFileName turns "summer_sale-2024.md" into "summer sale 2024".
func TitleFromFileName(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
