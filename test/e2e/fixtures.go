package e2e

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// SupportedFileExtensions is the list of file extensions used in E2E file-based tests.
// PDF is covered by internal/extract tests; a minimal PDF with extractable text is not
// generated here.
var SupportedFileExtensions = []string{
	".txt", ".md", ".rst", ".json", ".yaml", ".docx", ".xlsx",
}

// FileSlug turns a title into the file name stem the extractor maps back to the title.
func FileSlug(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), "-"))
}

// WriteMinimalFile returns the bytes of a minimal file of the given extension whose
// extracted title is title (case-insensitively, when written as FileSlug(title)+ext) and
// whose content holds body.
func WriteMinimalFile(ext, title, body string) ([]byte, error) {
	switch ext {
	case ".txt", ".rst":
		return []byte(body), nil
	case ".md":
		return []byte("# " + title + "\n\n" + body + "\n"), nil
	case ".json":
		return json.Marshal(map[string]string{"title": title, "content": body})
	case ".yaml":
		return yaml.Marshal(map[string]string{"title": title, "content": body})
	case ".docx":
		return minimalDocx(body)
	case ".xlsx":
		return minimalXlsx(body)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q", ext)
	}
}

func minimalDocx(text string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, err := w.Create("word/document.xml")
	if err != nil {
		return nil, err
	}
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`))
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func minimalXlsx(text string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", text); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
