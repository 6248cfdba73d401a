package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	frontMatterDelim = []byte("---")
	utf8BOM          = []byte("\xef\xbb\xbf")
)

// frontMatter is the YAML header of a markdown page.
type frontMatter struct {
	Title         string               `yaml:"title"`
	PostType      string               `yaml:"post_type"`
	PostStatus    string               `yaml:"post_status"`
	TaxonomyTerms models.TaxonomyTerms `yaml:"taxonomy_terms"`
	Tags          []string             `yaml:"tags"`
	Categories    []string             `yaml:"categories"`
}

// extractMarkdown reads optional YAML front matter and the body. Without a front matter
// title the first "# " heading is the title. tags and categories become taxonomies of
// the same name.
func extractMarkdown(content []byte) (*models.DocumentInput, error) {
	body := content
	var fm frontMatter
	if header, rest, ok := splitFrontMatter(content); ok {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, fmt.Errorf("decode front matter: %w", err)
		}
		body = rest
	}
	text, err := extractPlain(body)
	if err != nil {
		return nil, err
	}
	in := &models.DocumentInput{
		Title:         fm.Title,
		Content:       text,
		PostType:      fm.PostType,
		PostStatus:    fm.PostStatus,
		TaxonomyTerms: fm.TaxonomyTerms,
	}
	if len(fm.Categories) > 0 {
		in.TaxonomyTerms = in.TaxonomyTerms.Set("categories", namedTerms(fm.Categories))
	}
	if len(fm.Tags) > 0 {
		in.TaxonomyTerms = in.TaxonomyTerms.Set("tags", namedTerms(fm.Tags))
	}
	if in.Title == "" {
		in.Title = firstHeading(text)
	}
	return in, nil
}

// splitFrontMatter separates a leading block fenced by "---" lines from the body.
func splitFrontMatter(content []byte) (header, rest []byte, ok bool) {
	content = bytes.TrimPrefix(content, utf8BOM)
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), frontMatterDelim) {
		return nil, content, false
	}
	offset := len(lines[0])
	for _, line := range lines[1:] {
		if bytes.Equal(bytes.TrimSpace(line), frontMatterDelim) {
			return content[len(lines[0]):offset], content[offset+len(line):], true
		}
		offset += len(line)
	}
	return nil, content, false
}

func firstHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func namedTerms(names []string) []models.Term {
	out := make([]models.Term, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, models.Term{Name: n})
		}
	}
	return out
}
