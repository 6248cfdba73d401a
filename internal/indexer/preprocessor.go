package indexer

import (
	"strings"
	"unicode"

	"github.com/hyperjump/autosuggest/internal/models"
)

// Preprocess normalizes text for indexing: trims, collapses whitespace runs to one space
// and drops invisible format characters (zero-width spaces, byte order marks) that
// extracted files often carry.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
		case unicode.Is(unicode.Cf, r), unicode.IsControl(r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// preprocessTerms runs Preprocess over taxonomy and term names, dropping terms left
// without a name and taxonomies left without terms. Order is kept.
func preprocessTerms(tt models.TaxonomyTerms) models.TaxonomyTerms {
	if len(tt) == 0 {
		return nil
	}
	out := make(models.TaxonomyTerms, 0, len(tt))
	for _, tax := range tt {
		name := Preprocess(tax.Name)
		if name == "" {
			continue
		}
		terms := make([]models.Term, 0, len(tax.Terms))
		for _, term := range tax.Terms {
			if term.Name = Preprocess(term.Name); term.Name != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) > 0 {
			out = append(out, models.Taxonomy{Name: name, Terms: terms})
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
