// Package suggest derives the suggestion tokens a document contributes to the
// term_suggest field of the index.
package suggest

import (
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/schema"
)

// SuggestionSet is the ordered list of suggestion tokens of one document. Duplicates are
// kept (a term may belong to several taxonomies); an empty set means the field is omitted.
type SuggestionSet []string

// Empty reports whether the set carries no tokens.
func (s SuggestionSet) Empty() bool { return len(s) == 0 }

// ExtractSuggestions flattens the document's taxonomy terms into their names, in
// taxonomy order then term order.
func ExtractSuggestions(doc *models.Document) SuggestionSet {
	if doc == nil {
		return nil
	}
	return FromTaxonomies(doc.TaxonomyTerms)
}

// FromTaxonomies flattens taxonomy terms into their names, in taxonomy order then term order.
func FromTaxonomies(taxonomies models.TaxonomyTerms) SuggestionSet {
	n := taxonomies.TermCount()
	if n == 0 {
		return nil
	}
	out := make(SuggestionSet, 0, n)
	for _, tax := range taxonomies {
		for _, term := range tax.Terms {
			out = append(out, term.Name)
		}
	}
	return out
}

// ApplyTermSuggest merges the document's suggestions into an index payload under
// term_suggest. When there are none the key is removed rather than set to an empty list,
// so engines that treat [] and a missing field differently see a missing field.
func ApplyTermSuggest(payload map[string]interface{}, doc *models.Document) SuggestionSet {
	set := ExtractSuggestions(doc)
	if set.Empty() {
		delete(payload, schema.TermSuggestField)
		return set
	}
	payload[schema.TermSuggestField] = []string(set)
	return set
}

// BasePayload builds the index payload of a document without suggestions: its extra
// fields overlaid with the typed ones, so extra fields never override title, content,
// post_type or post_status.
func BasePayload(doc *models.Document) map[string]interface{} {
	payload := make(map[string]interface{}, len(doc.Fields)+5)
	for k, v := range doc.Fields {
		payload[k] = v
	}
	payload["title"] = doc.Title
	payload["content"] = doc.Content
	payload["post_type"] = doc.PostType
	payload["post_status"] = doc.PostStatus
	return payload
}

// Payload is BasePayload with term_suggest merged in when the document has taxonomy terms.
func Payload(doc *models.Document) map[string]interface{} {
	payload := BasePayload(doc)
	ApplyTermSuggest(payload, doc)
	return payload
}
