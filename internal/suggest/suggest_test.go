package suggest

import (
	"reflect"
	"testing"

	"github.com/hyperjump/autosuggest/internal/models"
)

func TestExtractSuggestions_PreservesOrder(t *testing.T) {
	doc := &models.Document{
		ID: "1",
		TaxonomyTerms: models.TaxonomyTerms{
			{Name: "color", Terms: []models.Term{{ID: 1, Name: "red"}, {ID: 2, Name: "blue"}}},
			{Name: "size", Terms: []models.Term{{ID: 3, Name: "large"}}},
		},
	}
	got := ExtractSuggestions(doc)
	want := SuggestionSet{"red", "blue", "large"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSuggestions = %v, want %v", got, want)
	}
}

func TestExtractSuggestions_KeepsDuplicates(t *testing.T) {
	doc := &models.Document{TaxonomyTerms: models.TaxonomyTerms{
		{Name: "category", Terms: []models.Term{{Name: "news"}}},
		{Name: "post_tag", Terms: []models.Term{{Name: "news"}, {Name: "go"}}},
	}}
	got := ExtractSuggestions(doc)
	want := SuggestionSet{"news", "news", "go"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSuggestions = %v, want %v", got, want)
	}
}

func TestExtractSuggestions_Empty(t *testing.T) {
	tests := []struct {
		name string
		doc  *models.Document
	}{
		{"nil document", nil},
		{"no taxonomies", &models.Document{ID: "1"}},
		{"empty taxonomies", &models.Document{TaxonomyTerms: models.TaxonomyTerms{{Name: "category"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSuggestions(tt.doc); !got.Empty() {
				t.Errorf("ExtractSuggestions = %v, want empty", got)
			}
		})
	}
}

func TestApplyTermSuggest_OmitsFieldWhenEmpty(t *testing.T) {
	payload := map[string]interface{}{"title": "t", "term_suggest": []string{"stale"}}
	ApplyTermSuggest(payload, &models.Document{})
	if _, ok := payload["term_suggest"]; ok {
		t.Errorf("term_suggest should be omitted, payload = %v", payload)
	}
}

func TestApplyTermSuggest_SetsField(t *testing.T) {
	payload := map[string]interface{}{}
	doc := &models.Document{TaxonomyTerms: models.TaxonomyTerms{
		{Name: "category", Terms: []models.Term{{Name: "Apples"}}},
	}}
	set := ApplyTermSuggest(payload, doc)
	if !reflect.DeepEqual(payload["term_suggest"], []string{"Apples"}) {
		t.Errorf("term_suggest = %v", payload["term_suggest"])
	}
	if len(set) != 1 {
		t.Errorf("returned set = %v", set)
	}
}

func TestPayload(t *testing.T) {
	doc := &models.Document{
		ID:         "d1",
		Title:      "Hello",
		Content:    "Body",
		PostType:   "page",
		PostStatus: "published",
		Fields:     map[string]interface{}{"author": "ann", "title": "ignored"},
	}
	p := Payload(doc)
	if p["title"] != "Hello" || p["author"] != "ann" || p["post_type"] != "page" {
		t.Errorf("payload = %v", p)
	}
	if _, ok := p["term_suggest"]; ok {
		t.Error("term_suggest should be absent for a document without terms")
	}
}
