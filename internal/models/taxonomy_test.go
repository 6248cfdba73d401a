package models

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTaxonomyTerms_UnmarshalJSONKeepsOrder(t *testing.T) {
	data := []byte(`{"size":[{"id":3,"name":"large"}],"color":[{"id":1,"name":"red"},{"id":2,"name":"blue"}],"empty":[]}`)
	var tt TaxonomyTerms
	if err := json.Unmarshal(data, &tt); err != nil {
		t.Fatal(err)
	}
	if len(tt) != 3 {
		t.Fatalf("got %d taxonomies, want 3", len(tt))
	}
	wantNames := []string{"size", "color", "empty"}
	for i, name := range wantNames {
		if tt[i].Name != name {
			t.Errorf("taxonomy[%d] = %q, want %q", i, tt[i].Name, name)
		}
	}
	if got := tt.Get("color"); len(got) != 2 || got[0].Name != "red" || got[1].Name != "blue" {
		t.Errorf("color terms = %+v", got)
	}
	if tt.TermCount() != 3 {
		t.Errorf("TermCount() = %d, want 3", tt.TermCount())
	}
}

func TestTaxonomyTerms_MarshalJSONKeepsOrder(t *testing.T) {
	tt := TaxonomyTerms{
		{Name: "size", Terms: []Term{{ID: 3, Name: "large"}}},
		{Name: "color", Terms: nil},
	}
	data, err := json.Marshal(tt)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"size":[{"id":3,"name":"large"}],"color":[]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestTaxonomyTerms_UnmarshalJSONDuplicateKeyReplaces(t *testing.T) {
	var tt TaxonomyTerms
	if err := json.Unmarshal([]byte(`{"a":[{"name":"x"}],"b":[],"a":[{"name":"y"}]}`), &tt); err != nil {
		t.Fatal(err)
	}
	if len(tt) != 2 || tt[0].Name != "a" || tt[0].Terms[0].Name != "y" {
		t.Errorf("got %+v", tt)
	}
}

func TestTaxonomyTerms_UnmarshalJSONRejectsArray(t *testing.T) {
	var tt TaxonomyTerms
	if err := json.Unmarshal([]byte(`[1,2]`), &tt); err == nil {
		t.Error("expected error for array input")
	}
}

func TestDocumentInput_OmitsEmptyTaxonomies(t *testing.T) {
	data, err := json.Marshal(DocumentInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["taxonomy_terms"]; ok {
		t.Errorf("taxonomy_terms should be omitted: %s", data)
	}
}

func TestTaxonomyTerms_UnmarshalYAMLKeepsOrder(t *testing.T) {
	src := `
title: Hello
taxonomy_terms:
  post_tag:
    - id: 9
      name: go
  category:
    - name: news
    - name: tech
`
	var in DocumentInput
	if err := yaml.Unmarshal([]byte(src), &in); err != nil {
		t.Fatal(err)
	}
	if len(in.TaxonomyTerms) != 2 {
		t.Fatalf("got %d taxonomies", len(in.TaxonomyTerms))
	}
	if in.TaxonomyTerms[0].Name != "post_tag" || in.TaxonomyTerms[1].Name != "category" {
		t.Errorf("order = %q, %q", in.TaxonomyTerms[0].Name, in.TaxonomyTerms[1].Name)
	}
	if in.TaxonomyTerms[0].Terms[0].ID != 9 {
		t.Errorf("term id = %d, want 9", in.TaxonomyTerms[0].Terms[0].ID)
	}
}
