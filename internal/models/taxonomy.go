package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Term is a single taxonomy term attached to a document.
type Term struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Taxonomy is a named group of terms, e.g. "category" or "post_tag".
type Taxonomy struct {
	Name  string
	Terms []Term
}

// TaxonomyTerms maps taxonomy names to their terms and keeps declaration order.
// The JSON and YAML forms are objects keyed by taxonomy name; key order survives a
// decode/encode round trip, which keeps suggestion extraction reproducible.
type TaxonomyTerms []Taxonomy

// Get returns the terms of the named taxonomy, or nil.
func (t TaxonomyTerms) Get(name string) []Term {
	for _, tax := range t {
		if tax.Name == name {
			return tax.Terms
		}
	}
	return nil
}

// Set replaces the terms of the named taxonomy in place, or appends it.
func (t TaxonomyTerms) Set(name string, terms []Term) TaxonomyTerms {
	for i := range t {
		if t[i].Name == name {
			t[i].Terms = terms
			return t
		}
	}
	return append(t, Taxonomy{Name: name, Terms: terms})
}

// TermCount returns the total number of terms across all taxonomies.
func (t TaxonomyTerms) TermCount() int {
	n := 0
	for _, tax := range t {
		n += len(tax.Terms)
	}
	return n
}

// MarshalJSON encodes the taxonomies as an object in declaration order.
func (t TaxonomyTerms) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tax := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tax.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		terms := tax.Terms
		if terms == nil {
			terms = []Term{}
		}
		val, err := json.Marshal(terms)
		if err != nil {
			return nil, fmt.Errorf("marshal taxonomy %q: %w", tax.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of taxonomy name -> term list, keeping key order.
// A repeated key replaces the earlier terms in place.
func (t *TaxonomyTerms) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("taxonomy terms: expected object, got %v", tok)
	}
	out := TaxonomyTerms{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("taxonomy terms: expected key, got %v", keyTok)
		}
		var terms []Term
		if err := dec.Decode(&terms); err != nil {
			return fmt.Errorf("taxonomy %q: %w", name, err)
		}
		out = out.Set(name, terms)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = out
	return nil
}

// UnmarshalYAML decodes a mapping of taxonomy name -> term list, keeping key order.
func (t *TaxonomyTerms) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		*t = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("taxonomy terms: expected mapping at line %d", value.Line)
	}
	out := TaxonomyTerms{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		name := value.Content[i].Value
		var terms []Term
		if err := value.Content[i+1].Decode(&terms); err != nil {
			return fmt.Errorf("taxonomy %q: %w", name, err)
		}
		out = out.Set(name, terms)
	}
	*t = out
	return nil
}
