package extract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hyperjump/autosuggest/internal/models"
	"gopkg.in/yaml.v3"
)

// decodeJSONDocument reads a document input from JSON. Unknown keys are rejected so a
// misspelled taxonomy_terms does not silently drop suggestions.
func decodeJSONDocument(content []byte) (*models.DocumentInput, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	var in models.DocumentInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode JSON document: %w", err)
	}
	return &in, nil
}

func decodeYAMLDocument(content []byte) (*models.DocumentInput, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	var in models.DocumentInput
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("decode YAML document: %w", err)
	}
	return &in, nil
}
