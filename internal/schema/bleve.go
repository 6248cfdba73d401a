package schema

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// bleveEdgeNgramFilter is the name under which the edge n-gram token filter is
// registered in the bleve mapping; bleve needs explicit min/max grams.
const bleveEdgeNgramFilter = "suggest_edge_ngram"

// BleveStandardAnalyzer stands in for the search engine's standard analyzer: unicode
// word tokens, lowercased, no stop words. bleve's own "standard" drops English stop
// words, which would turn prefixes like "in" or "over" into empty queries.
const BleveStandardAnalyzer = "suggest_standard"

// BleveOptions tunes the bleve translation.
type BleveOptions struct {
	// MinGram and MaxGram bound the prefixes produced by the edge_ngram filter.
	MinGram int
	MaxGram int
}

func (o BleveOptions) withDefaults() BleveOptions {
	if o.MinGram <= 0 {
		o.MinGram = 1
	}
	if o.MaxGram <= 0 {
		o.MaxGram = 20
	}
	if o.MaxGram < o.MinGram {
		o.MaxGram = o.MinGram
	}
	return o
}

// BleveAnalyzerName maps a schema analyzer name to the bleve analyzer of the same role.
// Registered custom analyzers keep their names.
func BleveAnalyzerName(name string) string {
	switch name {
	case "", AnalyzerStandard:
		return BleveStandardAnalyzer
	case AnalyzerSimple:
		return simple.Name
	case AnalyzerKeyword:
		return keyword.Name
	}
	return name
}

func bleveTokenizerName(name string) string {
	switch name {
	case "", TokenizerStandard:
		return unicode.Name
	case AnalyzerKeyword:
		return single.Name
	}
	return name
}

func bleveFilterName(name string) string {
	switch name {
	case LowercaseFilter:
		return lowercase.Name
	case EdgeNgramFilter:
		return bleveEdgeNgramFilter
	}
	return name
}

// ToBleveMapping builds a bleve index mapping equivalent to s. Sub-fields are indexed
// under dotted names ("title.suggest") so queries can target them directly. bleve keeps
// one analyzer per field, so search analyzers are applied at query time by the caller
// (see IndexSchema.SearchAnalyzer).
func ToBleveMapping(s IndexSchema, opts BleveOptions) (*mapping.IndexMappingImpl, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	im := bleve.NewIndexMapping()

	err := im.AddCustomAnalyzer(BleveStandardAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("standard analyzer: %w", err)
	}

	if usesFilter(s.Analyzers, EdgeNgramFilter) {
		err = im.AddCustomTokenFilter(bleveEdgeNgramFilter, map[string]interface{}{
			"type": edgengram.Name,
			"back": false,
			"min":  float64(opts.MinGram),
			"max":  float64(opts.MaxGram),
		})
		if err != nil {
			return nil, fmt.Errorf("edge ngram filter: %w", err)
		}
	}

	for _, a := range s.Analyzers {
		if a.Definition.Type != "" && a.Definition.Type != AnalyzerTypeCustom {
			return nil, fmt.Errorf("analyzer %q: unsupported type %q", a.Name, a.Definition.Type)
		}
		filters := make([]string, len(a.Definition.Filters))
		for i, f := range a.Definition.Filters {
			filters[i] = bleveFilterName(f)
		}
		err = im.AddCustomAnalyzer(a.Name, map[string]interface{}{
			"type":          custom.Name,
			"tokenizer":     bleveTokenizerName(a.Definition.Tokenizer),
			"token_filters": filters,
		})
		if err != nil {
			return nil, fmt.Errorf("analyzer %q: %w", a.Name, err)
		}
	}

	docMapping := bleve.NewDocumentMapping()
	for _, f := range s.Fields {
		fms, err := bleveFieldMappings(f.Name, "", f.Mapping)
		if err != nil {
			return nil, err
		}
		docMapping.AddFieldMappingsAt(f.Name, fms...)
	}
	im.DefaultMapping = docMapping
	im.DefaultAnalyzer = BleveStandardAnalyzer

	if err := im.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bleve mapping: %w", err)
	}
	return im, nil
}

// bleveFieldMappings returns the mapping of the field itself followed by one mapping per
// sub-field (recursively), all attached to the same document property.
func bleveFieldMappings(path, indexName string, m FieldMapping) ([]*mapping.FieldMapping, error) {
	var fm *mapping.FieldMapping
	switch m.Type {
	case TypeText, "":
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = BleveAnalyzerName(m.Analyzer)
	case TypeKeyword:
		fm = bleve.NewKeywordFieldMapping()
	case TypeLong, TypeInteger, TypeFloat, TypeDouble:
		fm = bleve.NewNumericFieldMapping()
	case TypeDate:
		fm = bleve.NewDateTimeFieldMapping()
	case TypeBoolean:
		fm = bleve.NewBooleanFieldMapping()
	default:
		return nil, fmt.Errorf("field %q: unsupported type %q", path, m.Type)
	}
	fm.Name = indexName
	out := []*mapping.FieldMapping{fm}
	for _, sub := range m.Fields {
		subPath := path + "." + sub.Name
		subs, err := bleveFieldMappings(subPath, subPath, sub.Mapping)
		if err != nil {
			return nil, err
		}
		out = append(out, subs...)
	}
	return out, nil
}

func usesFilter(r AnalyzerRegistry, filter string) bool {
	for _, a := range r {
		for _, f := range a.Definition.Filters {
			if f == filter {
				return true
			}
		}
	}
	return false
}
