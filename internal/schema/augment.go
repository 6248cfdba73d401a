package schema

import "fmt"

const (
	// TitleField is the primary title field that receives the suggest sub-field.
	TitleField = "title"
	// SuggestSubField is the sub-field added under TitleField.
	SuggestSubField = "suggest"
	// TermSuggestField carries the flattened taxonomy term names of a document.
	TermSuggestField = "term_suggest"
	// EdgeNgramAnalyzer indexes every prefix of each token.
	EdgeNgramAnalyzer = "edge_ngram_analyzer"
	// EdgeNgramFilter is the token filter producing the prefixes.
	EdgeNgramFilter = "edge_ngram"
	// LowercaseFilter lowercases tokens.
	LowercaseFilter = "lowercase"
	// TokenizerStandard splits on Unicode word boundaries.
	TokenizerStandard = "standard"
	// AnalyzerTypeCustom marks an analyzer assembled from a tokenizer and filters.
	AnalyzerTypeCustom = "custom"
)

// TitleSuggestPath is the dotted path of the title suggest sub-field.
const TitleSuggestPath = TitleField + "." + SuggestSubField

// SchemaConflictError reports that augmentation would overwrite an existing field or
// analyzer whose definition differs from the one the suggest fields need.
type SchemaConflictError struct {
	Kind     string // "field" or "analyzer"
	Path     string
	Existing string
	Wanted   string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict: %s %q is already defined as %s, suggest requires %s",
		e.Kind, e.Path, e.Existing, e.Wanted)
}

// EdgeNgramDefinition returns the analyzer registered as EdgeNgramAnalyzer.
func EdgeNgramDefinition() AnalyzerDefinition {
	return AnalyzerDefinition{
		Type:      AnalyzerTypeCustom,
		Tokenizer: TokenizerStandard,
		Filters:   []string{LowercaseFilter, EdgeNgramFilter},
	}
}

// SuggestFieldMapping returns the mapping used by both suggest fields: prefixes at index
// time, whole words at query time.
func SuggestFieldMapping() FieldMapping {
	return FieldMapping{
		Type:           TypeText,
		Analyzer:       EdgeNgramAnalyzer,
		SearchAnalyzer: AnalyzerStandard,
	}
}

// Augment returns a copy of base with the suggest fields and the edge n-gram analyzer
// added. base is never modified. Augmentation is additive and idempotent: definitions
// already equal to the suggest ones are kept, anything else under the same name yields
// a *SchemaConflictError.
func Augment(base IndexSchema) (IndexSchema, error) {
	out := base.Clone()

	want := EdgeNgramDefinition()
	if existing, ok := out.Analyzers.Get(EdgeNgramAnalyzer); ok {
		if !existing.Equal(want) {
			return IndexSchema{}, &SchemaConflictError{
				Kind:     "analyzer",
				Path:     EdgeNgramAnalyzer,
				Existing: existing.String(),
				Wanted:   want.String(),
			}
		}
	} else {
		out.Analyzers = append(out.Analyzers, NamedAnalyzer{Name: EdgeNgramAnalyzer, Definition: want})
	}

	title, ok := out.Fields.Get(TitleField)
	if !ok {
		title = FieldMapping{Type: TypeText, Analyzer: AnalyzerStandard}
	}
	sub, err := addField(title.Fields, SuggestSubField, TitleSuggestPath)
	if err != nil {
		return IndexSchema{}, err
	}
	title.Fields = sub
	out.Fields = out.Fields.with(TitleField, title)

	out.Fields, err = addField(out.Fields, TermSuggestField, TermSuggestField)
	if err != nil {
		return IndexSchema{}, err
	}
	return out, nil
}

func addField(fs Fields, name, path string) (Fields, error) {
	want := SuggestFieldMapping()
	if existing, ok := fs.Get(name); ok {
		if existing.Equal(want) {
			return fs, nil
		}
		return nil, &SchemaConflictError{
			Kind:     "field",
			Path:     path,
			Existing: existing.String(),
			Wanted:   want.String(),
		}
	}
	return fs.with(name, want), nil
}
