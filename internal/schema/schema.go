// Package schema models a search index schema (field mappings plus analysis settings)
// and layers the suggest-as-you-type fields onto it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field types understood by the schema and its bleve translation.
const (
	TypeText    = "text"
	TypeKeyword = "keyword"
	TypeLong    = "long"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeDouble  = "double"
	TypeDate    = "date"
	TypeBoolean = "boolean"
)

// Built-in analyzer names that never need a registry entry.
const (
	AnalyzerStandard   = "standard"
	AnalyzerSimple     = "simple"
	AnalyzerKeyword    = "keyword"
	AnalyzerWhitespace = "whitespace"
)

// FieldMapping describes how one field is indexed. Extra holds any settings this package
// does not model (e.g. "ignore_above") so they survive a decode/encode round trip untouched.
type FieldMapping struct {
	Type           string
	Analyzer       string
	SearchAnalyzer string
	Extra          map[string]json.RawMessage
	Fields         Fields
}

// Field is a named FieldMapping.
type Field struct {
	Name    string
	Mapping FieldMapping
}

// Fields is an ordered list of field mappings keyed by name.
type Fields []Field

// AnalyzerDefinition is a text analysis pipeline.
type AnalyzerDefinition struct {
	Type      string   `json:"type,omitempty"`
	Tokenizer string   `json:"tokenizer,omitempty"`
	Filters   []string `json:"filter,omitempty"`
}

// NamedAnalyzer is a registry entry.
type NamedAnalyzer struct {
	Name       string
	Definition AnalyzerDefinition
}

// AnalyzerRegistry is an ordered list of analyzers keyed by name.
type AnalyzerRegistry []NamedAnalyzer

// IndexSchema is the full mapping of an index: its fields and its analyzers.
type IndexSchema struct {
	Fields    Fields
	Analyzers AnalyzerRegistry
}

// Equal reports exact structural equality.
func (d AnalyzerDefinition) Equal(o AnalyzerDefinition) bool {
	if d.Type != o.Type || d.Tokenizer != o.Tokenizer || len(d.Filters) != len(o.Filters) {
		return false
	}
	for i := range d.Filters {
		if d.Filters[i] != o.Filters[i] {
			return false
		}
	}
	return true
}

// String renders the definition for error messages.
func (d AnalyzerDefinition) String() string {
	return fmt.Sprintf("{type=%s tokenizer=%s filter=[%s]}", d.Type, d.Tokenizer, strings.Join(d.Filters, ","))
}

func (d AnalyzerDefinition) clone() AnalyzerDefinition {
	d.Filters = append([]string(nil), d.Filters...)
	return d
}

// Equal reports exact structural equality, including sub-fields and extra settings.
func (m FieldMapping) Equal(o FieldMapping) bool {
	if m.Type != o.Type || m.Analyzer != o.Analyzer || m.SearchAnalyzer != o.SearchAnalyzer {
		return false
	}
	if len(m.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range m.Extra {
		ov, ok := o.Extra[k]
		if !ok || !bytes.Equal(v, ov) {
			return false
		}
	}
	return m.Fields.Equal(o.Fields)
}

// String renders the mapping for error messages.
func (m FieldMapping) String() string {
	var b strings.Builder
	b.WriteString("{type=")
	b.WriteString(m.Type)
	if m.Analyzer != "" {
		b.WriteString(" analyzer=")
		b.WriteString(m.Analyzer)
	}
	if m.SearchAnalyzer != "" {
		b.WriteString(" search_analyzer=")
		b.WriteString(m.SearchAnalyzer)
	}
	if len(m.Fields) > 0 {
		names := make([]string, len(m.Fields))
		for i, f := range m.Fields {
			names[i] = f.Name
		}
		b.WriteString(" fields=[")
		b.WriteString(strings.Join(names, ","))
		b.WriteString("]")
	}
	b.WriteString("}")
	return b.String()
}

func (m FieldMapping) clone() FieldMapping {
	if m.Extra != nil {
		extra := make(map[string]json.RawMessage, len(m.Extra))
		for k, v := range m.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}
		m.Extra = extra
	}
	m.Fields = m.Fields.clone()
	return m
}

// Get returns the mapping of the named field.
func (fs Fields) Get(name string) (FieldMapping, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.Mapping, true
		}
	}
	return FieldMapping{}, false
}

// Names returns the field names in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Equal reports whether both lists hold equal mappings in the same order.
func (fs Fields) Equal(o Fields) bool {
	if len(fs) != len(o) {
		return false
	}
	for i := range fs {
		if fs[i].Name != o[i].Name || !fs[i].Mapping.Equal(o[i].Mapping) {
			return false
		}
	}
	return true
}

// with returns a copy of fs where name maps to m; a new name is appended.
func (fs Fields) with(name string, m FieldMapping) Fields {
	out := make(Fields, len(fs), len(fs)+1)
	copy(out, fs)
	for i := range out {
		if out[i].Name == name {
			out[i].Mapping = m
			return out
		}
	}
	return append(out, Field{Name: name, Mapping: m})
}

func (fs Fields) clone() Fields {
	if fs == nil {
		return nil
	}
	out := make(Fields, len(fs))
	for i, f := range fs {
		out[i] = Field{Name: f.Name, Mapping: f.Mapping.clone()}
	}
	return out
}

// Get returns the named analyzer.
func (r AnalyzerRegistry) Get(name string) (AnalyzerDefinition, bool) {
	for _, a := range r {
		if a.Name == name {
			return a.Definition, true
		}
	}
	return AnalyzerDefinition{}, false
}

// Equal reports whether both registries hold equal analyzers in the same order.
func (r AnalyzerRegistry) Equal(o AnalyzerRegistry) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i].Name != o[i].Name || !r[i].Definition.Equal(o[i].Definition) {
			return false
		}
	}
	return true
}

func (r AnalyzerRegistry) clone() AnalyzerRegistry {
	if r == nil {
		return nil
	}
	out := make(AnalyzerRegistry, len(r))
	for i, a := range r {
		out[i] = NamedAnalyzer{Name: a.Name, Definition: a.Definition.clone()}
	}
	return out
}

// Clone returns a deep copy.
func (s IndexSchema) Clone() IndexSchema {
	return IndexSchema{Fields: s.Fields.clone(), Analyzers: s.Analyzers.clone()}
}

// Equal reports exact structural equality.
func (s IndexSchema) Equal(o IndexSchema) bool {
	return s.Fields.Equal(o.Fields) && s.Analyzers.Equal(o.Analyzers)
}

// Lookup resolves a dotted field path such as "title.suggest".
func (s IndexSchema) Lookup(path string) (FieldMapping, bool) {
	parts := strings.Split(path, ".")
	fields := s.Fields
	var m FieldMapping
	for _, p := range parts {
		var ok bool
		m, ok = fields.Get(p)
		if !ok {
			return FieldMapping{}, false
		}
		fields = m.Fields
	}
	return m, true
}

// SearchAnalyzer returns the analyzer used for query text on the given field path:
// the search analyzer when set, else the index analyzer, else standard.
func (s IndexSchema) SearchAnalyzer(path string) string {
	m, ok := s.Lookup(path)
	if !ok {
		return AnalyzerStandard
	}
	if m.SearchAnalyzer != "" {
		return m.SearchAnalyzer
	}
	if m.Analyzer != "" {
		return m.Analyzer
	}
	if m.Type == TypeKeyword {
		return AnalyzerKeyword
	}
	return AnalyzerStandard
}

// Validate checks that every analyzer referenced by a field, at any depth, is either
// built in or registered.
func (s IndexSchema) Validate() error {
	var missing []string
	var walk func(prefix string, fs Fields)
	walk = func(prefix string, fs Fields) {
		for _, f := range fs {
			path := prefix + f.Name
			for _, name := range []string{f.Mapping.Analyzer, f.Mapping.SearchAnalyzer} {
				if name == "" || isBuiltinAnalyzer(name) {
					continue
				}
				if _, ok := s.Analyzers.Get(name); !ok {
					missing = append(missing, path+"->"+name)
				}
			}
			walk(path+".", f.Mapping.Fields)
		}
	}
	walk("", s.Fields)
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("unregistered analyzers: %s", strings.Join(missing, ", "))
	}
	return nil
}

func isBuiltinAnalyzer(name string) bool {
	switch name {
	case AnalyzerStandard, AnalyzerSimple, AnalyzerKeyword, AnalyzerWhitespace:
		return true
	}
	return false
}

// DefaultSchema returns the base schema of the suggest index before augmentation.
func DefaultSchema() IndexSchema {
	return IndexSchema{
		Fields: Fields{
			{Name: "title", Mapping: FieldMapping{Type: TypeText, Analyzer: AnalyzerStandard}},
			{Name: "content", Mapping: FieldMapping{Type: TypeText, Analyzer: AnalyzerStandard}},
			{Name: "post_type", Mapping: FieldMapping{Type: TypeKeyword}},
			{Name: "post_status", Mapping: FieldMapping{Type: TypeKeyword}},
		},
	}
}
