package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// The wire form follows the search engine index-creation body:
//
//	{"settings":{"analysis":{"analyzer":{...}}},"mappings":{"properties":{...}}}
//
// Objects keep declaration order on both encode and decode.

type wireSchema struct {
	Settings wireSettings `json:"settings"`
	Mappings wireMappings `json:"mappings"`
}

type wireSettings struct {
	Analysis wireAnalysis `json:"analysis"`
}

type wireAnalysis struct {
	Analyzer AnalyzerRegistry `json:"analyzer"`
}

type wireMappings struct {
	Properties Fields `json:"properties"`
}

// MarshalJSON encodes the schema in index-creation form.
func (s IndexSchema) MarshalJSON() ([]byte, error) {
	w := wireSchema{}
	w.Settings.Analysis.Analyzer = s.Analyzers
	w.Mappings.Properties = s.Fields
	return json.Marshal(w)
}

// UnmarshalJSON decodes the index-creation form.
func (s *IndexSchema) UnmarshalJSON(data []byte) error {
	var w wireSchema
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	s.Fields = w.Mappings.Properties
	s.Analyzers = w.Settings.Analysis.Analyzer
	return nil
}

// LoadFile reads a schema in index-creation form from path. An empty path yields
// DefaultSchema.
func LoadFile(path string) (IndexSchema, error) {
	if path == "" {
		return DefaultSchema(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return IndexSchema{}, fmt.Errorf("failed to read schema: %w", err)
	}
	var s IndexSchema
	if err := json.Unmarshal(data, &s); err != nil {
		return IndexSchema{}, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	return s, nil
}

// MarshalJSON encodes the fields as an ordered object.
func (fs Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, f.Name, f.Mapping); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an ordered object of field mappings.
func (fs *Fields) UnmarshalJSON(data []byte) error {
	out := Fields{}
	err := decodeOrderedObject(data, func(name string, raw json.RawMessage) error {
		var m FieldMapping
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out = out.with(name, m)
		return nil
	})
	if err != nil {
		return err
	}
	*fs = out
	return nil
}

// MarshalJSON encodes the registry as an ordered object.
func (r AnalyzerRegistry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, a.Name, a.Definition); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an ordered object of analyzers.
func (r *AnalyzerRegistry) UnmarshalJSON(data []byte) error {
	out := AnalyzerRegistry{}
	err := decodeOrderedObject(data, func(name string, raw json.RawMessage) error {
		var d AnalyzerDefinition
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("analyzer %q: %w", name, err)
		}
		for i := range out {
			if out[i].Name == name {
				out[i].Definition = d
				return nil
			}
		}
		out = append(out, NamedAnalyzer{Name: name, Definition: d})
		return nil
	})
	if err != nil {
		return err
	}
	*r = out
	return nil
}

var knownMappingKeys = map[string]bool{
	"type": true, "analyzer": true, "search_analyzer": true, "fields": true,
}

// MarshalJSON writes type, analyzer, search_analyzer, the extra settings sorted by key,
// then the sub-fields.
func (m FieldMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	member := func(key string, v interface{}) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		return writeMember(&buf, key, v)
	}
	if m.Type != "" {
		if err := member("type", m.Type); err != nil {
			return nil, err
		}
	}
	if m.Analyzer != "" {
		if err := member("analyzer", m.Analyzer); err != nil {
			return nil, err
		}
	}
	if m.SearchAnalyzer != "" {
		if err := member("search_analyzer", m.SearchAnalyzer); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(m.Extra))
	for k := range m.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := member(k, m.Extra[k]); err != nil {
			return nil, err
		}
	}
	if len(m.Fields) > 0 {
		if err := member("fields", m.Fields); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a field mapping, keeping unknown settings in Extra.
func (m *FieldMapping) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := FieldMapping{}
	for key, dst := range map[string]*string{
		"type":            &out.Type,
		"analyzer":        &out.Analyzer,
		"search_analyzer": &out.SearchAnalyzer,
	} {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	if v, ok := raw["fields"]; ok {
		if err := json.Unmarshal(v, &out.Fields); err != nil {
			return fmt.Errorf("fields: %w", err)
		}
	}
	for k, v := range raw {
		if knownMappingKeys[k] {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, v); err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		out.Extra[k] = compact.Bytes()
	}
	*m = out
	return nil
}

func writeMember(buf *bytes.Buffer, key string, v interface{}) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}

// decodeOrderedObject calls fn for every member of a JSON object in document order.
// null decodes as an empty object.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
