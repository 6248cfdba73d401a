package keyword

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/blevesearch/bleve/v2"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/autosuggest/internal/schema"
)

var fingerprintKey = []byte("autosuggest_schema_fingerprint")

// mappingVersion changes whenever the schema to bleve translation changes, so indexes
// built by an older translation are recreated.
const mappingVersion = 2

// dictionaryFields hold whole words; the suggest fields hold prefixes and are not useful
// for corrections.
var dictionaryFields = []string{schema.TitleField, "content"}

// BleveIndex implements SuggestIndex and TermSource using Bleve.
type BleveIndex struct {
	index        bleve.Index
	schema       schema.IndexSchema
	needsReindex bool
	generation   atomic.Uint64
}

// NewBleveIndex creates or opens a Bleve index at path for the given (augmented) schema.
// An existing index is reused only when it was built from the same schema and gram
// options; otherwise it is removed and created again, and NeedsReindex reports true.
func NewBleveIndex(path string, s schema.IndexSchema, opts schema.BleveOptions) (*BleveIndex, error) {
	im, err := schema.ToBleveMapping(s, opts)
	if err != nil {
		return nil, err
	}
	fp, err := fingerprint(s, opts)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(path); statErr == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		stored, getErr := index.GetInternal(fingerprintKey)
		if getErr == nil && string(stored) == fp {
			return &BleveIndex{index: index, schema: s}, nil
		}
		if err := index.Close(); err != nil {
			return nil, fmt.Errorf("failed to close stale Bleve index: %w", err)
		}
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale Bleve index: %w", err)
		}
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	if err := index.SetInternal(fingerprintKey, []byte(fp)); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to store schema fingerprint: %w", err)
	}
	return &BleveIndex{index: index, schema: s, needsReindex: true}, nil
}

func fingerprint(s schema.IndexSchema, opts schema.BleveOptions) (string, error) {
	b, err := json.Marshal(struct {
		Version int                `json:"version"`
		Schema  schema.IndexSchema `json:"schema"`
		MinGram int                `json:"min_gram"`
		MaxGram int                `json:"max_gram"`
	}{mappingVersion, s, opts.MinGram, opts.MaxGram})
	if err != nil {
		return "", fmt.Errorf("failed to encode schema: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// NeedsReindex reports whether the index was (re)created when opened.
func (b *BleveIndex) NeedsReindex() bool {
	return b.needsReindex
}

// Schema returns the schema the index was built from.
func (b *BleveIndex) Schema() schema.IndexSchema {
	return b.schema.Clone()
}

// Index indexes a document payload by id.
func (b *BleveIndex) Index(ctx context.Context, id string, payload map[string]interface{}) error {
	if err := b.index.Index(id, payload); err != nil {
		return fmt.Errorf("Bleve index failed: %w", err)
	}
	b.generation.Add(1)
	return nil
}

// Suggest runs the typeahead query: a disjunction of match queries, one per search field
// analyzed with that field's search analyzer, restricted by the post type and post status
// filters.
func (b *BleveIndex) Suggest(ctx context.Context, req *SuggestRequest) ([]*Hit, uint64, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" || len(req.SearchFields) == 0 {
		return nil, 0, nil
	}

	fieldQueries := make([]blevequery.Query, 0, len(req.SearchFields))
	for _, field := range req.SearchFields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(field)
		mq.Analyzer = schema.BleveAnalyzerName(b.schema.SearchAnalyzer(field))
		fieldQueries = append(fieldQueries, mq)
	}
	conjuncts := []blevequery.Query{bleve.NewDisjunctionQuery(fieldQueries...)}

	if len(req.PostTypes) > 0 {
		typeQueries := make([]blevequery.Query, 0, len(req.PostTypes))
		for _, pt := range req.PostTypes {
			tq := bleve.NewTermQuery(pt)
			tq.SetField("post_type")
			typeQueries = append(typeQueries, tq)
		}
		conjuncts = append(conjuncts, bleve.NewDisjunctionQuery(typeQueries...))
	}
	if req.PostStatus != "" {
		sq := bleve.NewTermQuery(req.PostStatus)
		sq.SetField("post_status")
		conjuncts = append(conjuncts, sq)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	search := bleve.NewSearchRequest(bleve.NewConjunctionQuery(conjuncts...))
	search.Size = limit
	search.Fields = []string{schema.TitleField, "post_type"}
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, 0, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &Hit{
			ID:       hit.ID,
			Title:    stringField(hit.Fields, schema.TitleField),
			PostType: stringField(hit.Fields, "post_type"),
			Score:    hit.Score,
		}
	}
	return out, results.Total, nil
}

func stringField(fields map[string]interface{}, name string) string {
	switch v := fields[name].(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Delete removes a document from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	if err := b.index.Delete(id); err != nil {
		return fmt.Errorf("Bleve delete failed: %w", err)
	}
	b.generation.Add(1)
	return nil
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of documents in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Generation changes on every Index and Delete.
func (b *BleveIndex) Generation() uint64 {
	return b.generation.Load()
}

// TermFrequencies returns the words of the whole-word fields with their document
// frequency (the highest across fields).
func (b *BleveIndex) TermFrequencies() (map[string]int, error) {
	terms := make(map[string]int)
	for _, field := range dictionaryFields {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if c := int(entry.Count); c > terms[entry.Term] {
				terms[entry.Term] = c
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}
