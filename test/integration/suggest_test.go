// Package integration provides end-to-end tests (requires real storage and indices).
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/indexer"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/schema"
	"github.com/hyperjump/autosuggest/internal/search"
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/termindex"
)

type stack struct {
	store   *storage.SQLiteStorage
	index   *keyword.BleveIndex
	engine  *search.Engine
	indexer *indexer.Indexer
	terms   *termindex.Dictionary
}

func (s *stack) Close() {
	_ = s.index.Close()
	_ = s.store.Close()
}

func openStack(t *testing.T, dir string, opts schema.BleveOptions) *stack {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	feat := feature.New(endpoint.Config{Mode: endpoint.SelfHosted, SelfHostedEndpointURL: "https://example.com/suggest"})
	s, err := feat.Mapping(schema.DefaultSchema())
	if err != nil {
		t.Fatal(err)
	}
	index, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"), s, opts)
	if err != nil {
		t.Fatal(err)
	}
	terms := termindex.New()
	st := &stack{
		store:   store,
		index:   index,
		terms:   terms,
		engine:  search.NewEngine(index, terms, feat),
		indexer: indexer.New(store, index, terms, feat, nil),
	}
	if _, err := st.indexer.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	return st
}

func suggest(t *testing.T, e *search.Engine, text string) *models.SuggestResponse {
	t.Helper()
	q := &models.SuggestQuery{Text: text}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	resp, err := e.Suggest(context.Background(), q)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestIntegration_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	opts := schema.BleveOptions{MinGram: 1, MaxGram: 20}

	st := openStack(t, dir, opts)
	for _, in := range []*models.DocumentInput{
		{ID: "doc1", Title: "Machine learning basics", TaxonomyTerms: models.TaxonomyTerms{
			{Name: "category", Terms: []models.Term{{ID: 1, Name: "Machine Learning"}}},
		}},
		{ID: "doc2", Title: "Search engines", TaxonomyTerms: models.TaxonomyTerms{
			{Name: "post_tag", Terms: []models.Term{{ID: 2, Name: "Search"}}},
		}},
	} {
		if _, err := st.indexer.IndexDocument(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	if resp := suggest(t, st.engine, "mach"); len(resp.Hits) != 1 || len(resp.Terms) != 1 {
		t.Fatalf("before restart: hits=%d terms=%d", len(resp.Hits), len(resp.Terms))
	}
	st.Close()

	st = openStack(t, dir, opts)
	defer st.Close()
	if st.terms.Len() != 2 {
		t.Errorf("terms after restart = %d, want 2", st.terms.Len())
	}
	resp := suggest(t, st.engine, "mach")
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "doc1" {
		t.Errorf("hits after restart = %+v", resp.Hits)
	}
	if len(resp.Terms) != 1 || resp.Terms[0].Term != "Machine Learning" {
		t.Errorf("terms after restart = %+v", resp.Terms)
	}
}

func TestIntegration_MappingChangeReindexes(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st := openStack(t, dir, schema.BleveOptions{MinGram: 1, MaxGram: 20})
	if _, err := st.indexer.IndexDocument(ctx, &models.DocumentInput{ID: "doc1", Title: "Semantic search"}); err != nil {
		t.Fatal(err)
	}
	st.Close()

	// A larger min_gram changes the index mapping; the index is rebuilt from storage.
	st = openStack(t, dir, schema.BleveOptions{MinGram: 3, MaxGram: 20})
	defer st.Close()
	n, err := st.index.DocCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("indexed documents after mapping change = %d, want 1", n)
	}
	if resp := suggest(t, st.engine, "sem"); len(resp.Hits) != 1 {
		t.Errorf("hits for 3-letter prefix = %d, want 1", len(resp.Hits))
	}
}
