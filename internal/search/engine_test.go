package search

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
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/termindex"
)

func testEngine(t *testing.T, settings endpoint.Config) (*Engine, *indexer.Indexer) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	feat := feature.New(settings)
	s, err := feat.Mapping(schema.DefaultSchema())
	if err != nil {
		t.Fatal(err)
	}
	index, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"), s, schema.BleveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = index.Close() })

	terms := termindex.New()
	engine := NewEngine(index, terms, feat, WithCorrector(keyword.NewCorrector(index)))
	idx := indexer.New(store, index, terms, feat, nil)

	ctx := context.Background()
	for _, in := range []*models.DocumentInput{
		{ID: "boots", Title: "Winter boots", TaxonomyTerms: models.TaxonomyTerms{
			{Name: "category", Terms: []models.Term{{ID: 1, Name: "Footwear"}}},
		}},
		{ID: "jacket", Title: "Winter jacket", PostType: "page", TaxonomyTerms: models.TaxonomyTerms{
			{Name: "category", Terms: []models.Term{{ID: 2, Name: "Outerwear"}}},
			{Name: "post_tag", Terms: []models.Term{{ID: 3, Name: "Waterproof"}}},
		}},
		{ID: "draft", Title: "Winter gloves", PostStatus: "draft"},
		{ID: "product", Title: "Wireless speaker", PostType: "product"},
	} {
		if _, err := idx.IndexDocument(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	return engine, idx
}

var selfHosted = endpoint.Config{Mode: endpoint.SelfHosted, SelfHostedEndpointURL: "https://search.example.com"}

func TestEngine_SuggestPrefix(t *testing.T) {
	engine, _ := testEngine(t, selfHosted)
	resp, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "wint"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 2 {
		t.Fatalf("hits = %d, want 2 (draft excluded): %+v", len(resp.Hits), resp.Hits)
	}
	for i, h := range resp.Hits {
		if h.Rank != i+1 {
			t.Errorf("hit %d rank = %d", i, h.Rank)
		}
		if h.ID == "draft" {
			t.Error("draft document suggested")
		}
	}
	if resp.Hits[0].Score != 1 {
		t.Errorf("top score = %f, want 1", resp.Hits[0].Score)
	}
	if resp.DidYouMean != "" {
		t.Errorf("did_you_mean = %q, want empty", resp.DidYouMean)
	}
}

func TestEngine_SuggestTermCompletions(t *testing.T) {
	engine, _ := testEngine(t, selfHosted)
	resp, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "out"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "jacket" {
		t.Errorf("hits = %+v", resp.Hits)
	}
	if len(resp.Terms) != 1 || resp.Terms[0].Term != "Outerwear" {
		t.Errorf("terms = %+v", resp.Terms)
	}

	resp, err = engine.Suggest(context.Background(), &models.SuggestQuery{Text: "out", TermLimit: -1})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Terms) != 0 {
		t.Errorf("negative term limit should disable completions: %+v", resp.Terms)
	}
}

func TestEngine_SuggestStopWordPrefixes(t *testing.T) {
	engine, idx := testEngine(t, selfHosted)
	ctx := context.Background()
	for _, in := range []*models.DocumentInput{
		{ID: "invoice", Title: "Invoice templates"},
		{ID: "overcoat", Title: "Overcoat"},
	} {
		if _, err := idx.IndexDocument(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		text string
		want string
	}{
		{"in", "invoice"},
		{"inv", "invoice"},
		{"over", "overcoat"},
		{"ov", "overcoat"},
	}
	for _, tt := range tests {
		resp, err := engine.Suggest(ctx, &models.SuggestQuery{Text: tt.text, TermLimit: -1})
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Hits) != 1 || resp.Hits[0].ID != tt.want {
			t.Errorf("Suggest(%q) hits = %+v, want %s", tt.text, resp.Hits, tt.want)
		}
	}
}

func TestEngine_SuggestOverrides(t *testing.T) {
	engine, _ := testEngine(t, selfHosted)
	ctx := context.Background()

	resp, err := engine.Suggest(ctx, &models.SuggestQuery{Text: "wire"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 0 {
		t.Errorf("product suggested with default post types: %+v", resp.Hits)
	}

	resp, err = engine.Suggest(ctx, &models.SuggestQuery{Text: "wire", PostTypes: []string{"product"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].PostType != "product" {
		t.Errorf("hits = %+v", resp.Hits)
	}

	resp, err = engine.Suggest(ctx, &models.SuggestQuery{Text: "wint", PostStatus: "draft"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "draft" {
		t.Errorf("draft hits = %+v", resp.Hits)
	}
}

func TestEngine_ConfiguredPostTypes(t *testing.T) {
	settings := selfHosted
	settings.PostTypes = []string{"page"}
	engine, _ := testEngine(t, settings)
	resp, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "wint"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "jacket" {
		t.Errorf("hits = %+v", resp.Hits)
	}
}

func TestEngine_MissingEndpointStillSuggests(t *testing.T) {
	engine, _ := testEngine(t, endpoint.Config{Mode: endpoint.SelfHosted})
	resp, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "wint"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 2 {
		t.Errorf("hits = %+v", resp.Hits)
	}
}

func TestEngine_DidYouMean(t *testing.T) {
	engine, _ := testEngine(t, selfHosted)
	resp, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "wintr"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) != 0 {
		t.Fatalf("hits = %+v", resp.Hits)
	}
	if resp.DidYouMean != "winter" {
		t.Errorf("did_you_mean = %q, want %q", resp.DidYouMean, "winter")
	}
}

func TestEngine_EmptyText(t *testing.T) {
	engine, _ := testEngine(t, selfHosted)
	if _, err := engine.Suggest(context.Background(), &models.SuggestQuery{Text: "   "}); err == nil {
		t.Error("expected error for empty text")
	}
}
