package benchmark

import (
	"context"
	"fmt"
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
	"github.com/hyperjump/autosuggest/internal/suggest"
	"github.com/hyperjump/autosuggest/internal/termindex"
)

func BenchmarkRank(b *testing.B) {
	hits := make([]*keyword.Hit, 100)
	for i := range hits {
		hits[i] = &keyword.Hit{ID: fmt.Sprintf("doc-%d", i), Title: fmt.Sprintf("Title %d", i), Score: float64(i%17) / 3}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = search.Rank(hits)
	}
}

func BenchmarkTermComplete(b *testing.B) {
	d := termindex.New()
	for i := 0; i < 10000; i++ {
		d.Add([]string{fmt.Sprintf("term %d", i), fmt.Sprintf("tag-%d", i%100)})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.Complete("term 1", 10)
	}
}

func BenchmarkExtractSuggestions(b *testing.B) {
	doc := &models.Document{
		ID:    "1",
		Title: "Winter boots",
		TaxonomyTerms: models.TaxonomyTerms{
			{Name: "category", Terms: []models.Term{{ID: 1, Name: "Footwear"}, {ID: 2, Name: "Winter"}}},
			{Name: "post_tag", Terms: []models.Term{{ID: 3, Name: "Waterproof"}, {ID: 4, Name: "Leather"}}},
		},
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = suggest.ExtractSuggestions(doc)
	}
}

func BenchmarkEngineSuggest(b *testing.B) {
	dir := b.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	feat := feature.New(endpoint.Config{Mode: endpoint.SelfHosted, SelfHostedEndpointURL: "https://example.com/suggest"})
	s, err := feat.Mapping(schema.DefaultSchema())
	if err != nil {
		b.Fatal(err)
	}
	index, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"), s, schema.BleveOptions{})
	if err != nil {
		b.Fatal(err)
	}
	defer index.Close()
	terms := termindex.New()
	idx := indexer.New(store, index, terms, feat, nil)
	ctx := context.Background()
	words := []string{"winter", "summer", "wireless", "window", "wild", "water"}
	for i := 0; i < 500; i++ {
		in := &models.DocumentInput{
			ID:    fmt.Sprintf("doc-%d", i),
			Title: fmt.Sprintf("%s item %d", words[i%len(words)], i),
			TaxonomyTerms: models.TaxonomyTerms{
				{Name: "category", Terms: []models.Term{{ID: int64(i % 20), Name: fmt.Sprintf("%s collection", words[i%len(words)])}}},
			},
		}
		if _, err := idx.IndexDocument(ctx, in); err != nil {
			b.Fatal(err)
		}
	}
	engine := search.NewEngine(index, terms, feat)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := &models.SuggestQuery{Text: "wi"}
		_ = q.Validate()
		if _, err := engine.Suggest(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}
