package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/autosuggest/internal/config"
	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/extract"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/fileid"
	"github.com/hyperjump/autosuggest/internal/indexer"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/schema"
	"github.com/hyperjump/autosuggest/internal/search"
	"github.com/hyperjump/autosuggest/internal/server"
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/termindex"
)

const (
	e2eSuggestLimit = 30
	e2eCorpusSize   = 100
	e2eFileCount    = 50
)

var e2eSettings = endpoint.Config{
	Mode:                  endpoint.SelfHosted,
	SelfHostedEndpointURL: "https://example.com/api/v1/suggest",
}

func newDeps(t *testing.T, dir string) server.Deps {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "db.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	feat := feature.New(e2eSettings)
	s, err := feat.Mapping(schema.DefaultSchema())
	if err != nil {
		t.Fatal(err)
	}
	index, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"), s, schema.BleveOptions{MinGram: 1, MaxGram: 20})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = index.Close() })

	terms := termindex.New()
	return server.Deps{
		Engine:  search.NewEngine(index, terms, feat, search.WithCorrector(keyword.NewCorrector(index))),
		Indexer: indexer.New(store, index, terms, feat, extract.NewExtractor()),
		Storage: store,
		Index:   index,
		Terms:   terms,
		Feature: feat,
		Schema:  s,
	}
}

func TestE2E_SuggestReturnsCorrectResults(t *testing.T) {
	deps := newDeps(t, t.TempDir())
	ctx := context.Background()

	corpus := BuildCorpus(e2eCorpusSize)
	for _, input := range corpus.ToDocumentInputs() {
		if _, err := deps.Indexer.IndexDocument(ctx, input); err != nil {
			t.Fatalf("index document %q: %v", input.ID, err)
		}
	}
	t.Logf("indexed %d documents; running %d typeahead cases", corpus.TotalDocs, corpus.TotalQueries)

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			q := &models.SuggestQuery{Text: tc.Text, Limit: e2eSuggestLimit}
			if err := q.Validate(); err != nil {
				t.Fatal(err)
			}
			resp, err := deps.Engine.Suggest(ctx, q)
			if err != nil {
				t.Fatalf("suggest failed: %v", err)
			}
			checkCase(t, tc, resp, nil)
		})
	}
}

// TestE2E_FileIndexingThroughServer indexes files of every supported type, filed in one
// folder per category, and runs the typeahead cases through the HTTP API. Document ids
// are derived from file paths and category terms from folder names.
func TestE2E_FileIndexingThroughServer(t *testing.T) {
	dir := t.TempDir()
	docDir := filepath.Join(dir, "content")

	corpus := BuildCorpus(e2eFileCount)
	fileIDs := make(map[string]string)
	exts := SupportedFileExtensions
	for i, d := range corpus.Documents {
		catDir := filepath.Join(docDir, FileSlug(d.Category))
		if err := os.MkdirAll(catDir, 0755); err != nil {
			t.Fatal(err)
		}
		ext := exts[i%len(exts)]
		path := filepath.Join(catDir, FileSlug(d.Title)+ext)
		content, err := WriteMinimalFile(ext, d.Title, d.Content)
		if err != nil {
			t.Fatalf("write minimal file %s: %v", path, err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("write file %s: %v", path, err)
		}
		absPath, _ := filepath.Abs(path)
		fileIDs[d.ID] = fileid.FileDocID(absPath)
	}

	deps := newDeps(t, dir)
	n, err := deps.Indexer.IndexDirectory(context.Background(), docDir)
	if err != nil {
		t.Fatalf("IndexDirectory: %v", err)
	}
	if n != corpus.TotalDocs {
		t.Fatalf("indexed %d files, want %d", n, corpus.TotalDocs)
	}

	srv := httptest.NewServer(server.NewServer(deps, &config.ServerConfig{}, nil).Router())
	defer srv.Close()

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			body, _ := json.Marshal(models.SuggestQuery{Text: tc.Text, Limit: e2eSuggestLimit})
			resp, err := http.Post(srv.URL+"/api/v1/suggest", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var out models.SuggestResponse
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				t.Fatal(err)
			}
			checkCase(t, tc, &out, fileIDs)
		})
	}
}

// checkCase asserts one typeahead case. ids maps corpus ids to indexed ids when they differ.
func checkCase(t *testing.T, tc SuggestTestCase, resp *models.SuggestResponse, ids map[string]string) {
	t.Helper()
	if len(tc.ExpectedDocIDs) > 0 {
		expected := make([]string, 0, len(tc.ExpectedDocIDs))
		for _, id := range tc.ExpectedDocIDs {
			if mapped, ok := ids[id]; ok {
				id = mapped
			}
			expected = append(expected, id)
		}
		got := make([]string, 0, len(resp.Hits))
		for _, h := range resp.Hits {
			got = append(got, h.ID)
		}
		if !containsAny(got, expected) {
			t.Errorf("text %q: expected at least one of %v in hits, got %v", tc.Text, expected, got)
		}
	}
	if tc.ExpectedTerm != "" {
		found := false
		for _, term := range resp.Terms {
			if strings.EqualFold(term.Term, tc.ExpectedTerm) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("text %q: expected term %q, got %+v", tc.Text, tc.ExpectedTerm, resp.Terms)
		}
	}
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, id := range got {
		set[id] = true
	}
	for _, id := range expected {
		if set[id] {
			return true
		}
	}
	return false
}
