package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/autosuggest/internal/cli"
	"github.com/hyperjump/autosuggest/internal/config"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/models"
	"go.uber.org/zap"
)

func TestSuggestArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after text are moved first",
			args:     []string{"getting sta", "-limit", "5"},
			expected: []string{"-limit", "5", "getting sta"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-limit", "5", "getting sta"},
			expected: []string{"-limit", "5", "getting sta"},
		},
		{
			name:     "text only returns unchanged",
			args:     []string{"getting sta"},
			expected: []string{"getting sta"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"one", "two", "-post-type", "page"},
			expected: []string{"-post-type", "page", "one", "two"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("suggestArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSuggestText(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"wint"}, "wint"},
		{"multiple words", []string{"getting", "sta"}, "getting sta"},
		{"single quoted phrase", []string{"getting sta"}, "getting sta"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSuggestText(tt.args)
			if got != tt.expected {
				t.Errorf("buildSuggestText(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"post", []string{"post"}},
		{"post, page ,,product", []string{"post", "page", "product"}},
		{" , ", nil},
	}
	for _, tt := range tests {
		got := splitList(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
autosuggest:
  mode: managed
  managed_host: https://search.example.com
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Autosuggest.Mode != "managed" {
		t.Errorf("mode = %q, want managed", cfg.Autosuggest.Mode)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.StorageConfig{
			DatabasePath:   filepath.Join(dir, "documents.db"),
			BleveIndexPath: filepath.Join(dir, "bleve"),
		},
		Autosuggest: config.AutosuggestConfig{
			EndpointURL: "https://example.com/api/v1/suggest",
		},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestInitializeFeature_AugmentsSchema(t *testing.T) {
	cfg := testConfig(t)
	feat, s, err := initializeFeature(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("initializeFeature: %v", err)
	}
	if _, ok := s.Lookup("term_suggest"); !ok {
		t.Error("augmented schema should contain term_suggest")
	}
	resolved, err := feat.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.URL != cfg.Autosuggest.EndpointURL {
		t.Errorf("URL = %q, want %q", resolved.URL, cfg.Autosuggest.EndpointURL)
	}
}

func TestInitializeFeature_RejectsBadBaseSchema(t *testing.T) {
	cfg := testConfig(t)
	cfg.Autosuggest.BaseSchemaPath = filepath.Join(t.TempDir(), "missing.json")
	if _, _, err := initializeFeature(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for missing base schema")
	}
}

func TestInitializeComponents_IndexAndSuggest(t *testing.T) {
	cfg := testConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop(), false)
	if err != nil {
		t.Fatalf("initializeComponents: %v", err)
	}
	defer components.Close()
	ctx := context.Background()
	if _, err := components.Indexer.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	_, err = components.Indexer.IndexDocument(ctx, &models.DocumentInput{
		ID:    "1",
		Title: "Winter Recipes",
		TaxonomyTerms: models.TaxonomyTerms{
			{Name: "category", Terms: []models.Term{{ID: 1, Name: "Winter"}}},
		},
	})
	if err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	q := &models.SuggestQuery{Text: "wint"}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	resp, err := components.Engine.Suggest(ctx, q)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(resp.Hits) != 1 || resp.Hits[0].ID != "1" {
		t.Errorf("hits = %+v, want document 1", resp.Hits)
	}
}

func TestReadDocumentInputs(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "one.json")
	if err := os.WriteFile(single, []byte(`{"id":"a","title":"Alpha"}`), 0600); err != nil {
		t.Fatal(err)
	}
	many := filepath.Join(dir, "many.json")
	if err := os.WriteFile(many, []byte(` [{"title":"Alpha"},{"title":"Beta","post_type":"page"}]`), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := readDocumentInputs(single)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("single = %+v", got)
	}
	got, err = readDocumentInputs(many)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].PostType != "page" {
		t.Errorf("many = %+v", got)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := readDocumentInputs(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestPostJSONAndGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/suggest":
			var q models.SuggestQuery
			if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(models.SuggestResponse{Text: q.Text, Total: 0})
		case "/api/v1/status":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"boom"}`))
		}
	}))
	defer srv.Close()

	var resp models.SuggestResponse
	if err := postJSON(srv.URL+"/api/v1/suggest", &models.SuggestQuery{Text: "wi"}, http.StatusOK, &resp); err != nil {
		t.Fatalf("postJSON: %v", err)
	}
	if resp.Text != "wi" {
		t.Errorf("Text = %q, want wi", resp.Text)
	}

	var status statusResponse
	err := getJSON(srv.URL+"/api/v1/status", &status)
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("getJSON error = %v, want status 500", err)
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(2048)
	status := &statusResponse{
		Documents:        3,
		IndexedDocuments: 3,
		Terms:            7,
		DiskUsageBytes:   &disk,
		Config:           &statusConfigResponse{Mode: "self_hosted", SelectionAction: "navigate", MinGram: 1, MaxGram: 20},
		Feature:          &feature.Status{Code: feature.StatusWarning, Messages: []string{"public endpoint"}},
	}
	var buf bytes.Buffer
	if err := writeStatus(&buf, status, cli.OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"documents:          3", "terms:              7", "disk_usage_bytes:   2048", "mode:               self_hosted", "public endpoint"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := writeStatus(&buf, status, cli.OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded statusResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Terms != 7 || decoded.Feature == nil || decoded.Feature.Code != feature.StatusWarning {
		t.Errorf("decoded = %+v", decoded)
	}
}
