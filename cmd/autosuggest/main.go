// Package main is the autosuggest CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/autosuggest/internal/cli"
	"github.com/hyperjump/autosuggest/internal/config"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/fileid"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/server"
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/watcher"
	"github.com/hyperjump/autosuggest/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/autosuggest/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used.
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "suggest":
		runSuggest()
	case "index":
		runIndex()
	case "delete":
		runDelete()
	case "reindex":
		runReindex()
	case "options":
		runOptions()
	case "schema":
		runSchema()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("autosuggest version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// mustSetup loads the config and creates the logger, exiting on failure.
func mustSetup(configPath string, debugFlag bool) (*config.Config, string, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.Debug = cfg.Debug || debugFlag
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, resolvedPath, logger
}

// mustComponents opens storage and the suggest index and brings them in sync.
func mustComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Components {
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	n, err := components.Indexer.Sync(ctx)
	if err != nil {
		components.Close()
		logger.Fatal("Failed to sync suggest index", zap.Error(err))
	}
	logger.Debug("suggest index synced", zap.Int("documents", n), zap.Int("terms", components.Terms.Len()))
	return components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (directory changes, file indexing, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, logger := mustSetup(*configPath, *debug)
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", cfg.Debug),
		zap.String("mode", cfg.Autosuggest.Mode),
	)

	components := mustComponents(context.Background(), cfg, logger)
	defer components.Close()

	if st := components.Feature.RequirementsStatus(); st.Code != feature.StatusAvailable {
		logger.Warn("autosuggest requirements not met",
			zap.Int("code", st.Code),
			zap.Strings("messages", st.Messages))
	}

	idx := components.Indexer
	watchOpts := []watcher.Option{}
	if cfg.Debug {
		watchOpts = append(watchOpts, watcher.WithLogger(utils.ComponentLogger(logger, "watcher")))
	}
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watchSvc := watcher.New(
		cfg.Watch.Directories,
		cfg.Watch.Extensions,
		cfg.Watch.RecursiveOrDefault(),
		func(root, path string) {
			if _, err := idx.IndexFile(watchCtx, path, root); err != nil {
				logger.Warn("watch index file failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(root, path string) {
			if err := idx.RemoveFile(watchCtx, path); err != nil {
				logger.Warn("watch remove file failed", zap.String("path", path), zap.Error(err))
			}
		},
		watchOpts...,
	)
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExistingFiles()

	srv := server.NewServer(server.Deps{
		Engine:  components.Engine,
		Indexer: components.Indexer,
		Storage: components.Storage,
		Index:   components.Index,
		Terms:   components.Terms,
		Feature: components.Feature,
		Schema:  components.Schema,
	}, &cfg.Server, utils.ComponentLogger(logger, "server"),
		server.WithWatch(watchSvc),
		server.WithConfigFile(resolvedConfigPath, cfg),
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSuggestUsage prints suggest subcommand usage.
func printSuggestUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: autosuggest suggest [flags] <text>\n\n")
	fmt.Fprintf(fs.Output(), "Text is all remaining arguments joined by spaces, as typed into the search box so far.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  autosuggest suggest wint
  autosuggest suggest --post-type post,page --limit 5 "getting sta"
  autosuggest suggest --server "" --output json wint   # read the index directly
`)
}

// buildSuggestText joins all positional args with spaces so multi-word text works the
// same with or without shell quoting.
func buildSuggestText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// suggestArgsReorder moves any flags (and their values) that appear after the text to
// the front of the slice so that flag.Parse() sees them. Go's flag package stops at the
// first non-flag argument, so "autosuggest suggest wint --limit 3" would otherwise leave
// --limit unparsed.
func suggestArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runSuggest() {
	args := suggestArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the index directly when the server is not running)")
	limit := fs.Int("limit", 10, "maximum number of document suggestions")
	termLimit := fs.Int("term-limit", 0, "maximum number of term completions (0 = same as --limit, negative = none)")
	postTypes := fs.String("post-type", "", "comma-separated post types (default from config)")
	fields := fs.String("fields", "", "comma-separated search fields (default from config)")
	postStatus := fs.String("post-status", "", "post status filter (default from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSuggestUsage(fs) }
	_ = fs.Parse(args)

	text := buildSuggestText(fs.Args())
	if text == "" {
		printSuggestUsage(fs)
		os.Exit(1)
	}
	format := cli.ParseOutputFormat(*outputFormat)

	query := &models.SuggestQuery{
		Text:         text,
		Limit:        *limit,
		TermLimit:    *termLimit,
		PostTypes:    splitList(*postTypes),
		SearchFields: splitList(*fields),
		PostStatus:   strings.TrimSpace(*postStatus),
	}

	var response *models.SuggestResponse
	if *serverURL != "" {
		// The server holds the index lock, so go through the HTTP API while it runs.
		var out models.SuggestResponse
		if err := postJSON(*serverURL+"/api/v1/suggest", query, http.StatusOK, &out); err != nil {
			fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
			os.Exit(1)
		}
		response = &out
	} else {
		cfg, _, logger := mustSetup(*configPath, false)
		defer logger.Sync()
		components := mustComponents(context.Background(), cfg, logger)
		defer components.Close()

		if err := query.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid query: %v\n", err)
			os.Exit(1)
		}
		var err error
		response, err = components.Engine.Suggest(context.Background(), query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Suggest failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteSuggestResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// runOptions prints the client options the front-end widget would receive for the
// configured settings.
func runOptions() {
	fs := flag.NewFlagSet("options", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	feat, _, err := initializeFeature(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	resolved, err := feat.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Autosuggest disabled: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteOptions(os.Stdout, resolved, cli.ParseOutputFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// runSchema prints the augmented index schema in index-creation form.
func runSchema() {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	_, augmented, err := initializeFeature(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build schema: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(augmented); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	Mode            string `json:"mode"`
	SelectionAction string `json:"selection_action"`
	DatabasePath    string `json:"database_path,omitempty"`
	BleveIndexPath  string `json:"bleve_index_path,omitempty"`
	MinGram         int    `json:"min_gram,omitempty"`
	MaxGram         int    `json:"max_gram,omitempty"`
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Documents        int64                 `json:"documents"`
	IndexedDocuments uint64                `json:"indexed_documents"`
	Terms            int                   `json:"terms"`
	DiskUsageBytes   *int64                `json:"disk_usage_bytes,omitempty"`
	DiskUsage        *storage.DiskUsage    `json:"disk_usage,omitempty"`
	Config           *statusConfigResponse `json:"config,omitempty"`
	Feature          *feature.Status       `json:"feature,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		var info struct {
			Status feature.Status `json:"status"`
		}
		if err := getJSON(*serverURL+"/api/v1/autosuggest/status", &info); err != nil {
			fmt.Fprintf(os.Stderr, "Feature status failed: %v\n", err)
			os.Exit(1)
		}
		status.Feature = &info.Status
	} else {
		cfg, _, logger := mustSetup(*configPath, false)
		defer logger.Sync()
		ctx := context.Background()
		components := mustComponents(ctx, cfg, logger)
		defer components.Close()

		docCount, err := components.Storage.CountDocuments(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count documents failed: %v\n", err)
			os.Exit(1)
		}
		indexed, err := components.Index.DocCount()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count indexed documents failed: %v\n", err)
			os.Exit(1)
		}
		settings := components.Feature.Settings()
		st := components.Feature.RequirementsStatus()
		status = statusResponse{
			Documents:        docCount,
			IndexedDocuments: indexed,
			Terms:            components.Terms.Len(),
			Config: &statusConfigResponse{
				Mode:            string(settings.Mode),
				SelectionAction: string(settings.SelectionAction),
				DatabasePath:    cfg.Storage.DatabasePath,
				BleveIndexPath:  cfg.Storage.BleveIndexPath,
				MinGram:         cfg.Autosuggest.MinGram,
				MaxGram:         cfg.Autosuggest.MaxGram,
			},
			Feature: &st,
		}
		usage, err := storage.MeasureDiskUsage(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath)
		if err == nil {
			total := usage.Total()
			status.DiskUsageBytes = &total
			status.DiskUsage = &usage
		}
	}

	format := cli.ParseOutputFormat(*outputFormat)
	if err := writeStatus(os.Stdout, &status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func writeStatus(w io.Writer, status *statusResponse, format cli.OutputFormat) error {
	if format == cli.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	fmt.Fprintf(w, "documents:          %d   # stored documents\n", status.Documents)
	fmt.Fprintf(w, "indexed_documents:  %d   # documents in the suggest index\n", status.IndexedDocuments)
	fmt.Fprintf(w, "terms:              %d   # distinct taxonomy terms\n", status.Terms)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # storage + index on disk\n", *status.DiskUsageBytes)
	}
	if u := status.DiskUsage; u != nil {
		fmt.Fprintf(w, "  database_bytes:   %d\n", u.DatabaseBytes)
		fmt.Fprintf(w, "  index_bytes:      %d\n", u.IndexBytes)
	}
	if c := status.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "mode:               %s\n", c.Mode)
		fmt.Fprintf(w, "selection_action:   %s\n", c.SelectionAction)
		if c.MinGram > 0 {
			fmt.Fprintf(w, "min_gram:           %d\n", c.MinGram)
		}
		if c.MaxGram > 0 {
			fmt.Fprintf(w, "max_gram:           %d\n", c.MaxGram)
		}
		if c.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:      %s\n", c.DatabasePath)
		}
		if c.BleveIndexPath != "" {
			fmt.Fprintf(w, "bleve_index_path:   %s\n", c.BleveIndexPath)
		}
	}
	if status.Feature != nil {
		fmt.Fprintln(w)
		return cli.WriteFeatureStatus(w, *status.Feature, cli.OutputText)
	}
	return nil
}

// readDocumentInputs parses a JSON file holding one document or an array of documents.
func readDocumentInputs(path string) ([]*models.DocumentInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var inputs []*models.DocumentInput
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return inputs, nil
	}
	var input models.DocumentInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []*models.DocumentInput{&input}, nil
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	documents := fs.Bool("documents", false, "treat the argument as a JSON file of document inputs instead of content to extract")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: autosuggest index [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	ctx := context.Background()
	components := mustComponents(ctx, cfg, logger)
	defer components.Close()

	if *documents {
		inputs, err := readDocumentInputs(path)
		if err != nil {
			fmt.Printf("Reading documents failed: %v\n", err)
			os.Exit(1)
		}
		for _, input := range inputs {
			if fileid.IsFileDocID(input.ID) {
				fmt.Printf("Skipping %s: id is reserved for watched files\n", input.ID)
				continue
			}
			doc, err := components.Indexer.IndexDocument(ctx, input)
			if err != nil {
				fmt.Printf("Indexing failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Document indexed successfully: %s\n", doc.ID)
		}
		return
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		fmt.Printf("Invalid path: %v\n", err)
		os.Exit(1)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := components.Indexer.IndexDirectory(ctx, absPath)
		if err != nil {
			fmt.Printf("Indexing directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Indexed %d file(s) from %s\n", n, absPath)
		return
	}
	indexed, err := components.Indexer.IndexFile(ctx, absPath, filepath.Dir(absPath))
	if err != nil {
		fmt.Printf("Indexing failed: %v\n", err)
		os.Exit(1)
	}
	docID := fileid.FileDocID(absPath)
	if !indexed {
		fmt.Printf("Document unchanged: %s\n", docID)
		return
	}
	fmt.Printf("Document indexed successfully: %s\n", docID)
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: autosuggest delete [flags] <document-id>")
		os.Exit(1)
	}
	docID := fs.Arg(0)
	if fileid.IsFileDocID(docID) {
		fmt.Println("Document belongs to a watched file; remove the file instead")
		os.Exit(1)
	}

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	components := mustComponents(context.Background(), cfg, logger)
	defer components.Close()

	if err := components.Indexer.DeleteDocument(context.Background(), docID); err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", docID)
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		var out struct {
			Documents int `json:"documents"`
		}
		if err := postJSON(*serverURL+"/api/v1/reindex", nil, http.StatusOK, &out); err != nil {
			fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Reindexed %d document(s)\n", out.Documents)
		return
	}

	cfg, _, logger := mustSetup(*configPath, false)
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	n, err := components.Indexer.Reindex(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed after %d document(s): %v\n", n, err)
		os.Exit(1)
	}
	fmt.Printf("Reindexed %d document(s)\n", n)
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: autosuggest watch <add|remove|list> [path]")
		fmt.Println("  autosuggest watch add <path>     Add directory to watch")
		fmt.Println("  autosuggest watch remove <path>  Remove directory from watch")
		fmt.Println("  autosuggest watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: autosuggest watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body := map[string]interface{}{"path": path, "sync": true}
		if err := postJSON(*serverURL+"/api/v1/watch/directories", body, http.StatusCreated, nil); err != nil {
			fmt.Printf("Add failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: autosuggest watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		if err := decodeResponse(resp, http.StatusOK, nil); err != nil {
			fmt.Printf("Remove failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := getJSON(*serverURL+"/api/v1/watch/directories", &out); err != nil {
			fmt.Printf("List failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func getJSON(target string, out interface{}) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, http.StatusOK, out)
}

// postJSON posts body as JSON (an empty body when nil) and decodes the response into out
// when it is not nil.
func postJSON(target string, body interface{}, want int, out interface{}) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	resp, err := http.Post(target, "application/json", reader)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return decodeResponse(resp, want, out)
}

// decodeResponse closes resp.Body, checks the status code, and decodes the body into out.
func decodeResponse(resp *http.Response, want int, out interface{}) error {
	defer resp.Body.Close()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`autosuggest - Typeahead suggestions for published content

Usage:
  autosuggest server [flags]            Start the HTTP server
  autosuggest suggest [flags] <text>    Suggest documents and terms for partial text
  autosuggest index [flags] <path>      Index a file, a directory, or a JSON document file
  autosuggest delete [flags] <id>       Delete a document
  autosuggest reindex [flags]           Rebuild the suggest index from storage
  autosuggest options [flags]           Show the client options for the front-end widget
  autosuggest schema [flags]            Print the augmented index schema
  autosuggest status [flags]            Show storage, index, and feature status
  autosuggest watch <add|remove|list>   Manage watched directories
  autosuggest version                   Show version
  autosuggest help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/autosuggest/config.yaml)
  --debug            Enable debug logging (directory changes, file indexing, etc.)

Suggest Flags:
  --config string       Config file path (for direct mode)
  --server string       Server URL (default: http://localhost:8080). Use --server "" to read the index directly.
  --limit int           Maximum document suggestions (default: 10)
  --term-limit int      Maximum term completions (0 = same as --limit, negative = none)
  --post-type string    Comma-separated post types (default from config)
  --fields string       Comma-separated search fields (default from config)
  --post-status string  Post status filter (default from config)
  --output string       Output format: text or json (default: text)

Index Flags:
  --config string    Config file path
  --documents        Read the argument as a JSON document (or array of documents)

Options / Schema Flags:
  --config string    Config file path
  --output string    Output format: text or json (options only)

Status / Reindex Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --output string    Output format: text or json (status only)

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  autosuggest server
  autosuggest suggest wint
  autosuggest suggest --output json "getting sta"
  autosuggest index ~/content
  autosuggest index --documents posts.json
  autosuggest options --output json
  autosuggest status
  autosuggest watch add /path/to/content`)
}
