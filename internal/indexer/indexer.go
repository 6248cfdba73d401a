// Package indexer runs the indexing pipeline: documents are stored, get their suggestion
// tokens merged into the index payload, and are written to the suggest index and the
// term dictionary.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hyperjump/autosuggest/internal/extract"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/fileid"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/metrics"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/storage"
	"github.com/hyperjump/autosuggest/internal/suggest"
	"github.com/hyperjump/autosuggest/internal/termindex"
	"go.uber.org/zap"
)

// FolderTaxonomy holds the directory names between a watch root and a content file.
const FolderTaxonomy = "folder"

// reindexPageSize is the number of stored documents read per page while reindexing.
const reindexPageSize = 200

const (
	fieldSourcePath  = "source_path"
	fieldSourceMtime = "source_mtime"
	fieldSourceSize  = "source_size"
)

// Indexer writes documents to storage, the suggest index and the term dictionary.
type Indexer struct {
	storage    storage.Storage
	index      keyword.SuggestIndex
	terms      *termindex.Dictionary
	feature    *feature.Feature
	extractor  *extract.Extractor
	extensions []string
	logger     *zap.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets a logger for debug output (file indexed, document deleted, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithExtensions restricts IndexFile and IndexDirectory to the given extensions.
// Without it every extension the extractor supports is accepted.
func WithExtensions(exts []string) Option {
	return func(idx *Indexer) { idx.extensions = append([]string(nil), exts...) }
}

// New creates an indexer. extractor may be nil, in which case a default one is used.
func New(
	store storage.Storage,
	index keyword.SuggestIndex,
	terms *termindex.Dictionary,
	feat *feature.Feature,
	extractor *extract.Extractor,
	opts ...Option,
) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		storage:    store,
		index:      index,
		terms:      terms,
		feature:    feat,
		extractor:  extractor,
		extensions: extract.Extensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexDocument stores the document and indexes it with its term suggestions. A document
// without an id gets a new UUID; an existing id is replaced.
func (idx *Indexer) IndexDocument(ctx context.Context, input *models.DocumentInput) (*models.Document, error) {
	if input == nil {
		return nil, errors.New("document input is nil")
	}
	doc := &models.Document{
		ID:            strings.TrimSpace(input.ID),
		Title:         Preprocess(input.Title),
		Content:       Preprocess(input.Content),
		PostType:      strings.TrimSpace(input.PostType),
		PostStatus:    strings.TrimSpace(input.PostStatus),
		Fields:        input.Fields,
		TaxonomyTerms: preprocessTerms(input.TaxonomyTerms),
	}
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.PostType == "" {
		doc.PostType = models.DefaultPostType
	}
	if doc.PostStatus == "" {
		doc.PostStatus = models.DefaultPostStatus
	}

	prev, err := idx.storage.GetDocument(ctx, doc.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if err := idx.storage.UpsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	tokens, err := idx.indexPayload(ctx, doc)
	if err != nil {
		idx.restore(ctx, doc.ID, prev)
		return nil, err
	}
	if prev != nil {
		idx.terms.Remove(suggest.ExtractSuggestions(prev))
	}
	idx.terms.Add(tokens)

	metrics.ObserveIndexed(doc.PostType, len(tokens))
	idx.logger.Debug("indexer document indexed",
		zap.String("id", doc.ID),
		zap.Int("term_suggest", len(tokens)),
		zap.Bool("replaced", prev != nil))
	return doc, nil
}

// restore puts storage back to prev after the suggest index rejected a write, so storage,
// the index and the term dictionary keep describing the same version.
func (idx *Indexer) restore(ctx context.Context, id string, prev *models.Document) {
	var err error
	if prev != nil {
		err = idx.storage.UpsertDocument(ctx, prev)
	} else {
		err = idx.storage.DeleteDocument(ctx, id)
	}
	if err != nil {
		idx.logger.Error("storage diverged from suggest index; run reindex",
			zap.String("id", id),
			zap.Bool("replaced", prev != nil),
			zap.Error(err))
	}
}

// indexPayload writes doc to the suggest index and returns the suggestion tokens merged
// into its payload.
func (idx *Indexer) indexPayload(ctx context.Context, doc *models.Document) (suggest.SuggestionSet, error) {
	payload := suggest.BasePayload(doc)
	var tokens suggest.SuggestionSet
	if idx.feature != nil {
		tokens = idx.feature.SyncArgs(payload, doc)
	} else {
		tokens = suggest.ApplyTermSuggest(payload, doc)
	}
	if err := idx.index.Index(ctx, doc.ID, payload); err != nil {
		return nil, fmt.Errorf("failed to index document: %w", err)
	}
	return tokens, nil
}

// DeleteDocument removes a document from the suggest index, the term dictionary and
// storage. It returns a wrapped storage.ErrNotFound when the document does not exist.
func (idx *Indexer) DeleteDocument(ctx context.Context, id string) error {
	idx.logger.Debug("indexer deleting document", zap.String("id", id))
	doc, err := idx.storage.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := idx.index.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete from suggest index: %w", err)
	}
	if err := idx.storage.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	idx.terms.Remove(suggest.ExtractSuggestions(doc))
	metrics.DocumentsDeletedTotal.Inc()
	idx.logger.Debug("indexer document deleted", zap.String("id", id))
	return nil
}

// Reindex writes every stored document to the suggest index again and rebuilds the term
// dictionary. It returns the number of documents indexed.
func (idx *Indexer) Reindex(ctx context.Context) (int, error) {
	idx.terms.Reset()
	n, err := idx.eachDocument(ctx, func(doc *models.Document) error {
		tokens, err := idx.indexPayload(ctx, doc)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}
		idx.terms.Add(tokens)
		return nil
	})
	if err != nil {
		return n, err
	}
	idx.logger.Info("reindex complete", zap.Int("documents", n))
	return n, nil
}

// Sync prepares the indexes after startup: a suggest index that was created or rebuilt
// on open is reindexed from storage, otherwise only the in-memory term dictionary is
// rebuilt. It returns the number of stored documents visited.
func (idx *Indexer) Sync(ctx context.Context) (int, error) {
	if idx.index.NeedsReindex() {
		idx.logger.Info("suggest index is new or its mapping changed, reindexing")
		return idx.Reindex(ctx)
	}
	idx.terms.Reset()
	return idx.eachDocument(ctx, func(doc *models.Document) error {
		idx.terms.Add(suggest.ExtractSuggestions(doc))
		return nil
	})
}

func (idx *Indexer) eachDocument(ctx context.Context, fn func(*models.Document) error) (int, error) {
	n := 0
	for offset := 0; ; offset += reindexPageSize {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		docs, err := idx.storage.ListDocuments(ctx, offset, reindexPageSize)
		if err != nil {
			return n, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, doc := range docs {
			if err := fn(doc); err != nil {
				return n, err
			}
			n++
		}
		if len(docs) < reindexPageSize {
			return n, nil
		}
	}
}

// IndexFile extracts the file at path and indexes it. The document ID is derived from
// the absolute path so re-indexing updates the same document. When root is set, the
// directories between root and the file become the folder taxonomy. Unchanged files
// (same mtime and size as when last indexed) are skipped; indexed reports whether the
// file was written.
func (idx *Indexer) IndexFile(ctx context.Context, path, root string) (indexed bool, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("absolute path: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(absPath))
	if !extensionAllowed(ext, idx.extensions) {
		return false, fmt.Errorf("extension %q not in allowed list", ext)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, fmt.Errorf("not a regular file: %s", absPath)
	}

	docID := fileid.FileDocID(absPath)
	if idx.unchanged(ctx, absPath, docID, info) {
		idx.logger.Debug("indexer skipping unchanged file", zap.String("path", absPath))
		return false, nil
	}

	input, err := idx.extractor.Extract(absPath)
	if err != nil {
		return false, fmt.Errorf("extract content: %w", err)
	}
	input.ID = docID
	if root != "" && input.TaxonomyTerms.Get(FolderTaxonomy) == nil {
		if terms := folderTerms(root, absPath); len(terms) > 0 {
			input.TaxonomyTerms = input.TaxonomyTerms.Set(FolderTaxonomy, terms)
		}
	}
	if input.Fields == nil {
		input.Fields = make(map[string]interface{}, 3)
	}
	// mtime and size are strings: UnixNano exceeds the float64 precision of JSON numbers.
	input.Fields[fieldSourcePath] = absPath
	input.Fields[fieldSourceMtime] = strconv.FormatInt(info.ModTime().UnixNano(), 10)
	input.Fields[fieldSourceSize] = strconv.FormatInt(info.Size(), 10)

	if _, err := idx.IndexDocument(ctx, input); err != nil {
		return false, err
	}
	idx.logger.Debug("indexer file indexed", zap.String("path", absPath), zap.String("doc_id", docID))
	return true, nil
}

// RemoveFile deletes the document of a removed content file. A file that was never
// indexed is not an error.
func (idx *Indexer) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	err = idx.DeleteDocument(ctx, fileid.FileDocID(absPath))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// unchanged reports whether the file is already indexed with the same mtime and size.
func (idx *Indexer) unchanged(ctx context.Context, absPath, docID string, info os.FileInfo) bool {
	doc, err := idx.storage.GetDocument(ctx, docID)
	if err != nil || doc.Fields == nil {
		return false
	}
	if doc.Fields[fieldSourcePath] != absPath {
		return false
	}
	return fieldInt64(doc.Fields, fieldSourceMtime) == info.ModTime().UnixNano() &&
		fieldInt64(doc.Fields, fieldSourceSize) == info.Size()
}

func fieldInt64(m map[string]interface{}, key string) int64 {
	switch n := m[key].(type) {
	case string:
		x, _ := strconv.ParseInt(n, 10, 64)
		return x
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// folderTerms returns one term per directory between root and path.
func folderTerms(root, path string) []models.Term {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	terms := make([]models.Term, 0, len(parts))
	for i, p := range parts {
		name := extract.TitleFromFileName(p + ".dir")
		if name == "" {
			continue
		}
		terms = append(terms, models.Term{ID: int64(i + 1), Name: name})
	}
	return terms
}

// IndexDirectory walks dir recursively and indexes each regular file with an allowed
// extension, using dir as the folder taxonomy root. Returns the number of files indexed
// (unchanged files are not counted) and the first error encountered, if any.
func (idx *Indexer) IndexDirectory(ctx context.Context, dir string) (n int, err error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !extensionAllowed(filepath.Ext(path), idx.extensions) {
			return nil
		}
		// Resolve symlinks so we only index regular files
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		indexed, indexErr := idx.IndexFile(ctx, path, absDir)
		if indexErr != nil {
			return fmt.Errorf("%s: %w", path, indexErr)
		}
		if indexed {
			n++
		}
		return nil
	})
	return n, err
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	if extNorm == "" {
		return false
	}
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
