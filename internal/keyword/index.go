// Package keyword provides the typeahead suggest index and query-time spelling corrections.
package keyword

import (
	"context"
)

// SuggestRequest is a resolved typeahead query: the typed text plus the fields and filters
// the client options name.
type SuggestRequest struct {
	Text         string
	SearchFields []string
	PostTypes    []string
	PostStatus   string
	Limit        int
}

// Hit is a single suggest hit.
type Hit struct {
	ID       string
	Title    string
	PostType string
	Score    float64
}

// SuggestIndex defines suggest index operations.
type SuggestIndex interface {
	Index(ctx context.Context, id string, payload map[string]interface{}) error
	Suggest(ctx context.Context, req *SuggestRequest) ([]*Hit, uint64, error)
	Delete(ctx context.Context, id string) error
	Close() error
	// DocCount returns the total number of documents in the index.
	DocCount() (uint64, error)
	// NeedsReindex reports whether the index was created or rebuilt on open, so stored
	// documents must be indexed again.
	NeedsReindex() bool
}

// TermSource provides the whole-word dictionary used for spelling corrections.
type TermSource interface {
	// TermFrequencies returns every indexed word with its document frequency.
	TermFrequencies() (map[string]int, error)
	// Generation changes whenever the indexed content changes.
	Generation() uint64
}
