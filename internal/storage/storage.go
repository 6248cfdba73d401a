// Package storage defines the persistence interface for source documents.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/autosuggest/internal/models"
)

// ErrNotFound is returned (wrapped) when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Storage defines document persistence operations. The store is the source of truth the
// suggest index is rebuilt from.
type Storage interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, doc *models.Document) error
	// UpsertDocument creates the document or replaces an existing one, keeping its
	// creation time.
	UpsertDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error)

	// Stats
	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
