// Package models defines core data structures for documents, suggest queries, and suggest results.
package models

import "time"

// Document represents a stored content item with its taxonomy associations.
type Document struct {
	ID            string                 `json:"id" db:"id"`
	Title         string                 `json:"title" db:"title"`
	Content       string                 `json:"content" db:"content"`
	PostType      string                 `json:"post_type" db:"post_type"`
	PostStatus    string                 `json:"post_status" db:"post_status"`
	Fields        map[string]interface{} `json:"fields,omitempty" db:"fields"`
	TaxonomyTerms TaxonomyTerms          `json:"taxonomy_terms,omitempty" db:"taxonomy_terms"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for creating or updating a document.
type DocumentInput struct {
	ID            string                 `json:"id,omitempty" yaml:"id"`
	Title         string                 `json:"title,omitempty" yaml:"title"`
	Content       string                 `json:"content" yaml:"content"`
	PostType      string                 `json:"post_type,omitempty" yaml:"post_type"`
	PostStatus    string                 `json:"post_status,omitempty" yaml:"post_status"`
	Fields        map[string]interface{} `json:"fields,omitempty" yaml:"fields"`
	TaxonomyTerms TaxonomyTerms          `json:"taxonomy_terms,omitempty" yaml:"taxonomy_terms"`
}

const (
	// DefaultPostType is used when a document does not declare a post type.
	DefaultPostType = "post"
	// DefaultPostStatus is used when a document does not declare a post status.
	DefaultPostStatus = "published"
)
