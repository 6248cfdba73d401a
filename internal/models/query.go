package models

import (
	"fmt"
	"strings"
)

// SuggestQuery is a typeahead request: the text typed so far plus optional overrides
// of the resolved client options.
type SuggestQuery struct {
	Text         string   `json:"text"`
	Limit        int      `json:"limit,omitempty"`
	SearchFields []string `json:"search_fields,omitempty"`
	PostTypes    []string `json:"post_type,omitempty"`
	PostStatus   string   `json:"post_status,omitempty"`
	// TermLimit caps term completions; 0 uses Limit, negative disables them.
	TermLimit int `json:"term_limit,omitempty"`
}

// Validate ensures the query has text and normalizes the limits.
func (q *SuggestQuery) Validate() error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if q.TermLimit == 0 {
		q.TermLimit = q.Limit
	}
	if q.TermLimit > 100 {
		q.TermLimit = 100
	}
	return nil
}
