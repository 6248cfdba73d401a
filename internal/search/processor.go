package search

import (
	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/models"
)

// ProcessQuery validates the query and builds the index request: the query's own search
// fields and filters win, the resolved client options fill the rest.
func ProcessQuery(query *models.SuggestQuery, opts endpoint.Resolved) (*keyword.SuggestRequest, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	req := &keyword.SuggestRequest{
		Text:         query.Text,
		SearchFields: firstNonEmpty(query.SearchFields, opts.SearchFields, endpoint.DefaultSearchFields),
		PostTypes:    firstNonEmpty(query.PostTypes, opts.PostTypes, endpoint.DefaultPostTypes),
		PostStatus:   query.PostStatus,
		Limit:        query.Limit,
	}
	if req.PostStatus == "" {
		req.PostStatus = opts.PostStatus
	}
	if req.PostStatus == "" {
		req.PostStatus = endpoint.DefaultPostStatus
	}
	return req, nil
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return append([]string(nil), l...)
		}
	}
	return nil
}
