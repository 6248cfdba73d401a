// Package search answers typeahead queries: document hits from the suggest index next to
// completions from the term dictionary.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/metrics"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/termindex"
	"go.uber.org/zap"
)

// Engine runs typeahead queries.
type Engine struct {
	index     keyword.SuggestIndex
	terms     *termindex.Dictionary
	feature   *feature.Feature
	corrector *keyword.Corrector
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCorrector enables "did you mean" text for queries that match nothing.
func WithCorrector(c *keyword.Corrector) Option {
	return func(e *Engine) { e.corrector = c }
}

// NewEngine creates a suggest engine. feat may be nil, in which case only the built-in
// client option defaults apply.
func NewEngine(index keyword.SuggestIndex, terms *termindex.Dictionary, feat *feature.Feature, opts ...Option) *Engine {
	e := &Engine{
		index:   index,
		terms:   terms,
		feature: feat,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// options returns the resolved client options. A missing endpoint only disables the
// front-end widget; the service's own suggest endpoint keeps the configured fields.
func (e *Engine) options() endpoint.Resolved {
	if e.feature == nil {
		return endpoint.Resolved{}
	}
	r, err := e.feature.Resolve()
	if err != nil {
		s := e.feature.Settings()
		return endpoint.Resolved{SearchFields: s.SearchFields, PostTypes: s.PostTypes, PostStatus: s.PostStatus}
	}
	return r
}

// Suggest runs the query against the suggest index and the term dictionary concurrently.
func (e *Engine) Suggest(ctx context.Context, query *models.SuggestQuery) (*models.SuggestResponse, error) {
	startTime := time.Now()
	req, err := ProcessQuery(query, e.options())
	if err != nil {
		return nil, err
	}

	var (
		hits    []*keyword.Hit
		total   uint64
		terms   []models.TermCompletion
		errChan = make(chan error, 1)
		wg      sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results, n, err := e.index.Suggest(ctx, req)
		if err != nil {
			errChan <- fmt.Errorf("suggest query failed: %w", err)
			return
		}
		hits, total = results, n
	}()

	if query.TermLimit > 0 && e.terms != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			terms = e.terms.Complete(query.Text, query.TermLimit)
		}()
	}

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			metrics.SuggestRequestsTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	response := &models.SuggestResponse{
		Text:  query.Text,
		Hits:  Rank(hits),
		Total: int(total),
	}
	for i := range terms {
		response.Terms = append(response.Terms, &terms[i])
	}
	if len(response.Hits) == 0 && len(response.Terms) == 0 && e.corrector != nil {
		response.DidYouMean = e.corrector.SuggestedText(query.Text)
	}
	response.QueryTime = time.Since(startTime).Milliseconds()

	result := "hit"
	if len(response.Hits) == 0 {
		result = "empty"
	}
	metrics.SuggestRequestsTotal.WithLabelValues(result).Inc()
	metrics.SuggestDuration.Observe(time.Since(startTime).Seconds())
	e.logger.Debug("suggest",
		zap.String("text", query.Text),
		zap.Int("hits", len(response.Hits)),
		zap.Int("terms", len(response.Terms)),
		zap.String("did_you_mean", response.DidYouMean))
	return response, nil
}
