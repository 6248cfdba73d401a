package metrics

import "github.com/prometheus/client_golang/prometheus"

// Suggest pipeline metrics.
var (
	DocumentsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Documents written to the suggest index",
		},
		[]string{"post_type"},
	)

	DocumentsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_deleted_total",
			Help:      "Documents removed from the suggest index",
		},
	)

	SuggestionTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_suggestion_tokens",
			Help:      "term_suggest tokens per indexed document",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	SuggestRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggest_requests_total",
			Help:      "Typeahead queries by outcome",
		},
		[]string{"result"}, // "hit" / "empty" / "error"
	)

	SuggestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggest_duration_seconds",
			Help:      "Typeahead query duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	EndpointResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "endpoint_resolutions_total",
			Help:      "Client option resolutions by mode and result",
		},
		[]string{"mode", "result"}, // result: "ok" / "missing" / "error"
	)
)

func init() {
	prometheus.MustRegister(
		DocumentsIndexedTotal,
		DocumentsDeletedTotal,
		SuggestionTokens,
		SuggestRequestsTotal,
		SuggestDuration,
		EndpointResolutionsTotal,
	)
}

// ObserveIndexed records one indexed document and its suggestion count.
func ObserveIndexed(postType string, tokens int) {
	DocumentsIndexedTotal.WithLabelValues(postType).Inc()
	SuggestionTokens.Observe(float64(tokens))
}
