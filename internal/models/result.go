package models

// SuggestHit is a single document suggestion.
type SuggestHit struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	PostType string  `json:"post_type,omitempty"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// TermCompletion is a taxonomy term whose name starts with the typed text.
type TermCompletion struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// SuggestResponse is the response for a suggest request.
type SuggestResponse struct {
	Text  string            `json:"text"`
	Hits  []*SuggestHit     `json:"hits"`
	Terms []*TermCompletion `json:"terms,omitempty"`
	// DidYouMean is a spelling-corrected text, set only when nothing matched.
	DidYouMean string `json:"did_you_mean,omitempty"`
	Total      int    `json:"total"`
	QueryTime  int64  `json:"query_time_ms"`
}
