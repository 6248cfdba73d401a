package models

import (
	"testing"
)

func TestSuggestQuery_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     *SuggestQuery
		wantErr   bool
		wantLimit int
		wantTerms int
	}{
		{"empty text", &SuggestQuery{Text: ""}, true, 0, 0},
		{"whitespace text", &SuggestQuery{Text: "   "}, true, 0, 0},
		{"sets default limit", &SuggestQuery{Text: "ap"}, false, 10, 10},
		{"caps limit at 100", &SuggestQuery{Text: "ap", Limit: 500}, false, 100, 100},
		{"keeps term limit", &SuggestQuery{Text: "ap", Limit: 5, TermLimit: 3}, false, 5, 3},
		{"negative term limit disables terms", &SuggestQuery{Text: "ap", TermLimit: -1}, false, 10, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.query.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.query.Limit, tt.wantLimit)
			}
			if tt.query.TermLimit != tt.wantTerms {
				t.Errorf("TermLimit = %d, want %d", tt.query.TermLimit, tt.wantTerms)
			}
		})
	}
}

func TestSuggestQuery_ValidateTrimsText(t *testing.T) {
	q := &SuggestQuery{Text: "  appl "}
	if err := q.Validate(); err != nil {
		t.Fatal(err)
	}
	if q.Text != "appl" {
		t.Errorf("Text = %q, want %q", q.Text, "appl")
	}
}
