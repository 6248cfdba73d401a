package search

import (
	"sort"

	"github.com/hyperjump/autosuggest/internal/keyword"
	"github.com/hyperjump/autosuggest/internal/models"
)

// Rank turns index hits into suggest hits: scores normalized to [0,1] by the best hit,
// sorted by score then title, ranks starting at 1.
func Rank(hits []*keyword.Hit) []*models.SuggestHit {
	out := make([]*models.SuggestHit, 0, len(hits))
	if len(hits) == 0 {
		return out
	}
	maxScore := hits[0].Score
	for _, h := range hits {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}
	for _, h := range hits {
		score := 0.0
		if maxScore > 0 {
			score = h.Score / maxScore
		}
		out = append(out, &models.SuggestHit{
			ID:       h.ID,
			Title:    h.Title,
			PostType: h.PostType,
			Score:    score,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Title < out[j].Title
	})
	for i, h := range out {
		h.Rank = i + 1
	}
	return out
}
