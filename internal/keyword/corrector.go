package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Correction is a dictionary word close to a typed word.
type Correction struct {
	Term      string  `json:"term"`
	Distance  int     `json:"distance"`
	Frequency int     `json:"frequency"`
	Score     float64 `json:"score"`
}

// CheckResult is the outcome of checking typed text against the dictionary.
type CheckResult struct {
	Text           string
	CorrectedText  string
	Corrections    []Correction
	HasCorrections bool
	Misspelled     []string
}

// Corrector proposes "did you mean" text when a typeahead query finds nothing.
type Corrector struct {
	source         TermSource
	maxDistance    int
	minFreq        int
	maxCorrections int
	minWordLen     int

	mu         sync.RWMutex
	terms      map[string]int
	generation uint64
	loaded     bool
}

// CorrectorOption configures a Corrector.
type CorrectorOption func(*Corrector)

// WithMaxDistance sets the maximum edit distance of a correction.
func WithMaxDistance(d int) CorrectorOption {
	return func(c *Corrector) {
		if d > 0 {
			c.maxDistance = d
		}
	}
}

// WithMinFrequency ignores dictionary words found in fewer documents.
func WithMinFrequency(f int) CorrectorOption {
	return func(c *Corrector) {
		if f >= 0 {
			c.minFreq = f
		}
	}
}

// WithMaxCorrections sets how many corrections are returned per word.
func WithMaxCorrections(n int) CorrectorOption {
	return func(c *Corrector) {
		if n > 0 {
			c.maxCorrections = n
		}
	}
}

// NewCorrector creates a corrector over source.
func NewCorrector(source TermSource, opts ...CorrectorOption) *Corrector {
	c := &Corrector{
		source:         source,
		maxDistance:    2,
		minFreq:        1,
		maxCorrections: 5,
		minWordLen:     3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// refresh reloads the dictionary when the source changed since the last load.
func (c *Corrector) refresh() error {
	gen := c.source.Generation()
	c.mu.RLock()
	fresh := c.loaded && c.generation == gen
	c.mu.RUnlock()
	if fresh {
		return nil
	}
	terms, err := c.source.TermFrequencies()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.terms = terms
	c.generation = gen
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Check corrects every word of text that is not in the dictionary. The last word is
// still being typed, so it counts as known when it prefixes a dictionary word.
func (c *Corrector) Check(text string) (*CheckResult, error) {
	if err := c.refresh(); err != nil {
		return nil, err
	}
	words := tokenize(text)
	result := &CheckResult{Text: text}
	corrected := make([]string, 0, len(words))
	for i, w := range words {
		if c.known(w, i == len(words)-1) || len([]rune(w)) < c.minWordLen {
			corrected = append(corrected, w)
			continue
		}
		cs := c.Suggest(w)
		if len(cs) == 0 {
			corrected = append(corrected, w)
			continue
		}
		result.HasCorrections = true
		result.Misspelled = append(result.Misspelled, w)
		result.Corrections = append(result.Corrections, cs...)
		corrected = append(corrected, cs[0].Term)
	}
	result.CorrectedText = strings.Join(corrected, " ")
	return result, nil
}

func (c *Corrector) known(word string, partial bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.terms[word]; ok {
		return true
	}
	if !partial {
		return false
	}
	for t := range c.terms {
		if strings.HasPrefix(t, word) {
			return true
		}
	}
	return false
}

// Suggest returns dictionary words within the maximum edit distance of word, best first.
// Score favors close words, then frequent ones.
func (c *Corrector) Suggest(word string) []Correction {
	if err := c.refresh(); err != nil {
		return nil
	}
	word = strings.ToLower(word)
	n := len([]rune(word))

	c.mu.RLock()
	var out []Correction
	for term, freq := range c.terms {
		if term == word || freq < c.minFreq {
			continue
		}
		diff := len([]rune(term)) - n
		if diff < 0 {
			diff = -diff
		}
		if diff > c.maxDistance {
			continue
		}
		d := DamerauLevenshteinDistance(word, term)
		if d > c.maxDistance {
			continue
		}
		out = append(out, Correction{
			Term:      term,
			Distance:  d,
			Frequency: freq,
			Score:     float64(freq) / float64(d+1),
		})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > c.maxCorrections {
		out = out[:c.maxCorrections]
	}
	return out
}

// SuggestedText returns the corrected text, or "" when nothing needed correcting.
func (c *Corrector) SuggestedText(text string) string {
	result, err := c.Check(text)
	if err != nil || !result.HasCorrections {
		return ""
	}
	return result.CorrectedText
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r == '\'' || r == '-' || isWordRune(r))
	})
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127
}
