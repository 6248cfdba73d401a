// Package termindex keeps an in-memory prefix dictionary of taxonomy term names, counting
// how many indexed documents carry each term.
package termindex

import (
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/tchap/go-patricia/v2/patricia"
)

type entry struct {
	name  string
	count int
}

// Dictionary is a case-insensitive term dictionary backed by a patricia trie.
type Dictionary struct {
	mu   sync.RWMutex
	trie *patricia.Trie
	size int
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{trie: patricia.NewTrie()}
}

func key(term string) patricia.Prefix {
	return patricia.Prefix(strings.ToLower(strings.TrimSpace(term)))
}

// unique returns the distinct non-blank keys of terms with the first spelling of each.
func unique(terms []string) ([]patricia.Prefix, []string) {
	seen := make(map[string]bool, len(terms))
	keys := make([]patricia.Prefix, 0, len(terms))
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		k := key(t)
		if len(k) == 0 || seen[string(k)] {
			continue
		}
		seen[string(k)] = true
		keys = append(keys, k)
		names = append(names, strings.TrimSpace(t))
	}
	return keys, names
}

// Add counts one more document for each distinct term of one document. The first
// spelling seen is kept for display.
func (d *Dictionary) Add(terms []string) {
	keys, names := unique(terms)
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, k := range keys {
		if item := d.trie.Get(k); item != nil {
			item.(*entry).count++
			continue
		}
		d.trie.Insert(k, &entry{name: names[i], count: 1})
		d.size++
	}
}

// Remove undoes Add for one document, dropping terms that reach zero.
func (d *Dictionary) Remove(terms []string) {
	keys, _ := unique(terms)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range keys {
		item := d.trie.Get(k)
		if item == nil {
			continue
		}
		e := item.(*entry)
		e.count--
		if e.count <= 0 {
			d.trie.Delete(k)
			d.size--
		}
	}
}

// Reset drops every term.
func (d *Dictionary) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trie = patricia.NewTrie()
	d.size = 0
}

// Len returns the number of distinct terms.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// Complete returns up to limit terms starting with prefix, most frequent first and then
// by name. A limit <= 0 returns every match.
func (d *Dictionary) Complete(prefix string, limit int) []models.TermCompletion {
	k := key(prefix)
	if len(k) == 0 {
		return nil
	}

	d.mu.RLock()
	var out []models.TermCompletion
	_ = d.trie.VisitSubtree(k, func(_ patricia.Prefix, item patricia.Item) error {
		e := item.(*entry)
		out = append(out, models.TermCompletion{Term: e.name, Count: e.count})
		return nil
	})
	d.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Term) < strings.ToLower(out[j].Term)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
