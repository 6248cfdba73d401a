// Package e2e provides end-to-end tests with a generated corpus and typeahead cases.
package e2e

import (
	"fmt"
	"strings"

	"github.com/hyperjump/autosuggest/internal/models"
)

// CategoryTaxonomy is the taxonomy corpus documents file their category under.
const CategoryTaxonomy = "category"

// E2EDocument is a document entry in the E2E corpus.
type E2EDocument struct {
	ID       string
	Title    string
	Content  string
	Category string
}

// SuggestTestCase is partially typed text and what it must suggest. At least one of
// ExpectedDocIDs must be among the hits, and ExpectedTerm (when set) among the term
// completions, compared case-insensitively.
type SuggestTestCase struct {
	Text           string
	ExpectedDocIDs []string
	ExpectedTerm   string
	Description    string
}

// Corpus holds documents and typeahead cases for E2E tests.
type Corpus struct {
	Documents    []E2EDocument
	TestCases    []SuggestTestCase
	TotalDocs    int
	TotalQueries int
}

type topic struct {
	word     string
	title    string
	category string
	content  string
}

var topics = []topic{
	{"Python", "Python Guide", "Programming", "Python is a high-level programming language used for web development and data science."},
	{"Kubernetes", "Kubernetes Handbook", "Containers", "Kubernetes automates deployment and scaling of containerized applications."},
	{"React", "React Tutorial", "Frontend", "React is a JavaScript library for building user interfaces."},
	{"Golang", "Golang Concurrency", "Programming", "Goroutines and channels make concurrent programs simple."},
	{"PostgreSQL", "PostgreSQL Manual", "Databases", "PostgreSQL is an advanced relational database with JSON support."},
	{"Docker", "Docker Images", "Containers", "Docker images are portable across environments."},
	{"Tensorflow", "Tensorflow Models", "Machine Learning", "Tensorflow trains and serves neural network models."},
	{"Nginx", "Nginx Configuration", "Operations", "Nginx serves static content and proxies requests."},
	{"Redis", "Redis Caching", "Databases", "Redis keeps hot data in memory."},
	{"Terraform", "Terraform Modules", "Operations", "Terraform describes infrastructure as code."},
}

// BuildCorpus returns a corpus of n documents cycling through the topics, with one prefix
// case per topic, one term case per category and one multi-word case.
func BuildCorpus(n int) *Corpus {
	docs := make([]E2EDocument, 0, n)
	for i := 0; i < n; i++ {
		tp := topics[i%len(topics)]
		docs = append(docs, E2EDocument{
			ID:       fmt.Sprintf("doc-%03d", i),
			Title:    fmt.Sprintf("%s %d", tp.title, i/len(topics)+1),
			Content:  tp.content,
			Category: tp.category,
		})
	}
	cases := buildSuggestTestCases(docs)
	return &Corpus{
		Documents:    docs,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}
}

func prefix(s string, n int) string {
	s = strings.ToLower(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}

func buildSuggestTestCases(docs []E2EDocument) []SuggestTestCase {
	var cases []SuggestTestCase
	for _, tp := range topics {
		var ids []string
		for _, d := range docs {
			if strings.HasPrefix(d.Title, tp.title+" ") {
				ids = append(ids, d.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}
		text := prefix(tp.word, 5)
		cases = append(cases, SuggestTestCase{
			Text:           text,
			ExpectedDocIDs: ids,
			Description:    fmt.Sprintf("title prefix %q", text),
		})
	}

	seen := make(map[string]bool)
	for _, d := range docs {
		if seen[d.Category] {
			continue
		}
		seen[d.Category] = true
		text := prefix(d.Category, 4)
		cases = append(cases, SuggestTestCase{
			Text:         text,
			ExpectedTerm: d.Category,
			Description:  fmt.Sprintf("term prefix %q", text),
		})
	}

	if len(docs) > 0 {
		d := docs[len(docs)-1]
		text := strings.ToLower(d.Title)
		cases = append(cases, SuggestTestCase{
			Text:           text[:len(text)-1],
			ExpectedDocIDs: []string{d.ID},
			Description:    "multi-word title",
		})
	}
	return cases
}

// ToDocumentInputs converts the corpus into document inputs with a category term each.
func (c *Corpus) ToDocumentInputs() []*models.DocumentInput {
	categoryIDs := make(map[string]int64)
	out := make([]*models.DocumentInput, len(c.Documents))
	for i, d := range c.Documents {
		id, ok := categoryIDs[d.Category]
		if !ok {
			id = int64(len(categoryIDs) + 1)
			categoryIDs[d.Category] = id
		}
		out[i] = &models.DocumentInput{
			ID:      d.ID,
			Title:   d.Title,
			Content: d.Content,
			TaxonomyTerms: models.TaxonomyTerms{
				{Name: CategoryTaxonomy, Terms: []models.Term{{ID: id, Name: d.Category}}},
			},
		}
	}
	return out
}
