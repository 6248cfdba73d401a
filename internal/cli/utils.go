// Package cli provides output helpers for the autosuggest command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/feature"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/pkg/utils"
)

// OutputFormat is the format of command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat parses a --output flag value; anything but "json" is text.
func ParseOutputFormat(s string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(OutputJSON)) {
		return OutputJSON
	}
	return OutputText
}

const titleWidth = 80

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSuggestResults writes a suggest response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSuggestResults(w io.Writer, response *models.SuggestResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\n%d suggestions for %q in %dms\n\n", response.Total, response.Text, response.QueryTime)
	for _, hit := range response.Hits {
		fmt.Fprintf(w, "%2d. %s", hit.Rank, utils.Truncate(hit.Title, titleWidth))
		if hit.PostType != "" {
			fmt.Fprintf(w, " [%s]", hit.PostType)
		}
		fmt.Fprintf(w, "  (%.4f, %s)\n", hit.Score, hit.ID)
	}
	if len(response.Terms) > 0 {
		fmt.Fprintln(w, "\nTerms:")
		for _, t := range response.Terms {
			fmt.Fprintf(w, "  %s (%d)\n", t.Term, t.Count)
		}
	}
	if response.DidYouMean != "" {
		fmt.Fprintf(w, "\nDid you mean: %s\n", response.DidYouMean)
	}
	return nil
}

// PrintSuggestResults prints a suggest response to stdout in text format.
func PrintSuggestResults(response *models.SuggestResponse) {
	_ = WriteSuggestResults(os.Stdout, response, OutputText)
}

// WriteOptions writes the resolved client options. JSON output is the exact object the
// front-end widget reads; text output ends with the operator warning for self-hosted
// endpoints.
func WriteOptions(w io.Writer, r endpoint.Resolved, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Endpoint:      %s\n", r.URL)
	fmt.Fprintf(w, "Search fields: %s\n", strings.Join(r.SearchFields, ", "))
	fmt.Fprintf(w, "Post types:    %s\n", strings.Join(r.PostTypes, ", "))
	fmt.Fprintf(w, "Post status:   %s\n", r.PostStatus)
	fmt.Fprintf(w, "Action:        %s\n", r.SelectionAction)
	if r.RequiresOperatorAcknowledgement {
		fmt.Fprintln(w, "\nWARNING: this endpoint is self-hosted and publicly reachable without authentication.")
		fmt.Fprintln(w, "Make sure it cannot expose private content or modify data before enabling autosuggest.")
	}
	return nil
}

// WriteFeatureStatus writes the feature requirements report.
func WriteFeatureStatus(w io.Writer, st feature.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	label := "available"
	switch st.Code {
	case feature.StatusWarning:
		label = "available with warnings"
	case feature.StatusUnavailable:
		label = "unavailable"
	}
	fmt.Fprintf(w, "%s: %s (code %d)\n", feature.Title, label, st.Code)
	if st.Endpoint != "" {
		fmt.Fprintf(w, "Endpoint: %s\n", st.Endpoint)
	}
	for _, m := range st.Messages {
		fmt.Fprintf(w, "  - %s\n", m)
	}
	if st.RequiresOperatorAcknowledgement {
		fmt.Fprintln(w, "Operator acknowledgement required before enabling.")
	}
	return nil
}
