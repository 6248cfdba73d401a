// Package endpoint resolves the externally reachable suggest URL and the client options
// handed to the front-end typeahead widget.
package endpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Mode selects where the suggest index is hosted.
type Mode string

const (
	// Managed is a trusted, access-controlled hosted search service reachable through a
	// conventional URL pattern.
	Managed Mode = "managed"
	// SelfHosted is an operator-supplied endpoint that may be public and unauthenticated.
	SelfHosted Mode = "self_hosted"
)

// ParseMode parses a configuration value. Empty input yields SelfHosted, the mode that
// requires an explicit endpoint and operator acknowledgement.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "self_hosted", "self-hosted", "selfhosted":
		return SelfHosted, nil
	case "managed":
		return Managed, nil
	}
	return "", fmt.Errorf("unknown endpoint mode %q (use managed or self_hosted)", s)
}

// SelectionAction is what the widget does when a suggestion is picked.
type SelectionAction string

const (
	// Search runs a full search for the picked suggestion.
	Search SelectionAction = "search"
	// Navigate opens the suggested item directly.
	Navigate SelectionAction = "navigate"
)

// ParseSelectionAction parses a configuration value; empty input yields Navigate.
func ParseSelectionAction(s string) (SelectionAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "navigate":
		return Navigate, nil
	case "search":
		return Search, nil
	}
	return "", fmt.Errorf("unknown selection action %q (use search or navigate)", s)
}

// Defaults applied to unset Config fields.
var (
	DefaultSearchFields = []string{"title.suggest", "term_suggest"}
	DefaultPostTypes    = []string{"post", "page"}
)

const (
	// DefaultPostStatus is the post status suggestions are restricted to by default.
	DefaultPostStatus = "published"
	// DefaultSelectionAction is the widget action used by default.
	DefaultSelectionAction = Navigate
	// managedSearchPath is appended to the managed host and index name.
	managedSearchPath = "post/_search"
)

// Config is the resolver input, built fresh for every resolution from external settings.
type Config struct {
	Mode                  Mode
	ManagedHostBaseURL    string
	IndexName             string
	SelfHostedEndpointURL string
	SearchFields          []string
	PostTypes             []string
	PostStatus            string
	SelectionAction       SelectionAction
}

// Resolved is the consumer-facing endpoint configuration.
type Resolved struct {
	URL             string
	SearchFields    []string
	PostTypes       []string
	PostStatus      string
	SelectionAction SelectionAction
	// RequiresOperatorAcknowledgement is set for self-hosted endpoints: they expose a
	// public, unauthenticated surface over the index and the operator must be warned
	// before the feature is enabled. It is not part of the wire format.
	RequiresOperatorAcknowledgement bool
}

// Transform post-processes a resolved endpoint, e.g. to change search fields.
type Transform func(Resolved) Resolved

// MissingEndpointError reports that no reachable endpoint could be composed; suggestion
// must stay disabled.
type MissingEndpointError struct {
	Mode    Mode
	Setting string
}

func (e *MissingEndpointError) Error() string {
	return fmt.Sprintf("autosuggest endpoint missing: %s mode requires %s", e.Mode, e.Setting)
}

// ErrUnknownMode is returned by Resolve for a Mode other than Managed or SelfHosted.
var ErrUnknownMode = errors.New("unknown endpoint mode")

// Resolve composes the endpoint URL for cfg, fills defaults and applies transforms in
// order. It performs no I/O and no authentication; it only composes URLs. An empty Mode
// is SelfHosted.
func Resolve(cfg Config, transforms ...Transform) (Resolved, error) {
	var out Resolved
	switch cfg.Mode {
	case Managed:
		base := strings.TrimRight(strings.TrimSpace(cfg.ManagedHostBaseURL), "/")
		if base == "" {
			return Resolved{}, &MissingEndpointError{Mode: Managed, Setting: "managed_host"}
		}
		index := strings.Trim(strings.TrimSpace(cfg.IndexName), "/")
		if index == "" {
			return Resolved{}, &MissingEndpointError{Mode: Managed, Setting: "index_name"}
		}
		out.URL = base + "/" + index + "/" + managedSearchPath
	case SelfHosted, "":
		url := strings.TrimRight(strings.TrimSpace(cfg.SelfHostedEndpointURL), "/")
		if url == "" {
			return Resolved{}, &MissingEndpointError{Mode: SelfHosted, Setting: "endpoint_url"}
		}
		out.URL = url
		out.RequiresOperatorAcknowledgement = true
	default:
		return Resolved{}, fmt.Errorf("%w %q", ErrUnknownMode, cfg.Mode)
	}

	out.SearchFields = orDefault(cfg.SearchFields, DefaultSearchFields)
	out.PostTypes = orDefault(cfg.PostTypes, DefaultPostTypes)
	out.PostStatus = cfg.PostStatus
	if out.PostStatus == "" {
		out.PostStatus = DefaultPostStatus
	}
	out.SelectionAction = cfg.SelectionAction
	if out.SelectionAction == "" {
		out.SelectionAction = DefaultSelectionAction
	}

	for _, t := range transforms {
		if t != nil {
			out = t(out)
		}
	}
	return out, nil
}

func orDefault(v, def []string) []string {
	if len(v) == 0 {
		return append([]string(nil), def...)
	}
	return append([]string(nil), v...)
}

type wireOptions struct {
	EndpointURL  string   `json:"endpointUrl"`
	PostType     []string `json:"postType"`
	PostStatus   string   `json:"postStatus"`
	SearchFields []string `json:"searchFields"`
	Action       string   `json:"action"`
}

// MarshalJSON encodes the flat five-key object read by the front-end widget.
func (r Resolved) MarshalJSON() ([]byte, error) {
	w := wireOptions{
		EndpointURL:  r.URL,
		PostType:     r.PostTypes,
		PostStatus:   r.PostStatus,
		SearchFields: r.SearchFields,
		Action:       string(r.SelectionAction),
	}
	if w.PostType == nil {
		w.PostType = []string{}
	}
	if w.SearchFields == nil {
		w.SearchFields = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the widget object. RequiresOperatorAcknowledgement is not part of
// the wire format and stays false.
func (r *Resolved) UnmarshalJSON(data []byte) error {
	var w wireOptions
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Resolved{
		URL:             w.EndpointURL,
		SearchFields:    w.SearchFields,
		PostTypes:       w.PostType,
		PostStatus:      w.PostStatus,
		SelectionAction: SelectionAction(w.Action),
	}
	return nil
}
