// Package feature wires the autosuggest capability together: index schema shaping,
// per-document suggestion tokens, and the client options of the typeahead widget.
package feature

import (
	"errors"

	"github.com/hyperjump/autosuggest/internal/config"
	"github.com/hyperjump/autosuggest/internal/endpoint"
	"github.com/hyperjump/autosuggest/internal/models"
	"github.com/hyperjump/autosuggest/internal/schema"
	"github.com/hyperjump/autosuggest/internal/suggest"
	"go.uber.org/zap"
)

const (
	// Slug identifies the feature.
	Slug = "autosuggest"
	// Title is the human-readable feature name.
	Title = "Autosuggest"
	// RequiresInstallReindex is true because enabling the feature changes the index
	// mapping; existing documents must be indexed again to get suggest fields.
	RequiresInstallReindex = true
)

// Requirement status codes.
const (
	StatusAvailable   = 0
	StatusWarning     = 1
	StatusUnavailable = 2
)

const (
	summary = "Suggest relevant content as text is entered into the search field."

	longDescription = `Input fields of type "search" or with the CSS class "search-field" or "ep-autosuggest" ` +
		"are enhanced with suggestions. As text is entered, matching content appears below the field, " +
		"based on the top search results for the text. Suggestions link directly to the content."

	uxNotice = "This feature changes the default search experience: a list of suggestions is shown " +
		"below detected search fields as text is entered."

	selfHostedWarning = "The suggest endpoint is self-hosted, so it cannot be verified to be secured. " +
		"Autosuggest requires a publicly accessible endpoint, which can expose private content and " +
		"allow data modification if improperly configured."

	missingEndpointMessage = "No suggest endpoint is configured; autosuggest stays disabled until endpoint_url is set."
)

// DefaultSettings returns the feature's default raw settings.
func DefaultSettings() map[string]string {
	return map[string]string{"endpoint_url": ""}
}

// Summary returns the one-line feature description.
func Summary() string { return summary }

// LongDescription returns the detailed feature description.
func LongDescription() string { return longDescription }

// Status is the operator-facing requirements report.
type Status struct {
	Code     int      `json:"code"`
	Messages []string `json:"messages"`
	// RequiresOperatorAcknowledgement mirrors the resolved endpoint flag: a visible warning
	// must be shown before the feature is enabled.
	RequiresOperatorAcknowledgement bool   `json:"requires_operator_acknowledgement"`
	Endpoint                        string `json:"endpoint,omitempty"`
}

// Feature is the autosuggest capability bound to one set of settings.
type Feature struct {
	settings   endpoint.Config
	transforms []endpoint.Transform
	logger     *zap.Logger
}

// Option configures a Feature.
type Option func(*Feature)

// WithLogger sets a logger for warnings (missing endpoint, schema conflicts).
func WithLogger(l *zap.Logger) Option {
	return func(f *Feature) { f.logger = l }
}

// WithTransforms registers post-processing of the resolved client options, applied in order.
func WithTransforms(ts ...endpoint.Transform) Option {
	return func(f *Feature) { f.transforms = append(f.transforms, ts...) }
}

// SettingsFromConfig builds the resolver input from the autosuggest config section.
func SettingsFromConfig(c config.AutosuggestConfig) (endpoint.Config, error) {
	mode, err := endpoint.ParseMode(c.Mode)
	if err != nil {
		return endpoint.Config{}, err
	}
	action, err := endpoint.ParseSelectionAction(c.Action)
	if err != nil {
		return endpoint.Config{}, err
	}
	return endpoint.Config{
		Mode:                  mode,
		ManagedHostBaseURL:    c.ManagedHost,
		IndexName:             c.IndexName,
		SelfHostedEndpointURL: c.EndpointURL,
		SearchFields:          append([]string(nil), c.SearchFields...),
		PostTypes:             append([]string(nil), c.PostTypes...),
		PostStatus:            c.PostStatus,
		SelectionAction:       action,
	}, nil
}

// New creates the feature for the given settings.
func New(settings endpoint.Config, opts ...Option) *Feature {
	f := &Feature{settings: settings, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Settings returns a copy of the resolver input.
func (f *Feature) Settings() endpoint.Config {
	s := f.settings
	s.SearchFields = append([]string(nil), s.SearchFields...)
	s.PostTypes = append([]string(nil), s.PostTypes...)
	return s
}

// Mapping returns base augmented with the suggest fields.
func (f *Feature) Mapping(base schema.IndexSchema) (schema.IndexSchema, error) {
	out, err := schema.Augment(base)
	if err != nil {
		var conflict *schema.SchemaConflictError
		if errors.As(err, &conflict) {
			f.logger.Warn("autosuggest mapping conflict",
				zap.String("kind", conflict.Kind),
				zap.String("path", conflict.Path),
				zap.String("existing", conflict.Existing))
		}
		return schema.IndexSchema{}, err
	}
	return out, nil
}

// SyncArgs merges the document's term suggestions into its index payload.
func (f *Feature) SyncArgs(payload map[string]interface{}, doc *models.Document) suggest.SuggestionSet {
	return suggest.ApplyTermSuggest(payload, doc)
}

// Resolve resolves the client options, returning *endpoint.MissingEndpointError when no
// endpoint is reachable.
func (f *Feature) Resolve() (endpoint.Resolved, error) {
	return endpoint.Resolve(f.Settings(), f.transforms...)
}

// ClientOptions resolves the client options. ok is false when suggestion must stay
// disabled; the reason is logged, never returned, so callers on the indexing path are
// not interrupted by endpoint configuration.
func (f *Feature) ClientOptions() (endpoint.Resolved, bool) {
	r, err := f.Resolve()
	if err != nil {
		f.logger.Warn("autosuggest disabled", zap.Error(err))
		return endpoint.Resolved{}, false
	}
	return r, true
}

// RequirementsStatus reports whether the feature can be enabled and what the operator
// must be told first.
func (f *Feature) RequirementsStatus() Status {
	st := Status{Code: StatusWarning, Messages: []string{uxNotice}}
	r, err := f.Resolve()
	if err != nil {
		var missing *endpoint.MissingEndpointError
		if errors.As(err, &missing) {
			st.Code = StatusUnavailable
			st.Messages = append(st.Messages, missingEndpointMessage)
		} else {
			st.Code = StatusUnavailable
			st.Messages = append(st.Messages, err.Error())
		}
		st.RequiresOperatorAcknowledgement = f.settings.Mode == endpoint.SelfHosted || f.settings.Mode == ""
		if st.RequiresOperatorAcknowledgement {
			st.Messages = append(st.Messages, selfHostedWarning)
		}
		return st
	}
	st.Endpoint = r.URL
	st.RequiresOperatorAcknowledgement = r.RequiresOperatorAcknowledgement
	if r.RequiresOperatorAcknowledgement {
		st.Messages = append(st.Messages, selfHostedWarning)
	}
	return st
}
