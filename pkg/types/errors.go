// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// ErrMissingAPIKey indicates the research API key is absent or still set to
// a template placeholder.
var ErrMissingAPIKey = errors.New("missing API key")

// ConfigurationError reports a required setting that is missing or invalid.
// It is raised once, before any research request is attempted.
type ConfigurationError struct {
	// Setting is the environment-facing name of the setting (e.g. "PERPLEXITY_API_KEY").
	Setting string

	// Placeholder is true when the value was present but still a template placeholder.
	Placeholder bool

	Err error
}

func (e *ConfigurationError) Error() string {
	return e.Setting + " not set"
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
