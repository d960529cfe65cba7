package ai

import "errors"

var (
	// ErrNoProvider is returned when no generative model provider has a
	// usable credential. This is a configuration error, distinct from a
	// transient provider failure.
	ErrNoProvider = errors.New("no generative model provider configured")

	// ErrUnknownProvider is returned when a requested provider name does
	// not match any known backend.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrNoJSON is returned when no JSON object could be recovered from a
	// model response by any parse strategy.
	ErrNoJSON = errors.New("no JSON object in model response")

	// ErrEmptyResponse is returned when the model produced no choices.
	ErrEmptyResponse = errors.New("empty model response")
)
