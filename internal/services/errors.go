// Package services defines the business logic for generated posts.
// This file centralizes service-level error values so that handlers can map
// them to HTTP results consistently with errors.Is / errors.As.
package services

import "errors"

var (
	// ErrNotConfigured is returned by generation operations when no model
	// client is available (no API key at start).
	ErrNotConfigured = errors.New("API Key missing")

	// ErrEmptyContent is returned when a text post has blank content.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidImage is returned when an upload is empty or cannot be decoded.
	ErrInvalidImage = errors.New("invalid image")
)

// GenerationError wraps a provider failure or a malformed model response.
// Its message is the underlying error text so callers can surface it as-is.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	if e == nil || e.Err == nil {
		return "generation failed"
	}
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }
