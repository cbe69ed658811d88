package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrNoProviders indicates that no rating provider is registered.
	ErrNoProviders = errors.New("no rating providers configured")

	// ErrPromptTooShort indicates a prompt below MinPromptLength.
	ErrPromptTooShort = fmt.Errorf("prompt must be at least %d characters", MinPromptLength)

	// ErrPromptTooLong indicates a prompt above MaxPromptLength.
	ErrPromptTooLong = fmt.Errorf("prompt must not exceed %d characters", MaxPromptLength)

	// ErrEmptyGeneration indicates the generator returned no text.
	ErrEmptyGeneration = errors.New("text generation produced no content")

	// ErrGeneratorNotConfigured indicates that no text generator is available.
	ErrGeneratorNotConfigured = errors.New("text generator not configured")

	// ErrEvaluationNotFound is returned when no recorded evaluation has the requested ID.
	ErrEvaluationNotFound = errors.New("evaluation not found")
)

// ErrorKind classifies provider-scoped failures.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindTransport     ErrorKind = "transport"
	KindParse         ErrorKind = "parse"
	KindValidation    ErrorKind = "validation"
)

// ProviderFailure is implemented by every provider-scoped error.
type ProviderFailure interface {
	error
	Kind() ErrorKind
	ProviderID() string
}

// ConfigurationError reports a provider that cannot be set up.
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s: missing %s", e.Provider, e.Setting)
}

// Kind implements ProviderFailure.
func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

// ProviderID implements ProviderFailure.
func (e *ConfigurationError) ProviderID() string { return e.Provider }

// TransportError reports a network or HTTP failure calling a provider.
type TransportError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind implements ProviderFailure.
func (e *TransportError) Kind() ErrorKind { return KindTransport }

// ProviderID implements ProviderFailure.
func (e *TransportError) ProviderID() string { return e.Provider }

// ParseError reports a provider payload with no usable JSON object.
type ParseError struct {
	Provider string
	Payload  string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("provider %s: unparseable rating payload %q", e.Provider, truncate(e.Payload, maxPayloadContext))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Kind implements ProviderFailure.
func (e *ParseError) Kind() ErrorKind { return KindParse }

// ProviderID implements ProviderFailure.
func (e *ParseError) ProviderID() string { return e.Provider }

// ValidationError reports a parsed rating that violates the rating schema.
type ValidationError struct {
	Provider string
	Field    string
	Object   string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("provider %s: invalid rating field %q in %s: %v", e.Provider, e.Field, e.Object, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Kind implements ProviderFailure.
func (e *ValidationError) Kind() ErrorKind { return KindValidation }

// ProviderID implements ProviderFailure.
func (e *ValidationError) ProviderID() string { return e.Provider }

const maxPayloadContext = 200

// truncate shortens s to at most limit bytes without splitting a UTF-8 sequence.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
