package domain

import (
	"time"
	"unicode/utf8"
)

const (
	// MinPromptLength is the shortest prompt accepted for an evaluation (in runes).
	MinPromptLength = 10

	// MaxPromptLength is the longest prompt accepted for an evaluation (in runes).
	MaxPromptLength = 2000

	// DefaultTargetLength is used when a generation request has no length control.
	DefaultTargetLength = "around 200 words"

	// DefaultStyle is used when a generation request has no style control.
	DefaultStyle = "Neutral"
)

// StyleOptions lists the style controls offered to users.
//
//nolint:gochecknoglobals // read-only lookup table
var StyleOptions = []string{
	"Neutral",
	"Formal",
	"Humorous",
	"Creative",
	"Technical",
	"Persuasive",
	"Informative",
}

// RatingRequest is the immutable input of one rating pass.
type RatingRequest struct {
	Prompt        string `json:"prompt"`
	GeneratedText string `json:"generatedText"`
}

// Rating is the five-criterion score a provider assigns, each in [1,10].
type Rating struct {
	Clarity    int `json:"clarity"`
	Relevance  int `json:"relevance"`
	Coherence  int `json:"coherence"`
	Creativity int `json:"creativity"`
	Overall    int `json:"overall"`
}

// AggregateResult maps provider identifiers to their ratings.
type AggregateResult map[string]Rating

// ProviderConfig describes one rating provider endpoint.
type ProviderConfig struct {
	ID       string
	Endpoint string
	Model    string
	APIKey   string //nolint:gosec // credential reference, never logged
}

// Validate checks that the provider can be used. A missing credential yields
// a *ConfigurationError so startup can skip the provider.
func (c ProviderConfig) Validate() error {
	switch {
	case c.ID == "":
		return &ConfigurationError{Provider: c.ID, Setting: "id"}
	case c.Endpoint == "":
		return &ConfigurationError{Provider: c.ID, Setting: "endpoint"}
	case c.Model == "":
		return &ConfigurationError{Provider: c.ID, Setting: "model"}
	case c.APIKey == "":
		return &ConfigurationError{Provider: c.ID, Setting: "api key"}
	}
	return nil
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // user, assistant, system
	Content string `json:"content"`
}

// ChatRequest is the body sent to a provider's chat completion endpoint.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// GenerationRequest carries a prompt and its optional generation controls.
type GenerationRequest struct {
	Prompt       string `json:"prompt"`
	TargetLength string `json:"targetLength,omitempty"`
	Style        string `json:"style,omitempty"`
}

// WithDefaults fills in missing controls.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.TargetLength == "" {
		r.TargetLength = DefaultTargetLength
	}
	if r.Style == "" {
		r.Style = DefaultStyle
	}
	return r
}

// Validate enforces the accepted prompt bounds.
func (r GenerationRequest) Validate() error {
	return ValidatePrompt(r.Prompt)
}

// ValidatePrompt checks that prompt is between MinPromptLength and
// MaxPromptLength runes long.
func ValidatePrompt(prompt string) error {
	n := utf8.RuneCountInString(prompt)
	if n < MinPromptLength {
		return ErrPromptTooShort
	}
	if n > MaxPromptLength {
		return ErrPromptTooLong
	}
	return nil
}

// Evaluation is one recorded generate-and-rate submission.
type Evaluation struct {
	ID            string          `json:"id"`
	Prompt        string          `json:"prompt"`
	TargetLength  string          `json:"targetLength"`
	Style         string          `json:"style"`
	GeneratedText string          `json:"generatedText"`
	Ratings       AggregateResult `json:"ratings"`
	CreatedAt     time.Time       `json:"createdAt"`
}
