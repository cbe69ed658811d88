package domain

import "context"

// RatingProvider represents one external LLM rating service.
type RatingProvider interface {
	// Rate sends one rating request and returns the provider's raw answer text.
	Rate(ctx context.Context, req RatingRequest) (string, error)

	// Name returns the provider identifier.
	Name() string
}

// ProviderRegistry manages the configured rating providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider RatingProvider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (RatingProvider, error)

	// List returns the names of all registered providers, sorted.
	List(ctx context.Context) ([]string, error)
}

// TextGenerator produces text from a prompt and its controls.
type TextGenerator interface {
	// Generate returns the generated text.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// HistoryStore records past evaluations.
type HistoryStore interface {
	// Append records an evaluation.
	Append(ctx context.Context, evaluation Evaluation) error

	// List returns all recorded evaluations, oldest first.
	List(ctx context.Context) ([]Evaluation, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
