package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/judgepanel/internal/observability"
)

// EvaluationService runs the generate, rate and record pipeline for one submission.
type EvaluationService struct {
	generator TextGenerator
	ratings   *RatingService
	history   HistoryStore
}

// NewEvaluationService creates a new evaluation service (DI constructor).
// A nil generator is allowed; Evaluate then reports ErrGeneratorNotConfigured.
func NewEvaluationService(generator TextGenerator, ratings *RatingService, history HistoryStore) *EvaluationService {
	return &EvaluationService{
		generator: generator,
		ratings:   ratings,
		history:   history,
	}
}

// Evaluate generates text for the prompt, rates it with every provider and
// records the outcome. Nothing is recorded when any step fails.
func (s *EvaluationService) Evaluate(ctx context.Context, req *GenerationRequest) (*Evaluation, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.generator == nil {
		return nil, ErrGeneratorNotConfigured
	}

	controls := req.WithDefaults()
	id := uuid.New().String()
	ctx = observability.WithSubmissionID(ctx, id)
	logger := observability.FromContext(ctx)

	logger.Info("generating text",
		observability.String("target_length", controls.TargetLength),
		observability.String("style", controls.Style))

	text, err := s.generator.Generate(ctx, controls)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyGeneration
	}

	ratings, err := s.ratings.Rate(ctx, &RatingRequest{
		Prompt:        controls.Prompt,
		GeneratedText: text,
	})
	if err != nil {
		return nil, fmt.Errorf("rating failed: %w", err)
	}

	evaluation := Evaluation{
		ID:            id,
		Prompt:        controls.Prompt,
		TargetLength:  controls.TargetLength,
		Style:         controls.Style,
		GeneratedText: text,
		Ratings:       ratings,
		CreatedAt:     time.Now().UTC(),
	}

	if s.history != nil {
		if appendErr := s.history.Append(ctx, evaluation); appendErr != nil {
			return nil, fmt.Errorf("failed to record evaluation: %w", appendErr)
		}
	}

	logger.Info("evaluation recorded", observability.Int("providers", len(ratings)))
	return &evaluation, nil
}

// History returns all recorded evaluations, oldest first.
func (s *EvaluationService) History(ctx context.Context) ([]Evaluation, error) {
	if s.history == nil {
		return []Evaluation{}, nil
	}

	evaluations, err := s.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evaluations, nil
}

// Find returns the recorded evaluation with the given ID.
func (s *EvaluationService) Find(ctx context.Context, id string) (*Evaluation, error) {
	evaluations, err := s.History(ctx)
	if err != nil {
		return nil, err
	}

	for i := range evaluations {
		if evaluations[i].ID == id {
			return &evaluations[i], nil
		}
	}

	return nil, ErrEvaluationNotFound
}
