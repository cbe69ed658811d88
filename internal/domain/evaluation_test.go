package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/mocks"
)

const goodRating = `{"clarity":8,"relevance":9,"coherence":8,"creativity":7,"overall":8}`

func TestEvaluationService_Evaluate(t *testing.T) {
	t.Run("should generate rate and record with default controls", func(t *testing.T) {
		provider := mocks.NewRatingProvider(t, "sonar")
		provider.On("Rate", mock.Anything, haiku).Return(goodRating, nil)

		generator := mocks.NewTextGenerator(t)
		generator.On("Generate", mock.Anything, domain.GenerationRequest{
			Prompt:       haiku.Prompt,
			TargetLength: domain.DefaultTargetLength,
			Style:        domain.DefaultStyle,
		}).Return(haiku.GeneratedText, nil)

		store := mocks.NewHistoryStore(t)
		store.On("Append", mock.Anything, mock.MatchedBy(func(e domain.Evaluation) bool {
			return e.Prompt == haiku.Prompt && e.GeneratedText == haiku.GeneratedText && e.ID != ""
		})).Return(nil)

		service := domain.NewEvaluationService(generator, domain.NewRatingService(newRegistry(t, provider), nil), store)

		evaluation, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt})

		require.NoError(t, err)
		require.NotEmpty(t, evaluation.ID)
		require.Equal(t, domain.DefaultStyle, evaluation.Style)
		require.Equal(t, domain.DefaultTargetLength, evaluation.TargetLength)
		require.Equal(t, 9, evaluation.Ratings["sonar"].Relevance)
		require.False(t, evaluation.CreatedAt.IsZero())
	})

	t.Run("should not record when rating fails", func(t *testing.T) {
		provider := mocks.NewRatingProvider(t, "r1")
		provider.On("Rate", mock.Anything, mock.Anything).Return("no json", nil)

		generator := mocks.NewTextGenerator(t)
		generator.On("Generate", mock.Anything, mock.Anything).Return("Some text", nil)

		store := mocks.NewHistoryStore(t)

		service := domain.NewEvaluationService(generator, domain.NewRatingService(newRegistry(t, provider), nil), store)

		evaluation, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt, Style: "Formal"})

		require.Nil(t, evaluation)
		require.ErrorContains(t, err, "rating failed")
		var parseErr *domain.ParseError
		require.ErrorAs(t, err, &parseErr)
		store.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("should reject blank generation", func(t *testing.T) {
		generator := mocks.NewTextGenerator(t)
		generator.On("Generate", mock.Anything, mock.Anything).Return("  \n", nil)

		service := domain.NewEvaluationService(generator, domain.NewRatingService(newRegistry(t), nil), nil)

		_, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt})

		require.ErrorIs(t, err, domain.ErrEmptyGeneration)
	})

	t.Run("should wrap generator failure", func(t *testing.T) {
		generator := mocks.NewTextGenerator(t)
		generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

		service := domain.NewEvaluationService(generator, domain.NewRatingService(newRegistry(t), nil), nil)

		_, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt})

		require.EqualError(t, err, "generation failed: quota exceeded")
	})

	t.Run("should report missing generator", func(t *testing.T) {
		service := domain.NewEvaluationService(nil, domain.NewRatingService(newRegistry(t), nil), nil)

		_, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt})

		require.ErrorIs(t, err, domain.ErrGeneratorNotConfigured)
	})

	t.Run("should enforce prompt bounds", func(t *testing.T) {
		service := domain.NewEvaluationService(nil, domain.NewRatingService(newRegistry(t), nil), nil)

		_, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: "too short"})
		require.ErrorIs(t, err, domain.ErrPromptTooShort)

		_, err = service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: strings.Repeat("a", domain.MaxPromptLength+1)})
		require.ErrorIs(t, err, domain.ErrPromptTooLong)

		_, err = service.Evaluate(context.Background(), nil)
		require.EqualError(t, err, "request cannot be nil")
	})

	t.Run("should wrap history failure", func(t *testing.T) {
		provider := mocks.NewRatingProvider(t, "sonar")
		provider.On("Rate", mock.Anything, mock.Anything).Return(goodRating, nil)

		generator := mocks.NewTextGenerator(t)
		generator.On("Generate", mock.Anything, mock.Anything).Return("Some text", nil)

		store := mocks.NewHistoryStore(t)
		store.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		service := domain.NewEvaluationService(generator, domain.NewRatingService(newRegistry(t, provider), nil), store)

		_, err := service.Evaluate(context.Background(), &domain.GenerationRequest{Prompt: haiku.Prompt})

		require.EqualError(t, err, "failed to record evaluation: disk full")
	})
}

func TestEvaluationService_History(t *testing.T) {
	t.Run("should return empty list without a store", func(t *testing.T) {
		service := domain.NewEvaluationService(nil, nil, nil)

		evaluations, err := service.History(context.Background())

		require.NoError(t, err)
		require.Empty(t, evaluations)
	})

	t.Run("should find evaluation by id", func(t *testing.T) {
		store := mocks.NewHistoryStore(t)
		store.On("List", mock.Anything).Return([]domain.Evaluation{{ID: "a"}, {ID: "b"}}, nil).Twice()

		service := domain.NewEvaluationService(nil, nil, store)

		found, err := service.Find(context.Background(), "b")
		require.NoError(t, err)
		require.Equal(t, "b", found.ID)

		_, err = service.Find(context.Background(), "c")
		require.ErrorIs(t, err, domain.ErrEvaluationNotFound)
	})
}
