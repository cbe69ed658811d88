package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/judgepanel/internal/observability"
)

// RatingService fans a rating request out to every registered provider and
// joins the normalized results.
type RatingService struct {
	registry ProviderRegistry
	events   EventPublisher
}

// NewRatingService creates a new rating service (DI constructor).
func NewRatingService(registry ProviderRegistry, events EventPublisher) *RatingService {
	return &RatingService{
		registry: registry,
		events:   events,
	}
}

// Rate queries all providers concurrently. The call is all-or-nothing: the
// first provider failure (transport, parse or validation) is returned and no
// partial result is exposed.
func (s *RatingService) Rate(ctx context.Context, req *RatingRequest) (AggregateResult, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	if req.Prompt == "" {
		return nil, errors.New("prompt cannot be empty")
	}

	if req.GeneratedText == "" {
		return nil, errors.New("generated text cannot be empty")
	}

	providers, err := s.providers(ctx)
	if err != nil {
		return nil, err
	}

	logger := observability.FromContext(ctx)
	logger.Info("rating fan-out started", observability.Int("providers", len(providers)))
	started := time.Now()

	ratings := make([]Rating, len(providers))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, provider := range providers {
		group.Go(func() error {
			rating, rateErr := rateOne(observability.WithProvider(groupCtx, provider.Name()), provider, *req)
			if rateErr != nil {
				return rateErr
			}
			ratings[i] = rating
			return nil
		})
	}

	if waitErr := group.Wait(); waitErr != nil {
		logger.Error("rating fan-out failed", observability.Error(waitErr))
		s.publish(ctx, "rating.failed", map[string]interface{}{
			"error":       waitErr.Error(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		return nil, waitErr
	}

	result := make(AggregateResult, len(providers))
	for i, provider := range providers {
		result[provider.Name()] = ratings[i]
	}

	logger.Info("rating fan-out succeeded", observability.Duration("elapsed", time.Since(started)))
	s.publish(ctx, "rating.completed", map[string]interface{}{
		"providers":   len(result),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return result, nil
}

// Providers returns the identifiers of all registered providers.
func (s *RatingService) Providers(ctx context.Context) ([]string, error) {
	names, err := s.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return names, nil
}

func (s *RatingService) providers(ctx context.Context) ([]RatingProvider, error) {
	names, err := s.Providers(ctx)
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, ErrNoProviders
	}

	providers := make([]RatingProvider, 0, len(names))
	for _, name := range names {
		provider, getErr := s.registry.Get(ctx, name)
		if getErr != nil {
			return nil, fmt.Errorf("provider not found: %w", getErr)
		}
		providers = append(providers, provider)
	}
	return providers, nil
}

func rateOne(ctx context.Context, provider RatingProvider, req RatingRequest) (Rating, error) {
	logger := observability.FromContext(ctx)

	raw, err := provider.Rate(ctx, req)
	if err != nil {
		logger.Warn("provider call failed", observability.Error(err))
		return Rating{}, err
	}

	rating, err := NormalizeRating(provider.Name(), raw)
	if err != nil {
		logger.Warn("provider answer rejected", observability.Error(err))
		return Rating{}, err
	}

	logger.Debug("provider rating accepted", observability.Int("overall", rating.Overall))
	return rating, nil
}

func (s *RatingService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, data)
}
