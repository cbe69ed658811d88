// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/davidbz/judgepanel/internal/domain"
)

// RatingProvider is a mock of domain.RatingProvider.
type RatingProvider struct {
	mock.Mock
	name string
}

// NewRatingProvider creates a mock provider with the given identifier and
// registers expectation assertions on test cleanup.
func NewRatingProvider(t interface {
	mock.TestingT
	Cleanup(func())
}, name string) *RatingProvider {
	m := &RatingProvider{name: name}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RatingProvider) Name() string {
	return m.name
}

func (m *RatingProvider) Rate(ctx context.Context, req domain.RatingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// TextGenerator is a mock of domain.TextGenerator.
type TextGenerator struct {
	mock.Mock
}

func NewTextGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *TextGenerator {
	m := &TextGenerator{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TextGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// HistoryStore is a mock of domain.HistoryStore.
type HistoryStore struct {
	mock.Mock
}

func NewHistoryStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *HistoryStore {
	m := &HistoryStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *HistoryStore) Append(ctx context.Context, evaluation domain.Evaluation) error {
	args := m.Called(ctx, evaluation)
	return args.Error(0)
}

func (m *HistoryStore) List(ctx context.Context) ([]domain.Evaluation, error) {
	args := m.Called(ctx)
	evaluations, _ := args.Get(0).([]domain.Evaluation)
	return evaluations, args.Error(1)
}

// EventPublisher is a mock of domain.EventPublisher.
type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventPublisher {
	m := &EventPublisher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	m.Called(ctx, eventType, data)
}
