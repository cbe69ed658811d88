package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/judgepanel/internal/config"
	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/history"
)

func evaluation(id string) domain.Evaluation {
	return domain.Evaluation{
		ID:            id,
		Prompt:        "Write a haiku about the sea",
		TargetLength:  domain.DefaultTargetLength,
		Style:         domain.DefaultStyle,
		GeneratedText: "Waves crash on the shore...",
		Ratings: domain.AggregateResult{
			"sonar": {Clarity: 8, Relevance: 9, Coherence: 8, Creativity: 7, Overall: 8},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMemoryStore(t *testing.T) {
	t.Run("should list evaluations in insertion order", func(t *testing.T) {
		store := history.NewMemoryStore(0)
		ctx := context.Background()

		require.NoError(t, store.Append(ctx, evaluation("a")))
		require.NoError(t, store.Append(ctx, evaluation("b")))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		require.Equal(t, "a", entries[0].ID)
		require.Equal(t, "b", entries[1].ID)
	})

	t.Run("should return empty list when nothing recorded", func(t *testing.T) {
		entries, err := history.NewMemoryStore(10).List(context.Background())
		require.NoError(t, err)
		require.NotNil(t, entries)
		require.Empty(t, entries)
	})

	t.Run("should drop oldest entries beyond the cap", func(t *testing.T) {
		store := history.NewMemoryStore(3)
		ctx := context.Background()

		for i := range 5 {
			require.NoError(t, store.Append(ctx, evaluation(fmt.Sprintf("e%d", i))))
		}

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		require.Equal(t, "e2", entries[0].ID)
		require.Equal(t, "e4", entries[2].ID)
	})

	t.Run("should return a copy of the entries", func(t *testing.T) {
		store := history.NewMemoryStore(0)
		ctx := context.Background()
		require.NoError(t, store.Append(ctx, evaluation("a")))

		entries, err := store.List(ctx)
		require.NoError(t, err)
		entries[0].ID = "mutated"

		again, err := store.List(ctx)
		require.NoError(t, err)
		require.Equal(t, "a", again[0].ID)
	})
}

func TestNew(t *testing.T) {
	t.Run("should default to memory backend", func(t *testing.T) {
		store, err := history.New(&config.HistoryConfig{Backend: "", MaxEntries: 10})
		require.NoError(t, err)
		require.IsType(t, &history.MemoryStore{}, store)
	})

	t.Run("should reject unknown backend", func(t *testing.T) {
		store, err := history.New(&config.HistoryConfig{Backend: "postgres"})
		require.Error(t, err)
		require.Nil(t, store)
		require.Contains(t, err.Error(), "unknown history backend")
	})
}
