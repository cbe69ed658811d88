package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/history"
	httpapi "github.com/davidbz/judgepanel/internal/http"
	"github.com/davidbz/judgepanel/internal/mocks"
	"github.com/davidbz/judgepanel/internal/provider/registry"
)

const validRating = `{"clarity": 8, "relevance": 9, "coherence": 8, "creativity": 7, "overall": 8}`

type fixture struct {
	routes    http.Handler
	store     *history.MemoryStore
	generator *mocks.TextGenerator
}

func newFixture(t *testing.T, providers ...domain.RatingProvider) *fixture {
	t.Helper()

	reg := registry.NewRegistry()
	for _, p := range providers {
		require.NoError(t, reg.Register(context.Background(), p))
	}

	store := history.NewMemoryStore(0)
	generator := mocks.NewTextGenerator(t)
	ratings := domain.NewRatingService(reg, nil)
	evaluations := domain.NewEvaluationService(generator, ratings, store)

	return &fixture{
		routes:    httpapi.NewHandler(ratings, evaluations).Routes(),
		store:     store,
		generator: generator,
	}
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	f.routes.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHandleRating(t *testing.T) {
	req := domain.RatingRequest{Prompt: "Write a haiku about the sea", GeneratedText: "Waves crash on the shore..."}

	t.Run("should return ratings for every provider", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")
		sonar.On("Rate", mock.Anything, req).Return("Sure! "+validRating, nil)
		r1 := mocks.NewRatingProvider(t, "r1")
		r1.On("Rate", mock.Anything, req).Return(validRating, nil)

		f := newFixture(t, sonar, r1)
		w := f.do(http.MethodPost, "/v1/ratings", req)

		require.Equal(t, http.StatusOK, w.Code)
		var result domain.AggregateResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.Len(t, result, 2)
		require.Equal(t, 9, result["sonar"].Relevance)
	})

	t.Run("should map provider validation failure to bad gateway", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")
		sonar.On("Rate", mock.Anything, req).
			Return(`{"clarity": 11, "relevance": 9, "coherence": 8, "creativity": 7, "overall": 8}`, nil)

		f := newFixture(t, sonar)
		w := f.do(http.MethodPost, "/v1/ratings", req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		body := decodeError(t, w)
		require.Equal(t, "validation", body["kind"])
		require.Equal(t, "sonar", body["provider"])
		require.Contains(t, body["error"], "clarity")
	})

	t.Run("should map transport failure to bad gateway", func(t *testing.T) {
		llama := mocks.NewRatingProvider(t, "llama")
		llama.On("Rate", mock.Anything, req).
			Return("", &domain.TransportError{Provider: "llama", StatusCode: http.StatusUnauthorized, Message: "unexpected response: bad key"})

		f := newFixture(t, llama)
		w := f.do(http.MethodPost, "/v1/ratings", req)

		require.Equal(t, http.StatusBadGateway, w.Code)
		body := decodeError(t, w)
		require.Equal(t, "transport", body["kind"])
		require.Equal(t, "llama", body["provider"])
	})

	t.Run("should reject missing generated text", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/v1/ratings", domain.RatingRequest{Prompt: "Write a haiku about the sea"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "generated text cannot be empty")
	})

	t.Run("should reject a prompt below the minimum length", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")

		f := newFixture(t, sonar)
		w := f.do(http.MethodPost, "/v1/ratings", domain.RatingRequest{Prompt: "Sea haiku", GeneratedText: "Waves crash on the shore..."})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "at least 10 characters")
	})

	t.Run("should reject a prompt above the maximum length", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")

		f := newFixture(t, sonar)
		prompt := strings.Repeat("海", domain.MaxPromptLength+1)
		w := f.do(http.MethodPost, "/v1/ratings", domain.RatingRequest{Prompt: prompt, GeneratedText: "Waves crash on the shore..."})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "must not exceed 2000 characters")
	})

	t.Run("should count prompt length in characters", func(t *testing.T) {
		prompt := strings.Repeat("海", domain.MaxPromptLength)
		multibyte := domain.RatingRequest{Prompt: prompt, GeneratedText: "Waves crash on the shore..."}
		sonar := mocks.NewRatingProvider(t, "sonar")
		sonar.On("Rate", mock.Anything, multibyte).Return(validRating, nil)

		f := newFixture(t, sonar)
		w := f.do(http.MethodPost, "/v1/ratings", multibyte)

		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should reject malformed body", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.routes.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/ratings", bytes.NewBufferString("{not json")))

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "invalid request body")
	})

	t.Run("should report unavailable when no providers are configured", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/v1/ratings", req)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("should reject other methods", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/v1/ratings", nil)

		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleEvaluate(t *testing.T) {
	t.Run("should generate rate and record", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")
		sonar.On("Rate", mock.Anything, mock.Anything).Return(validRating, nil)

		f := newFixture(t, sonar)
		f.generator.On("Generate", mock.Anything, domain.GenerationRequest{
			Prompt:       "Write a haiku about the sea",
			TargetLength: domain.DefaultTargetLength,
			Style:        domain.DefaultStyle,
		}).Return("Waves crash on the shore...", nil)

		w := f.do(http.MethodPost, "/v1/evaluations", domain.GenerationRequest{Prompt: "Write a haiku about the sea"})

		require.Equal(t, http.StatusOK, w.Code)
		var evaluation domain.Evaluation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&evaluation))
		require.NotEmpty(t, evaluation.ID)
		require.Equal(t, "Waves crash on the shore...", evaluation.GeneratedText)
		require.Equal(t, 8, evaluation.Ratings["sonar"].Overall)

		recorded, err := f.store.List(context.Background())
		require.NoError(t, err)
		require.Len(t, recorded, 1)
	})

	t.Run("should reject short prompt", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/v1/evaluations", domain.GenerationRequest{Prompt: "short"})

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "at least")
	})

	t.Run("should return internal error when generation fails", func(t *testing.T) {
		sonar := mocks.NewRatingProvider(t, "sonar")
		f := newFixture(t, sonar)
		f.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream down"))

		w := f.do(http.MethodPost, "/v1/evaluations", domain.GenerationRequest{Prompt: "Write a haiku about the sea"})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		require.Contains(t, decodeError(t, w)["error"], "generation failed")
	})
}

func TestHandleHistoryAndExport(t *testing.T) {
	seed := func(t *testing.T, f *fixture) {
		t.Helper()
		require.NoError(t, f.store.Append(context.Background(), domain.Evaluation{
			ID:            "eval-1",
			Prompt:        "Write about cats, dogs",
			TargetLength:  "short",
			Style:         "Humorous",
			GeneratedText: "Cats nap.",
			Ratings: domain.AggregateResult{
				"sonar": {Clarity: 8, Relevance: 9, Coherence: 8, Creativity: 7, Overall: 8},
			},
		}))
	}

	t.Run("should list recorded evaluations", func(t *testing.T) {
		f := newFixture(t)
		seed(t, f)

		w := f.do(http.MethodGet, "/v1/evaluations", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var evaluations []domain.Evaluation
		require.NoError(t, json.NewDecoder(w.Body).Decode(&evaluations))
		require.Len(t, evaluations, 1)
		require.Equal(t, "eval-1", evaluations[0].ID)
	})

	t.Run("should download history as csv attachment", func(t *testing.T) {
		f := newFixture(t)
		seed(t, f)

		w := f.do(http.MethodGet, "/v1/evaluations/export", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		require.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"generated_text_evaluation_")
		require.Contains(t, w.Body.String(), `"Write about cats, dogs"`)
	})

	t.Run("should download a single evaluation", func(t *testing.T) {
		f := newFixture(t)
		seed(t, f)

		w := f.do(http.MethodGet, "/v1/evaluations/eval-1/export", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "Metric,Value")
		require.Contains(t, w.Body.String(), "sonar overall rating,8")
	})

	t.Run("should return not found for unknown evaluation", func(t *testing.T) {
		f := newFixture(t)

		w := f.do(http.MethodGet, "/v1/evaluations/missing/export", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandleProvidersAndHealth(t *testing.T) {
	f := newFixture(t, mocks.NewRatingProvider(t, "sonar"), mocks.NewRatingProvider(t, "llama"))

	t.Run("should list providers sorted", func(t *testing.T) {
		w := f.do(http.MethodGet, "/v1/providers", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Equal(t, []string{"llama", "sonar"}, body["providers"])
	})

	t.Run("should describe generation options", func(t *testing.T) {
		w := f.do(http.MethodGet, "/v1/options", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Styles          []string `json:"styles"`
			MinPromptLength int      `json:"minPromptLength"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Contains(t, body.Styles, domain.DefaultStyle)
		require.Equal(t, domain.MinPromptLength, body.MinPromptLength)
	})

	t.Run("should report healthy", func(t *testing.T) {
		w := f.do(http.MethodGet, "/health", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "healthy")
	})
}
