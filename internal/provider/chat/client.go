// Package chat provides the rating client for OpenAI-style chat completion
// endpoints. Each provider keeps its own response envelope; see envelope.go.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
)

const maxErrorBody = 512

// Client sends rating requests to one provider.
type Client struct {
	config     domain.ProviderConfig
	envelope   Envelope
	httpClient *http.Client
}

// NewClient creates a rating client for the given provider. It fails with a
// *domain.ConfigurationError when the configuration is incomplete.
// A nil httpClient uses a client with the transport's default timeouts.
func NewClient(config domain.ProviderConfig, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		envelope:   EnvelopeFor(config.ID),
		httpClient: httpClient,
	}, nil
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.config.ID
}

// Rate sends one non-streaming rating request and returns the answer text
// found in the provider's envelope. A single attempt is made.
func (c *Client) Rate(ctx context.Context, req domain.RatingRequest) (string, error) {
	logger := observability.FromContext(ctx)

	reqBody, err := json.Marshal(domain.ChatRequest{
		Model:    c.config.Model,
		Messages: domain.BuildRatingMessages(req),
	})
	if err != nil {
		return "", c.transportError(0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", c.transportError(0, "failed to create request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	logger.Debug("calling rating provider",
		observability.String("endpoint", c.config.Endpoint),
		observability.String("model", c.config.Model))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.transportError(0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.transportError(resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", c.transportError(resp.StatusCode, errorMessage(body), nil)
	}

	text, ok := c.envelope(body)
	if !ok {
		return "", &domain.ParseError{
			Provider: c.config.ID,
			Payload:  string(body),
			Err:      ErrEnvelopeMismatch,
		}
	}

	logger.Debug("rating provider answered", observability.Int("answer_length", len(text)))
	return text, nil
}

func (c *Client) transportError(status int, message string, err error) error {
	return &domain.TransportError{
		Provider:   c.config.ID,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

func errorMessage(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return fmt.Sprintf("unexpected response: %s", msg)
}
