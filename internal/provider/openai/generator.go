// Package openai provides the text generator backed by the official OpenAI SDK.
// It implements domain.TextGenerator and converts between domain messages and
// SDK parameters.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/judgepanel/internal/domain"
	"github.com/davidbz/judgepanel/internal/observability"
)

// Generator implements the domain.TextGenerator interface for OpenAI.
type Generator struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewGenerator creates a new OpenAI text generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.APIKey == "" {
		return nil, errors.New("generator API key is required")
	}

	if config.Model == "" {
		return nil, errors.New("generator model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	if config.MaxRetries >= 0 {
		opts = append(opts, option.WithMaxRetries(config.MaxRetries))
	}

	return &Generator{
		client:      openai.NewClient(opts...),
		model:       config.Model,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
	}, nil
}

// Model returns the model used for generation.
func (g *Generator) Model() string {
	return g.model
}

// Generate produces text for the prompt honoring its length and style controls.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if req.Prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", g.model))

	resp, err := g.client.Chat.Completions.New(ctx, g.toSDKParams(domain.BuildGenerationMessages(req)))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	if len(resp.Choices) == 0 {
		return "", domain.ErrEmptyGeneration
	}

	return resp.Choices[0].Message.Content, nil
}

// toSDKParams converts domain messages to SDK ChatCompletionNewParams.
func (g *Generator) toSDKParams(msgs []domain.Message) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, len(msgs))
	for i, msg := range msgs {
		switch msg.Role {
		case "system":
			messages[i] = openai.SystemMessage(msg.Content)
		case "assistant":
			messages[i] = openai.AssistantMessage(msg.Content)
		default:
			messages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: messages,
	}

	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}

	if g.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.maxTokens))
	}

	return params
}
