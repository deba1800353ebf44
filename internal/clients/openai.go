package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the provider answers 2xx but the first
// choice carries no message text.
var ErrEmptyResponse = errors.New("openai returned no message content")

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai status %d: %s", e.StatusCode, e.Body)
}

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for baseURL (e.g. https://api.openai.com/v1).
// httpClient is shared across requests and must be safe for concurrent use.
func NewOpenAIClient(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Complete sends req and returns the first choice's message content verbatim.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", toStatusError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func toStatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return fmt.Errorf("openai chat completion: %w", err)
}
