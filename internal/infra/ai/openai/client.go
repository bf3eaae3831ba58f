package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domai "github.com/bryanwahyu/chartsight/internal/domain/ai"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 1024
)

// Client calls the vision-capable chat-completion endpoint. Implements the
// domain ai.Client port.
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
}

func NewClient(apiKey, model string) *Client {
	return &Client{api: openai.NewClient(apiKey), apiKey: apiKey, model: model}
}

// Analyze sends the prompt as the system message and the chart image as a
// data-URI image part, and returns the raw completion text. Every failure
// mode (transport, non-2xx, missing content in the envelope) surfaces as a
// domain error carrying the raw body; an empty analysis is never returned
// silently.
func (c *Client) Analyze(ctx context.Context, prompt, imageDataURI string) (string, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		// Fail fast instead of sending an unauthenticated request.
		return "", domai.ErrMissingAPIKey
	}

	model := c.model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: imageDataURI},
				},
			}},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.HTTPStatusCode == 429 {
				return "", fmt.Errorf("%w: %s", domai.ErrQuotaExceeded, apiErr.Message)
			}
			return "", &domai.RequestError{
				StatusCode: apiErr.HTTPStatusCode,
				Body:       apiErr.Message,
				Err:        err,
			}
		}
		// Network failure, timeout, cancelled context.
		return "", &domai.RequestError{Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		body, _ := json.Marshal(resp)
		return "", &domai.RequestError{
			StatusCode: 200,
			Body:       string(body),
			Err:        errors.New("completion envelope has no message content"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}
