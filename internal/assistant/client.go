package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultModel = "gpt-4o-mini"

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

// Client wraps the hosted model's chat-completions API. All task
// understanding is delegated to the model; the client only shuttles text.
type Client struct {
	cfg    Config
	client openai.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	// Failures surface to the user once; the SDK's automatic retries are
	// disabled so a failed attempt stays a single failed attempt.
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	return &Client{
		cfg:    cfg,
		client: openai.NewClient(opts...),
	}
}

// Respond sends the user's free-text input under the task-intent system
// prompt and returns the model's raw reply text.
func (c *Client) Respond(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", errors.New("input is required")
	}
	model := strings.TrimSpace(c.cfg.Model)
	if model == "" {
		model = defaultModel
	}
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(input),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	reply := completion.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return reply, nil
}
