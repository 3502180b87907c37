package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"coffee-shop/internal/integrations/paramstore"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// Client is a single-prompt text completion client for any OpenAI-compatible
// chat completions endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	getter     paramstore.Getter
	tokenParam string
	apiKey     string

	mu  sync.Mutex
	api *openai.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIKey skips Parameter Store and uses key directly.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient creates a Client for model. Unless WithAPIKey is given, the API
// key is read from the {"token": "..."} parameter tokenParam on first
// successful use and reused for the lifetime of the process.
func NewClient(getter paramstore.Getter, tokenParam, model string, opts ...Option) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("genai: model must not be empty")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		getter:     getter,
		tokenParam: strings.TrimSpace(tokenParam),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" && (getter == nil || c.tokenParam == "") {
		return nil, errors.New("genai: either an API key or a paramstore getter and token parameter is required")
	}
	return c, nil
}

func newAPI(key, baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

func (c *Client) resolveAPI(ctx context.Context) (*openai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}

	key := c.apiKey
	if key == "" {
		var err error
		key, err = paramstore.Token(ctx, c.getter, c.tokenParam)
		if err != nil {
			// Not cached: the next call retries Parameter Store.
			return nil, fmt.Errorf("genai: resolve api key: %w", err)
		}
	}
	c.api = newAPI(key, c.baseURL, c.httpClient)
	return c.api, nil
}

// Complete sends prompt as a single user message and returns the text of the
// first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("genai: prompt must not be empty")
	}
	api, err := c.resolveAPI(ctx)
	if err != nil {
		return "", err
	}

	resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		if status, ok := StatusCode(err); ok {
			return "", fmt.Errorf("genai: chat completion: status %d: %w", status, err)
		}
		return "", fmt.Errorf("genai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("genai: no choices in response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("genai: empty completion")
	}
	return text, nil
}

// StatusCode extracts the upstream HTTP status from a Complete error, if any.
func StatusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
