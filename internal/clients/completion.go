package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/octobees/geosearch/internal/metrics"
)

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.New("no response from language model")

// OpenAICompleter sends single-turn prompts to an OpenAI compatible chat endpoint (OpenAI, Groq).
type OpenAICompleter struct {
	client  openai.Client
	model   string
	metrics *metrics.Metrics
}

// NewOpenAICompleter builds a completer. An empty baseURL targets api.openai.com.
func NewOpenAICompleter(httpClient *http.Client, baseURL, apiKey, model string, m *metrics.Metrics) *OpenAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		// relative endpoints resolve against the last path segment
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAICompleter{
		client:  openai.NewClient(opts...),
		model:   model,
		metrics: m,
	}
}

// Complete returns the content of the first choice.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		c.metrics.ObserveAPICall(metrics.APICompletion, "error", time.Since(start))
		return "", fmt.Errorf("chat completion: %w", err)
	}
	c.metrics.ObserveAPICall(metrics.APICompletion, "ok", time.Since(start))

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}

// GeminiCompleter sends single-turn prompts to the Gemini API.
type GeminiCompleter struct {
	client  *genai.Client
	model   string
	metrics *metrics.Metrics
}

// NewGeminiCompleter builds a Gemini completer. baseURL overrides the API endpoint when set.
func NewGeminiCompleter(ctx context.Context, httpClient *http.Client, baseURL, apiKey, model string, m *metrics.Metrics) (*GeminiCompleter, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model, metrics: m}, nil
}

// Complete returns the concatenated text parts of the first candidate.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		c.metrics.ObserveAPICall(metrics.APICompletion, "error", time.Since(start))
		return "", fmt.Errorf("generate content: %w", err)
	}
	c.metrics.ObserveAPICall(metrics.APICompletion, "ok", time.Since(start))

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyCompletion
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyCompletion
	}
	return sb.String(), nil
}
