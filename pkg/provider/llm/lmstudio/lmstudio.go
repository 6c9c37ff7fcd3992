// Package lmstudio provides an [llm.Generator] backed by a local LM Studio
// server, which exposes an OpenAI-compatible chat-completions API.
//
// The implementation reuses the official OpenAI Go SDK pointed at the local
// base URL, so any other OpenAI-compatible local server (llama.cpp's server,
// vLLM, LocalAI) works as well.
package lmstudio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// DefaultBaseURL is the default LM Studio API endpoint.
const DefaultBaseURL = "http://localhost:1234/v1"

// defaultTimeout bounds a single completion request. Local models can be slow
// on large prompts, so this is deliberately generous.
const defaultTimeout = 60 * time.Second

// Compile-time interface check.
var _ llm.Generator = (*Generator)(nil)

// Generator implements [llm.Generator] against an LM Studio server.
type Generator struct {
	client oai.Client
	model  string
}

// config holds optional configuration collected from functional options.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for [New].
type Option func(*config)

// WithBaseURL overrides [DefaultBaseURL]. The URL must include the /v1 suffix.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New constructs a Generator talking to an LM Studio server.
//
// model must match a model loaded in LM Studio. No API key is required for a
// local server; a placeholder key is sent because the SDK insists on one.
func New(model string, opts ...Option) (*Generator, error) {
	if model == "" {
		return nil, fmt.Errorf("lmstudio: model must not be empty")
	}

	cfg := &config{baseURL: DefaultBaseURL, timeout: defaultTimeout}
	for _, o := range opts {
		o(cfg)
	}

	client := oai.NewClient(
		option.WithAPIKey("lm-studio"),
		option.WithBaseURL(cfg.baseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	)
	return &Generator{client: client, model: model}, nil
}

// Generate implements [llm.Generator].
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("lmstudio: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("lmstudio: empty choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
