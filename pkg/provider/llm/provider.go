// Package llm defines the Generator interface for generative text backends.
//
// A generator wraps a remote or local model API (e.g., a hosted Gemini or
// OpenAI deployment, or a local LM Studio server) and exposes a single
// prompt-in/text-out method so that the dialogue pipeline and the routers
// stay decoupled from any specific SDK.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import "context"

// Generator is the abstraction over any generative text backend.
//
// Generate sends a fully assembled prompt to the model and returns the raw
// response text. It blocks until the backend responds, the configured request
// timeout elapses, or ctx is cancelled.
//
// Errors indicate backend unavailability: connection failure, timeout, or a
// non-success API response. Callers own their retry policy; implementations
// must not retry internally.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to the [Generator] interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate implements [Generator].
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
