// Package mock provides a test double for the embeddings.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/fennwald/loreweave/pkg/provider/embeddings"
)

// Compile-time interface check.
var _ embeddings.Provider = (*Provider)(nil)

// Provider is a mock implementation of embeddings.Provider.
//
// When Vector is nil, deterministic vectors are derived from the input text
// length so distinct texts still produce distinct embeddings. Safe for
// concurrent use.
type Provider struct {
	mu sync.Mutex

	// Vector, when non-nil, is returned for every Embed call.
	Vector []float32

	// Err, if non-nil, is returned by every call.
	Err error

	// Dims is returned by Dimensions. Defaults to 4 when zero.
	Dims int

	// Texts records every text passed to Embed or EmbedBatch.
	Texts []string
}

// Embed implements embeddings.Provider.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Texts = append(p.Texts, text)
	if p.Err != nil {
		return nil, p.Err
	}
	return p.vectorFor(text), nil
}

// EmbedBatch implements embeddings.Provider.
func (p *Provider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Texts = append(p.Texts, texts...)
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.vectorFor(t)
	}
	return out, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	if p.Dims == 0 {
		return 4
	}
	return p.Dims
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string { return "mock" }

// vectorFor derives a deterministic vector from text. Caller holds p.mu.
func (p *Provider) vectorFor(text string) []float32 {
	if p.Vector != nil {
		out := make([]float32, len(p.Vector))
		copy(out, p.Vector)
		return out
	}
	dims := p.Dims
	if dims == 0 {
		dims = 4
	}
	out := make([]float32, dims)
	for i := range out {
		out[i] = float32(len(text)%(i+7)) / 7
	}
	return out
}
