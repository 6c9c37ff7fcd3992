// Package mock provides a test double for the llm.Generator interface.
//
// Use Generator in unit tests to feed controlled, canned responses without a
// live backend and to inspect the prompts the code under test produced.
//
// Example:
//
//	g := &mock.Generator{Responses: []string{`{"intent":"SMALLTALK", ...}`}}
//	out, err := g.Generate(ctx, prompt)
package mock

import (
	"context"
	"sync"

	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// Compile-time interface check.
var _ llm.Generator = (*Generator)(nil)

// Generator is a mock implementation of [llm.Generator].
//
// Each call to Generate consumes the next entry of Responses; when Responses
// is exhausted the last entry is repeated. Set Err to make every call fail
// instead. Generator is safe for concurrent use.
type Generator struct {
	mu sync.Mutex

	// Responses is the sequence of canned response texts, consumed in order.
	// An empty slice yields empty strings.
	Responses []string

	// Err, if non-nil, is returned by every Generate call.
	Err error

	// Prompts records every prompt passed to Generate, in call order.
	Prompts []string

	// calls counts completed Generate invocations.
	calls int
}

// Generate implements [llm.Generator].
func (g *Generator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}

	if len(g.Responses) == 0 {
		return "", nil
	}
	idx := g.calls
	if idx >= len(g.Responses) {
		idx = len(g.Responses) - 1
	}
	g.calls++
	return g.Responses[idx], nil
}

// CallCount returns the number of completed Generate invocations.
func (g *Generator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
