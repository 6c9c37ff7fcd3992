package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// ErrAllBackendsFailed is returned when every chained backend fails or has an
// open breaker.
var ErrAllBackendsFailed = errors.New("resilience: all generation backends failed")

// Compile-time interface check.
var _ llm.Generator = (*FallbackGenerator)(nil)

// backendEntry pairs a generation backend with its dedicated breaker.
type backendEntry struct {
	name    string
	gen     llm.Generator
	breaker *Breaker
}

// FallbackGenerator implements [llm.Generator] with failover across several
// backends. Backends are tried in registration order; an entry with an open
// breaker is skipped without a call.
type FallbackGenerator struct {
	entries []backendEntry
	cfg     BreakerConfig
}

// NewFallbackGenerator creates a [FallbackGenerator] with primary as the
// preferred backend. Every registered backend gets its own breaker built from
// cfg, labelled with the backend's name.
func NewFallbackGenerator(name string, primary llm.Generator, cfg BreakerConfig) *FallbackGenerator {
	f := &FallbackGenerator{cfg: cfg}
	f.add(name, primary)
	return f
}

// AddFallback registers an additional backend, tried after all earlier ones.
func (f *FallbackGenerator) AddFallback(name string, gen llm.Generator) {
	f.add(name, gen)
}

func (f *FallbackGenerator) add(name string, gen llm.Generator) {
	cfg := f.cfg
	cfg.Name = name
	f.entries = append(f.entries, backendEntry{
		name:    name,
		gen:     gen,
		breaker: NewBreaker(cfg),
	})
}

// Generate implements [llm.Generator]. The first healthy backend answers;
// when all fail the last error is wrapped in [ErrAllBackendsFailed].
func (f *FallbackGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i := range f.entries {
		e := &f.entries[i]
		var out string
		err := e.breaker.Do(func() error {
			var genErr error
			out, genErr = e.gen.Generate(ctx, prompt)
			return genErr
		})
		if err == nil {
			return out, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping generation backend, breaker open", "backend", e.name)
		} else {
			slog.Warn("generation backend failed, trying next", "backend", e.name, "error", err)
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}
