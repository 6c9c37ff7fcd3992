package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fennwald/loreweave/internal/resilience"
	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// countingGenerator records calls and answers or fails deterministically.
type countingGenerator struct {
	reply string
	err   error
	calls int
}

func (g *countingGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

var _ llm.Generator = (*countingGenerator)(nil)

func TestFallbackGeneratorPrimaryAnswers(t *testing.T) {
	primary := &countingGenerator{reply: "from primary"}
	fallback := &countingGenerator{reply: "from fallback"}

	fg := resilience.NewFallbackGenerator("primary", primary, resilience.BreakerConfig{})
	fg.AddFallback("fallback", fallback)

	got, err := fg.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "from primary" {
		t.Errorf("Generate() = %q, want %q", got, "from primary")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestFallbackGeneratorFailsOver(t *testing.T) {
	primary := &countingGenerator{err: errors.New("primary down")}
	fallback := &countingGenerator{reply: "from fallback"}

	fg := resilience.NewFallbackGenerator("primary", primary, resilience.BreakerConfig{})
	fg.AddFallback("fallback", fallback)

	got, err := fg.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "from fallback" {
		t.Errorf("Generate() = %q, want %q", got, "from fallback")
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
}

func TestFallbackGeneratorAllFail(t *testing.T) {
	primary := &countingGenerator{err: errors.New("primary down")}
	fallback := &countingGenerator{err: errors.New("fallback down")}

	fg := resilience.NewFallbackGenerator("primary", primary, resilience.BreakerConfig{})
	fg.AddFallback("fallback", fallback)

	_, err := fg.Generate(context.Background(), "hello")
	if !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Fatalf("Generate() error = %v, want ErrAllBackendsFailed", err)
	}
}

func TestFallbackGeneratorSkipsOpenBreaker(t *testing.T) {
	primary := &countingGenerator{err: errors.New("primary down")}
	fallback := &countingGenerator{reply: "from fallback"}

	fg := resilience.NewFallbackGenerator("primary", primary, resilience.BreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})
	fg.AddFallback("fallback", fallback)

	// Trip the primary's breaker.
	for i := 0; i < 3; i++ {
		if _, err := fg.Generate(context.Background(), "hello"); err != nil {
			t.Fatalf("Generate() %d error = %v", i, err)
		}
	}
	callsWhenTripped := primary.calls

	if _, err := fg.Generate(context.Background(), "hello"); err != nil {
		t.Fatalf("Generate() after trip error = %v", err)
	}
	if primary.calls != callsWhenTripped {
		t.Errorf("primary called %d times after breaker opened, want %d", primary.calls, callsWhenTripped)
	}
}
