package router

import (
	"context"
	"log/slog"

	"github.com/fennwald/loreweave/internal/observe"
	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// RouteGraph classifies whether and how to traverse the world graph for
// userText, given the entities already extracted by [Route] and the edge
// types the world actually contains.
//
// Same retry shape as [Route]: at most two backend calls, then the
// deterministic [FallbackGraphQuerySpec]. The fallback means "skip graph
// retrieval", never a guessed traversal.
func RouteGraph(ctx context.Context, gen llm.Generator, userText string, entities []ExtractedEntity, availableEdgeTypes []string) GraphQuerySpec {
	userBlock := graphUserBlock(userText, entities, availableEdgeTypes)

	prompt := graphSystemPrompt + "\n\n" + graphSchemaPrompt + "\n\n" + userBlock
	if spec, ok := tryRouteGraph(ctx, gen, prompt); ok {
		return spec
	}

	slog.Debug("graph routing attempt failed, retrying")
	retryPrompt := graphSystemPrompt + "\n\n" + retryNotice + "\n\n" + userBlock
	if spec, ok := tryRouteGraph(ctx, gen, retryPrompt); ok {
		return spec
	}

	slog.Warn("graph routing failed twice, skipping graph retrieval")
	observe.DefaultMetrics().RecordRouterFallback(ctx, "graph")
	return FallbackGraphQuerySpec()
}

func tryRouteGraph(ctx context.Context, gen llm.Generator, prompt string) (GraphQuerySpec, bool) {
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		slog.Debug("graph routing backend call failed", "error", err)
		return GraphQuerySpec{}, false
	}
	blob := extractJSON(raw)
	if blob == "" {
		return GraphQuerySpec{}, false
	}
	spec, err := ParseGraphQuerySpec([]byte(blob))
	if err != nil {
		slog.Debug("graph routing reply rejected", "error", err)
		return GraphQuerySpec{}, false
	}
	return spec, true
}
