package router

import (
	"context"
	"log/slog"

	"github.com/fennwald/loreweave/internal/observe"
	"github.com/fennwald/loreweave/internal/world"
	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// Route classifies userText into a [QuerySpec].
//
// The backend is called at most twice: once with the full classification
// prompt, and once more with a retry notice if the first reply could not be
// extracted or validated. If both attempts fail the deterministic
// [FallbackQuerySpec] is returned. Route itself never returns an error;
// backend failures are treated the same as malformed replies.
func Route(ctx context.Context, gen llm.Generator, userText string, npcCtx NPCContext, hints world.Hints) QuerySpec {
	userBlock := queryUserBlock(userText, npcCtx, hints)

	prompt := querySystemPrompt + "\n\n" + querySchemaPrompt + "\n\n" + userBlock
	if spec, ok := tryRouteQuery(ctx, gen, prompt); ok {
		return spec
	}

	slog.Debug("query routing attempt failed, retrying", "npc", npcCtx.NPCID)
	retryPrompt := querySystemPrompt + "\n\n" + retryNotice + "\n\n" + userBlock
	if spec, ok := tryRouteQuery(ctx, gen, retryPrompt); ok {
		return spec
	}

	slog.Warn("query routing failed twice, using fallback", "npc", npcCtx.NPCID)
	observe.DefaultMetrics().RecordRouterFallback(ctx, "query")
	return FallbackQuerySpec(userText)
}

func tryRouteQuery(ctx context.Context, gen llm.Generator, prompt string) (QuerySpec, bool) {
	raw, err := gen.Generate(ctx, prompt)
	if err != nil {
		slog.Debug("query routing backend call failed", "error", err)
		return QuerySpec{}, false
	}
	blob := extractJSON(raw)
	if blob == "" {
		return QuerySpec{}, false
	}
	spec, err := ParseQuerySpec([]byte(blob))
	if err != nil {
		slog.Debug("query routing reply rejected", "error", err)
		return QuerySpec{}, false
	}
	return spec, true
}
