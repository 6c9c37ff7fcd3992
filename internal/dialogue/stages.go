package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fennwald/loreweave/internal/retrieval"
	"github.com/fennwald/loreweave/internal/router"
	"github.com/fennwald/loreweave/internal/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Retrieval depths and limits applied to every turn.
const (
	semanticSearchK   = 5
	entityFactLimit   = 3
	neighborFactLimit = 2
	neighborDepth     = 1
)

// loadContext renders the NPC profile into the system prompt.
func (p *Pipeline) loadContext(_ context.Context, s *State) error {
	if s.NPC.Name == "" {
		s.SystemPrompt = ""
		return nil
	}
	s.SystemPrompt = s.NPC.SystemPrompt()
	return nil
}

// graphRetrieval classifies the turn and expands the graph neighborhood of
// the entities the user mentioned.
func (p *Pipeline) graphRetrieval(ctx context.Context, s *State) error {
	npcCtx := router.NPCContext{
		NPCID:       s.NPC.ContextID(),
		NPCName:     s.NPC.Name,
		NPCLocation: s.NPC.Location,
	}

	s.QuerySpec = router.Route(ctx, p.gen, s.UserInput, npcCtx, p.facts.WorldHints())
	slog.Info("routed query",
		"intent", s.QuerySpec.Intent,
		"query", s.QuerySpec.QueryText,
	)

	s.GraphQuerySpec = router.RouteGraph(ctx, p.gen, s.UserInput, s.QuerySpec.Entities, router.EdgeVocabulary)
	slog.Info("routed graph query",
		"graph_intent", s.GraphQuerySpec.GraphIntent,
		"edge_types", strings.Join(s.GraphQuerySpec.EdgeTypes, ","),
	)

	s.GraphFacts = []string{}
	s.GraphNeighborIDs = []string{}
	if s.GraphQuerySpec.GraphIntent == router.GraphNone {
		return nil
	}

	names := make([]string, 0, len(s.QuerySpec.Entities))
	for _, e := range s.QuerySpec.Entities {
		names = append(names, e.Name)
	}
	if len(names) == 0 && s.NPC.Name != "" {
		names = []string{s.NPC.Name}
	}

	seenNeighbors := make(map[string]struct{})
	for _, entityID := range p.facts.ResolveEntityIDs(names) {
		for _, edge := range p.graph.Neighbors(entityID, s.GraphQuerySpec.EdgeTypes, neighborDepth) {
			s.GraphFacts = append(s.GraphFacts, p.renderEdge(edge))
			if _, ok := seenNeighbors[edge.TargetID]; !ok {
				seenNeighbors[edge.TargetID] = struct{}{}
				s.GraphNeighborIDs = append(s.GraphNeighborIDs, edge.TargetID)
			}
		}
	}

	if len(s.GraphFacts) > 0 {
		slog.Debug("graph retrieval collected facts", "count", len(s.GraphFacts))
	}
	return nil
}

// renderEdge turns an edge into a one-line statement, "Aldric located in
// Crooked Tavern (since=Y402)". Unknown endpoints fall back to their ids.
func (p *Pipeline) renderEdge(edge world.Edge) string {
	sourceName := edge.SourceID
	if e, ok := p.graph.Entity(edge.SourceID); ok {
		sourceName = e.Name
	}
	targetName := edge.TargetID
	if e, ok := p.graph.Entity(edge.TargetID); ok {
		targetName = e.Name
	}
	relation := strings.ReplaceAll(strings.ToLower(edge.Type), "_", " ")

	if len(edge.Properties) == 0 {
		return fmt.Sprintf("%s %s %s", sourceName, relation, targetName)
	}
	props := make([]string, 0, len(edge.Properties))
	for _, key := range slices.Sorted(maps.Keys(edge.Properties)) {
		props = append(props, key+"="+edge.Properties[key])
	}
	return fmt.Sprintf("%s %s %s (%s)", sourceName, relation, targetName, strings.Join(props, ", "))
}

// vectorRetrieval gathers semantic, entity-linked, and neighbor-linked facts
// and fuses them. The semantic index query runs concurrently with the local
// structural lookups; fusion afterwards keeps the fixed priority order.
func (p *Pipeline) vectorRetrieval(ctx context.Context, s *State) error {
	if !s.QuerySpec.NeedsRetrieval {
		slog.Info("vector retrieval skipped", "reason", "needs_retrieval=false")
		s.RetrievalResults = []retrieval.Hit{}
		return nil
	}

	queryText := s.QuerySpec.QueryText
	if queryText == "" {
		queryText = s.UserInput
	}

	var semanticHits []retrieval.Hit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := p.facts.Search(gctx, queryText, semanticSearchK)
		if err != nil {
			p.metrics.RecordBackendError(gctx, "semindex")
			return err
		}
		semanticHits = hits
		return nil
	})

	var entityHits []retrieval.Hit
	names := make([]string, 0, len(s.QuerySpec.Entities))
	for _, e := range s.QuerySpec.Entities {
		names = append(names, e.Name)
	}
	for _, entityID := range p.facts.ResolveEntityIDs(names) {
		entityHits = append(entityHits, p.facts.FactsForEntity(entityID, entityFactLimit)...)
	}

	var neighborHits []retrieval.Hit
	for _, neighborID := range s.GraphNeighborIDs {
		neighborHits = append(neighborHits, p.facts.FactsForEntity(neighborID, neighborFactLimit)...)
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("semantic search: %w", err)
	}

	s.RetrievalResults = retrieval.Fuse(semanticHits, entityHits, neighborHits)
	slog.Info("vector retrieval fused hits",
		"semantic", len(semanticHits),
		"entity", len(entityHits),
		"neighbor", len(neighborHits),
		"fused", len(s.RetrievalResults),
	)
	return nil
}

// buildPrompt assembles the full generation prompt from the system prompt,
// conversation history, retrieved knowledge, and the user message.
func (p *Pipeline) buildPrompt(_ context.Context, s *State) error {
	var b strings.Builder
	b.WriteString(s.SystemPrompt)

	if s.ConversationHistory != "" {
		b.WriteString("\n\n")
		b.WriteString(s.ConversationHistory)
	}

	if len(s.GraphFacts) > 0 || len(s.RetrievalResults) > 0 {
		b.WriteString("\n\nRelevant world knowledge:\n")
		for _, fact := range s.GraphFacts {
			b.WriteString("- ")
			b.WriteString(fact)
			b.WriteString("\n")
		}
		for _, hit := range s.RetrievalResults {
			b.WriteString("- ")
			b.WriteString(hit.Text)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nHuman: ")
	b.WriteString(s.UserInput)
	b.WriteString("\nAI:")

	s.FullPrompt = b.String()
	return nil
}

// callLLM invokes the generative backend. This is the one stage that never
// propagates an error: a failure becomes a bracketed error string in the
// response so the rest of the turn still completes.
func (p *Pipeline) callLLM(ctx context.Context, s *State) error {
	if s.FullPrompt == "" {
		s.RawResponse = "[Error generating response: full prompt is empty]"
		return nil
	}

	start := time.Now()
	response, err := p.gen.Generate(ctx, s.FullPrompt)
	p.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("purpose", "generation")),
	)
	if err != nil {
		p.metrics.RecordBackendError(ctx, "llm")
		slog.Error("generation call failed", "error", err)
		s.RawResponse = fmt.Sprintf("[Error generating response: %v]", err)
		return nil
	}
	s.RawResponse = response
	return nil
}

// formatResponse post-processes the raw response for presentation.
func (p *Pipeline) formatResponse(_ context.Context, s *State) error {
	s.FormattedResponse = strings.TrimSpace(s.RawResponse)
	return nil
}
