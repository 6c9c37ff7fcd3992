package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/fennwald/loreweave/internal/observe"
	"github.com/fennwald/loreweave/internal/trace"
	"github.com/fennwald/loreweave/internal/world"
	"github.com/fennwald/loreweave/pkg/provider/llm"
)

// Pipeline executes dialogue turns against a fixed set of collaborators.
// Construct once with [New]; safe for sequential turn processing while the
// trace recorder is polled concurrently.
type Pipeline struct {
	gen      llm.Generator
	graph    *world.Graph
	facts    *world.FactStore
	recorder *trace.Recorder
	metrics  *observe.Metrics
}

// stage is one named pipeline step.
type stage struct {
	name string
	run  func(ctx context.Context, s *State) error
}

// New builds a Pipeline. recorder may be a disabled recorder; metrics may be
// nil to use the process default.
func New(gen llm.Generator, graph *world.Graph, facts *world.FactStore, recorder *trace.Recorder, metrics *observe.Metrics) *Pipeline {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	return &Pipeline{
		gen:      gen,
		graph:    graph,
		facts:    facts,
		recorder: recorder,
		metrics:  metrics,
	}
}

// Execute runs one turn through the fixed stage order:
//
//	load_context → graph_retrieval → vector_retrieval → build_prompt →
//	call_llm → format_response
//
// The order is a data dependency chain, not a free topology: vector
// retrieval consumes the neighbor ids graph retrieval produced. After each
// stage the trace recorder captures a state snapshot; tracing never affects
// control flow. An error from any stage aborts the turn — except call_llm,
// which absorbs backend failures into the response text so formatting still
// completes.
func (p *Pipeline) Execute(ctx context.Context, s *State) (*State, error) {
	stages := []stage{
		{"load_context", p.loadContext},
		{"graph_retrieval", p.graphRetrieval},
		{"vector_retrieval", p.vectorRetrieval},
		{"build_prompt", p.buildPrompt},
		{"call_llm", p.callLLM},
		{"format_response", p.formatResponse},
	}

	for _, st := range stages {
		stageCtx, span := observe.StartSpan(ctx, "pipeline."+st.name)
		start := time.Now()
		err := st.run(stageCtx, s)
		p.metrics.RecordStage(stageCtx, st.name, time.Since(start))
		span.End()
		if err != nil {
			return nil, fmt.Errorf("dialogue: stage %s: %w", st.name, err)
		}
		p.recorder.Record(st.name, s.snapshot())
	}

	p.metrics.RecordTurn(ctx, s.NPC.ContextID())
	return s, nil
}
