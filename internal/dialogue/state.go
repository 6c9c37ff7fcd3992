// Package dialogue runs one NPC dialogue turn through the fixed retrieval
// and generation pipeline.
package dialogue

import (
	"github.com/fennwald/loreweave/internal/npc"
	"github.com/fennwald/loreweave/internal/retrieval"
	"github.com/fennwald/loreweave/internal/router"
)

// State is the working record of one dialogue turn. Stages add the fields
// they produce; fields are readable by all later stages and never removed.
type State struct {
	// Set before the turn starts.
	NPC                 npc.NPC
	UserInput           string
	ConversationHistory string

	// Written by load_context.
	SystemPrompt string

	// Written by graph_retrieval.
	QuerySpec        router.QuerySpec
	GraphQuerySpec   router.GraphQuerySpec
	GraphFacts       []string
	GraphNeighborIDs []string

	// Written by vector_retrieval.
	RetrievalResults []retrieval.Hit

	// Written by build_prompt.
	FullPrompt string

	// Written by call_llm and format_response.
	RawResponse       string
	FormattedResponse string
}

// snapshot renders the state for the trace recorder.
func (s *State) snapshot() map[string]any {
	return map[string]any{
		"npc":                  s.NPC,
		"user_input":           s.UserInput,
		"conversation_history": s.ConversationHistory,
		"system_prompt":        s.SystemPrompt,
		"query_spec":           s.QuerySpec,
		"graph_query_spec":     s.GraphQuerySpec,
		"graph_facts":          s.GraphFacts,
		"graph_neighbor_ids":   s.GraphNeighborIDs,
		"retrieval_results":    s.RetrievalResults,
		"full_prompt":          s.FullPrompt,
		"raw_response":         s.RawResponse,
		"formatted_response":   s.FormattedResponse,
	}
}
