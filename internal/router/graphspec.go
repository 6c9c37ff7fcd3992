package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GraphIntent classifies whether and how to traverse the world graph.
type GraphIntent string

const (
	GraphNone         GraphIntent = "NONE"
	GraphRelationship GraphIntent = "RELATIONSHIP"
	GraphLocation     GraphIntent = "LOCATION"
	GraphOwnership    GraphIntent = "OWNERSHIP"
	GraphMembership   GraphIntent = "MEMBERSHIP"
	GraphCausality    GraphIntent = "CAUSALITY"
	GraphAll          GraphIntent = "ALL"
)

// IsValid reports whether i is a known graph intent.
func (i GraphIntent) IsValid() bool {
	switch i {
	case GraphNone, GraphRelationship, GraphLocation, GraphOwnership,
		GraphMembership, GraphCausality, GraphAll:
		return true
	}
	return false
}

// EdgeVocabulary is the closed set of edge types the graph router may select
// from, in prompt presentation order.
var EdgeVocabulary = []string{
	"KINSHIP",
	"INHERITED_FROM",
	"OWNS",
	"OWNED",
	"LOCATED_IN",
	"OPERATES_IN",
	"CONNECTS",
	"INVOLVED_IN",
	"HAPPENED_AT",
	"CAUSES",
}

// GraphQuerySpec is the structured graph-traversal decision for one turn.
// An empty EdgeTypes with a non-NONE intent means traverse all edge types.
type GraphQuerySpec struct {
	GraphIntent GraphIntent `json:"graph_intent"`
	EdgeTypes   []string    `json:"edge_types"`
	Reason      string      `json:"reason"`
}

// ParseGraphQuerySpec decodes and validates a GraphQuerySpec from a raw JSON
// object. Edge types are trimmed, uppercased, and deduplicated preserving
// order; empty entries are dropped.
func ParseGraphQuerySpec(data []byte) (GraphQuerySpec, error) {
	var spec GraphQuerySpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return GraphQuerySpec{}, fmt.Errorf("router: decode graph query spec: %w", err)
	}

	seen := make(map[string]struct{})
	normalized := make([]string, 0, len(spec.EdgeTypes))
	for _, t := range spec.EdgeTypes {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}
	spec.EdgeTypes = normalized
	spec.Reason = strings.TrimSpace(spec.Reason)

	if !spec.GraphIntent.IsValid() {
		return GraphQuerySpec{}, fmt.Errorf("router: validate graph query spec: unknown graph intent %q", spec.GraphIntent)
	}
	return spec, nil
}

// FallbackGraphQuerySpec is the deterministic spec returned when both graph
// classification attempts fail: skip graph retrieval, never guess a
// traversal.
func FallbackGraphQuerySpec() GraphQuerySpec {
	return GraphQuerySpec{GraphIntent: GraphNone, EdgeTypes: []string{}, Reason: ""}
}
