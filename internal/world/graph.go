package world

import (
	"slices"
	"strings"
)

// Graph is the read-only knowledge graph store.
//
// It holds the entity set, a case-insensitive name/alias index, and adjacency
// indices in both directions. Edge slices preserve input file order, which in
// turn fixes the traversal order of [Graph.Neighbors].
//
// Construct once with [NewGraph]; immutable and safe for concurrent reads
// afterwards.
type Graph struct {
	entities map[string]Entity
	edges    []Edge
	byName   map[string]string // lowercased name/alias -> entity id
	outgoing map[string][]Edge
	incoming map[string][]Edge
	order    []string // entity ids in input order
}

// NewGraph builds a Graph from static entity and edge collections.
func NewGraph(entities []Entity, edges []Edge) *Graph {
	g := &Graph{
		entities: make(map[string]Entity, len(entities)),
		edges:    slices.Clone(edges),
		byName:   make(map[string]string),
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
		order:    make([]string, 0, len(entities)),
	}

	for _, e := range entities {
		g.entities[e.ID] = e
		g.order = append(g.order, e.ID)
		g.byName[strings.ToLower(e.Name)] = e.ID
		for _, alias := range e.Aliases {
			g.byName[strings.ToLower(alias)] = e.ID
		}
	}

	for _, edge := range g.edges {
		g.outgoing[edge.SourceID] = append(g.outgoing[edge.SourceID], edge)
		g.incoming[edge.TargetID] = append(g.incoming[edge.TargetID], edge)
	}

	return g
}

// Entity returns the entity with the given id. The second return value
// reports whether it exists; a miss is not an error.
func (g *Graph) Entity(id string) (Entity, bool) {
	e, ok := g.entities[id]
	return e, ok
}

// EntityByName resolves a display name or alias, case-insensitively, to its
// entity. Exact match only.
func (g *Graph) EntityByName(name string) (Entity, bool) {
	if name == "" {
		return Entity{}, false
	}
	id, ok := g.byName[strings.TrimSpace(strings.ToLower(name))]
	if !ok {
		return Entity{}, false
	}
	return g.Entity(id)
}

// Edges returns the outgoing edges of subject, optionally filtered to one
// edge type. The returned slice is a copy in store order.
func (g *Graph) Edges(subjectID string, edgeType string) []Edge {
	edges := g.outgoing[subjectID]
	if edgeType == "" {
		return slices.Clone(edges)
	}
	var filtered []Edge
	for _, e := range edges {
		if e.Type == edgeType {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// EdgeTypes returns the distinct edge types present in the graph, in first
// encounter order.
func (g *Graph) EdgeTypes() []string {
	seen := make(map[string]struct{})
	var types []string
	for _, e := range g.edges {
		if _, ok := seen[e.Type]; ok {
			continue
		}
		seen[e.Type] = struct{}{}
		types = append(types, e.Type)
	}
	return types
}

// Len returns the number of entities in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Neighbors performs a bounded breadth-first traversal outward from entityID
// and returns the edges encountered, in encounter order.
//
// At each level every frontier node's outgoing edges are visited in store
// order, filtered by edgeTypes when non-empty. A target joins the next
// frontier only the first time it is reached — the visited set tracks target
// nodes, not edges, so the same node pair and type can appear more than once
// in the result when reached from distinct frontier members at the same
// level. depth <= 0 returns an empty slice.
func (g *Graph) Neighbors(entityID string, edgeTypes []string, depth int) []Edge {
	if depth <= 0 {
		return nil
	}

	var typeFilter map[string]struct{}
	if len(edgeTypes) > 0 {
		typeFilter = make(map[string]struct{}, len(edgeTypes))
		for _, t := range edgeTypes {
			typeFilter[t] = struct{}{}
		}
	}

	frontier := []string{entityID}
	visited := map[string]struct{}{entityID: {}}
	var collected []Edge

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, current := range frontier {
			for _, edge := range g.outgoing[current] {
				if typeFilter != nil {
					if _, ok := typeFilter[edge.Type]; !ok {
						continue
					}
				}
				collected = append(collected, edge)
				if _, ok := visited[edge.TargetID]; !ok {
					visited[edge.TargetID] = struct{}{}
					next = append(next, edge.TargetID)
				}
			}
		}
		frontier = next
	}

	return collected
}
