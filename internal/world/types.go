// Package world holds the static world model — entities, edges, and facts —
// and the two read-only stores built from it: the knowledge graph store
// (alias lookup + bounded breadth-first neighbour traversal) and the fact
// store (entity resolution, entity-linked facts, and the client side of
// semantic fact search).
//
// All world data is loaded once at startup and immutable afterwards; the
// stores require no locking for concurrent reads.
package world

// Entity is a single world entity (NPC, organisation, location, item, ...).
type Entity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Edge is a directed, typed relation between two entities.
type Edge struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	SourceID   string            `json:"source_id"`
	TargetID   string            `json:"target_id"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Fact is a single narrative fact linked to one entity.
type Fact struct {
	ID       string   `json:"id"`
	EntityID string   `json:"entity_id"`
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Source   string   `json:"source,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Hints groups known-world entity names by coarse category. The routers
// include these lists in classification prompts to ground entity extraction.
type Hints struct {
	OrgNames      []string
	LocationNames []string
	NPCNames      []string
	ItemNames     []string
}
