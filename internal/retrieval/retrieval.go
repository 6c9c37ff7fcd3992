// Package retrieval defines the retrieval hit type shared by the fact store
// and the dialogue pipeline, and the fusion step that merges hit lists from
// the different retrieval passes into one ordered, deduplicated result.
package retrieval

// ScoreEntityMatch is the sentinel score for hits produced by exact
// entity-link lookups rather than semantic similarity search.
const ScoreEntityMatch = "entity-match"

// Hit is a single retrieved world fact, normalised across retrieval passes.
type Hit struct {
	// ID is the fact identifier and the fusion dedup key.
	ID string `json:"id"`

	// Text is the display text, usually "EntityName: fact text".
	Text string `json:"text"`

	// EntityID is the entity this fact is linked to.
	EntityID string `json:"entity_id"`

	// EntityName is the linked entity's display name.
	EntityName string `json:"entity_name"`

	// Type is the fact type (event, description, rumor, ...).
	Type string `json:"type"`

	// Source records where the fact came from.
	Source string `json:"source"`

	// Tags is a comma-joined tag list.
	Tags string `json:"tags"`

	// Score is the similarity distance rendered as a string, or
	// [ScoreEntityMatch] for structural matches.
	Score string `json:"score"`
}

// Fuse merges hit lists into one deduplicated list.
//
// Lists are concatenated in argument order, which is the retrieval priority
// order (semantic, then entity-linked, then graph-neighbour-linked). Hits with
// an empty ID are dropped; among duplicates the first occurrence wins, and the
// surviving hits keep their original relative order.
func Fuse(lists ...[]Hit) []Hit {
	seen := make(map[string]struct{})
	var fused []Hit
	for _, list := range lists {
		for _, h := range list {
			if h.ID == "" {
				continue
			}
			if _, dup := seen[h.ID]; dup {
				continue
			}
			seen[h.ID] = struct{}{}
			fused = append(fused, h)
		}
	}
	return fused
}
