package world

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// entitiesFile is the top-level structure of an entities JSON file.
type entitiesFile struct {
	Entities []Entity `json:"entities"`
}

// edgesFile is the top-level structure of an edges JSON file.
type edgesFile struct {
	Edges []Edge `json:"edges"`
}

// factsFile is the top-level structure of a facts JSON file. It may also
// carry the entity list so facts and entities can ship in one file.
type factsFile struct {
	Entities []Entity `json:"entities"`
	Facts    []Fact   `json:"facts"`
}

// LoadEntities reads an entities JSON file ({"entities": [...]}).
func LoadEntities(path string) ([]Entity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("world: open entities file %q: %w", path, err)
	}
	defer f.Close()

	var payload entitiesFile
	if err := decodeStrict(f, &payload); err != nil {
		return nil, fmt.Errorf("world: parse entities file %q: %w", path, err)
	}
	if err := validateEntities(payload.Entities); err != nil {
		return nil, fmt.Errorf("world: entities file %q: %w", path, err)
	}
	return payload.Entities, nil
}

// LoadEdges reads an edges JSON file ({"edges": [...]}).
func LoadEdges(path string) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("world: open edges file %q: %w", path, err)
	}
	defer f.Close()

	var payload edgesFile
	if err := decodeStrict(f, &payload); err != nil {
		return nil, fmt.Errorf("world: parse edges file %q: %w", path, err)
	}
	for i, e := range payload.Edges {
		if e.ID == "" || e.SourceID == "" || e.TargetID == "" {
			return nil, fmt.Errorf("world: edges file %q: edge[%d] is missing id, source_id, or target_id", path, i)
		}
	}
	return payload.Edges, nil
}

// LoadFacts reads a facts JSON file ({"entities": [...], "facts": [...]}).
// The entity list may be empty when entities ship separately.
func LoadFacts(path string) ([]Entity, []Fact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("world: open facts file %q: %w", path, err)
	}
	defer f.Close()

	entities, facts, err := LoadFactsFromReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("world: parse facts file %q: %w", path, err)
	}
	return entities, facts, nil
}

// LoadFactsFromReader parses facts JSON from r. Useful in tests where world
// data is constructed from string literals.
func LoadFactsFromReader(r io.Reader) ([]Entity, []Fact, error) {
	var payload factsFile
	if err := decodeStrict(r, &payload); err != nil {
		return nil, nil, err
	}
	if err := validateEntities(payload.Entities); err != nil {
		return nil, nil, err
	}
	for i, fc := range payload.Facts {
		if fc.ID == "" || fc.EntityID == "" {
			return nil, nil, fmt.Errorf("fact[%d] is missing id or entity_id", i)
		}
		if fc.Text == "" {
			return nil, nil, fmt.Errorf("fact[%d] (%s) has empty text", i, fc.ID)
		}
	}
	return payload.Entities, payload.Facts, nil
}

// decodeStrict decodes JSON from r rejecting unknown fields, so schema drift
// in data files fails loudly at startup instead of loading half a world.
func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// validateEntities checks the minimal entity invariants shared by all loaders.
func validateEntities(entities []Entity) error {
	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			return fmt.Errorf("entity[%d] (%s) is missing an id", i, e.Name)
		}
		if e.Name == "" {
			return fmt.Errorf("entity[%d] (%s) is missing a name", i, e.ID)
		}
		if prev, dup := seen[e.ID]; dup {
			return fmt.Errorf("entity[%d] duplicates id %q of entity[%d]", i, e.ID, prev)
		}
		seen[e.ID] = i
	}
	return nil
}
