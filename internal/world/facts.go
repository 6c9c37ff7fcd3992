package world

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fennwald/loreweave/internal/retrieval"
	"github.com/fennwald/loreweave/pkg/semindex"
)

// FactStore holds entity-linked world facts and the client side of semantic
// fact search.
//
// Structural lookups ([FactStore.FactsForEntity], [FactStore.ResolveEntityIDs])
// are served locally; free-text similarity search is delegated to the
// configured [semindex.Index]. Like [Graph], the store is built once and is
// safe for concurrent reads.
type FactStore struct {
	entities map[string]Entity
	order    []Entity // entities in input order
	facts    []Fact
	byEntity map[string][]int // entity id -> indices into facts, store order
	byName   map[string]string
	mentions []mentionPattern
	index    semindex.Index
}

type mentionPattern struct {
	entityID string
	re       *regexp.Regexp
}

// NewFactStore builds a FactStore over static entity and fact collections.
// index may be nil when semantic search is disabled; [FactStore.Search] then
// returns only empty results.
func NewFactStore(entities []Entity, facts []Fact, index semindex.Index) *FactStore {
	s := &FactStore{
		entities: make(map[string]Entity, len(entities)),
		order:    make([]Entity, 0, len(entities)),
		facts:    facts,
		byEntity: make(map[string][]int),
		byName:   make(map[string]string),
		index:    index,
	}

	for _, e := range entities {
		s.entities[e.ID] = e
		s.order = append(s.order, e)
		s.byName[strings.ToLower(e.Name)] = e.ID
		for _, alias := range e.Aliases {
			s.byName[strings.ToLower(alias)] = e.ID
		}
		s.mentions = append(s.mentions, mentionPatterns(e)...)
	}

	for i, f := range facts {
		s.byEntity[f.EntityID] = append(s.byEntity[f.EntityID], i)
	}

	return s
}

func mentionPatterns(e Entity) []mentionPattern {
	names := append([]string{e.Name}, e.Aliases...)
	patterns := make([]mentionPattern, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)
		if err != nil {
			continue
		}
		patterns = append(patterns, mentionPattern{entityID: e.ID, re: re})
	}
	return patterns
}

// Entity returns the entity with the given id.
func (s *FactStore) Entity(id string) (Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// ResolveEntityIDs maps entity names or aliases to entity IDs by exact,
// case-insensitive match. Names that resolve to nothing are dropped; there is
// no fuzzy matching. Duplicate resolutions are collapsed, first wins.
func (s *FactStore) ResolveEntityIDs(names []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, name := range names {
		id, ok := s.byName[strings.TrimSpace(strings.ToLower(name))]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FindMentions scans free text for entity names and aliases on word
// boundaries, case-insensitively, and returns the IDs of mentioned entities
// in first mention-pattern order.
func (s *FactStore) FindMentions(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range s.mentions {
		if _, dup := seen[p.entityID]; dup {
			continue
		}
		if p.re.MatchString(text) {
			seen[p.entityID] = struct{}{}
			ids = append(ids, p.entityID)
		}
	}
	return ids
}

// FactsForEntity returns up to limit facts linked to entityID as retrieval
// hits, in store order, scored [retrieval.ScoreEntityMatch]. limit <= 0 means
// no limit.
func (s *FactStore) FactsForEntity(entityID string, limit int) []retrieval.Hit {
	idxs := s.byEntity[entityID]
	if limit > 0 && len(idxs) > limit {
		idxs = idxs[:limit]
	}
	hits := make([]retrieval.Hit, 0, len(idxs))
	for _, i := range idxs {
		hits = append(hits, s.hitFromFact(s.facts[i], retrieval.ScoreEntityMatch))
	}
	return hits
}

// Search runs a semantic similarity query against the external index and
// returns up to k hits ranked by ascending distance. A blank query
// short-circuits to an empty result without touching the index, as does a
// store built without one.
func (s *FactStore) Search(ctx context.Context, query string, k int) ([]retrieval.Hit, error) {
	if strings.TrimSpace(query) == "" || s.index == nil {
		return nil, nil
	}

	results, err := s.index.Query(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("world: semantic search: %w", err)
	}

	hits := make([]retrieval.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, retrieval.Hit{
			ID:         r.ID,
			Text:       r.Document,
			EntityID:   r.Metadata["entity_id"],
			EntityName: r.Metadata["entity_name"],
			Type:       r.Metadata["type"],
			Source:     r.Metadata["source"],
			Tags:       r.Metadata["tags"],
			Score:      strconv.FormatFloat(r.Distance, 'f', 4, 64),
		})
	}
	return hits, nil
}

// IndexAll pushes every fact into the semantic index, prefixed with the
// linked entity's display name so entity identity survives embedding.
func (s *FactStore) IndexAll(ctx context.Context) error {
	if s.index == nil {
		return fmt.Errorf("world: index all: no semantic index configured")
	}

	docs := make([]semindex.Document, 0, len(s.facts))
	for _, f := range s.facts {
		name := ""
		if e, ok := s.entities[f.EntityID]; ok {
			name = e.Name
		}
		text := f.Text
		if name != "" {
			text = name + ": " + f.Text
		}
		docs = append(docs, semindex.Document{
			ID:   f.ID,
			Text: text,
			Metadata: map[string]string{
				"entity_id":   f.EntityID,
				"entity_name": name,
				"type":        f.Type,
				"source":      f.Source,
				"tags":        strings.Join(f.Tags, ","),
			},
		})
	}

	if err := s.index.Upsert(ctx, docs); err != nil {
		return fmt.Errorf("world: index all: %w", err)
	}
	return nil
}

// WorldHints buckets known entity names by coarse category for use in
// routing prompts. Unrecognised entity types are left out.
func (s *FactStore) WorldHints() Hints {
	var h Hints
	for _, e := range s.order {
		switch strings.ToLower(e.Type) {
		case "org", "organization", "organisation", "faction", "guild":
			h.OrgNames = append(h.OrgNames, e.Name)
		case "location", "place", "region", "city":
			h.LocationNames = append(h.LocationNames, e.Name)
		case "person", "npc", "character":
			h.NPCNames = append(h.NPCNames, e.Name)
		case "item", "artifact", "object":
			h.ItemNames = append(h.ItemNames, e.Name)
		}
	}
	return h
}

// Len returns the number of facts in the store.
func (s *FactStore) Len() int { return len(s.facts) }

func (s *FactStore) hitFromFact(f Fact, score string) retrieval.Hit {
	name := ""
	if e, ok := s.entities[f.EntityID]; ok {
		name = e.Name
	}
	text := f.Text
	if name != "" {
		text = name + ": " + f.Text
	}
	return retrieval.Hit{
		ID:         f.ID,
		Text:       text,
		EntityID:   f.EntityID,
		EntityName: name,
		Type:       f.Type,
		Source:     f.Source,
		Tags:       strings.Join(f.Tags, ","),
		Score:      score,
	}
}
