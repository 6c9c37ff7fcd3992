package world_test

import (
	"context"
	"testing"

	"github.com/fennwald/loreweave/internal/retrieval"
	"github.com/fennwald/loreweave/internal/world"
	"github.com/fennwald/loreweave/pkg/semindex"
	semindexmock "github.com/fennwald/loreweave/pkg/semindex/mock"
)

func testFactStore(index semindex.Index) *world.FactStore {
	entities := []world.Entity{
		{ID: "npc_aldric", Name: "Aldric", Type: "npc", Aliases: []string{"Old Aldric"}},
		{ID: "loc_tavern", Name: "Crooked Tavern", Type: "location"},
		{ID: "org_guard", Name: "Iron Guard", Type: "faction"},
		{ID: "item_ring", Name: "Signet Ring", Type: "item"},
	}
	facts := []world.Fact{
		{ID: "f1", EntityID: "npc_aldric", Type: "description", Text: "ran the smithy for thirty years"},
		{ID: "f2", EntityID: "npc_aldric", Type: "event", Text: "lost his brother at sea"},
		{ID: "f3", EntityID: "loc_tavern", Type: "rumor", Text: "a smuggling ring meets in the cellar"},
	}
	return world.NewFactStore(entities, facts, index)
}

func TestResolveEntityIDs(t *testing.T) {
	s := testFactStore(nil)

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"exact", []string{"Aldric"}, []string{"npc_aldric"}},
		{"lowercase", []string{"aldric"}, []string{"npc_aldric"}},
		{"uppercase", []string{"ALDRIC"}, []string{"npc_aldric"}},
		{"alias", []string{"old aldric"}, []string{"npc_aldric"}},
		{"prefix is not a match", []string{"Aldri"}, nil},
		{"unknown dropped, known kept", []string{"Bartok", "Iron Guard"}, []string{"org_guard"}},
		{"name and alias collapse to one id", []string{"Aldric", "Old Aldric"}, []string{"npc_aldric"}},
		{"empty input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ResolveEntityIDs(tt.names)
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveEntityIDs(%v) = %v, want %v", tt.names, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ResolveEntityIDs(%v)[%d] = %q, want %q", tt.names, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFactsForEntity(t *testing.T) {
	s := testFactStore(nil)

	hits := s.FactsForEntity("npc_aldric", 0)
	if len(hits) != 2 {
		t.Fatalf("FactsForEntity returned %d hits, want 2", len(hits))
	}
	if hits[0].ID != "f1" || hits[1].ID != "f2" {
		t.Errorf("hit ids = [%s %s], want store order [f1 f2]", hits[0].ID, hits[1].ID)
	}
	if hits[0].Score != retrieval.ScoreEntityMatch {
		t.Errorf("hit score = %q, want %q", hits[0].Score, retrieval.ScoreEntityMatch)
	}
	if hits[0].Text != "Aldric: ran the smithy for thirty years" {
		t.Errorf("hit text = %q, want entity-name prefix", hits[0].Text)
	}

	if limited := s.FactsForEntity("npc_aldric", 1); len(limited) != 1 {
		t.Errorf("FactsForEntity with limit 1 returned %d hits", len(limited))
	}
	if none := s.FactsForEntity("npc_ghost", 0); len(none) != 0 {
		t.Errorf("FactsForEntity for unknown entity returned %d hits", len(none))
	}
}

func TestSearch(t *testing.T) {
	index := &semindexmock.Index{
		QueryResults: []semindex.Result{
			{
				ID:       "f3",
				Document: "Crooked Tavern: a smuggling ring meets in the cellar",
				Metadata: map[string]string{
					"entity_id":   "loc_tavern",
					"entity_name": "Crooked Tavern",
					"type":        "rumor",
				},
				Distance: 0.1337,
			},
		},
	}
	s := testFactStore(index)

	hits, err := s.Search(context.Background(), "smugglers in the tavern", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() returned %d hits, want 1", len(hits))
	}
	h := hits[0]
	if h.ID != "f3" || h.EntityID != "loc_tavern" || h.EntityName != "Crooked Tavern" {
		t.Errorf("Search() hit = %+v, want f3 / loc_tavern metadata", h)
	}
	if h.Score != "0.1337" {
		t.Errorf("Search() hit score = %q, want %q", h.Score, "0.1337")
	}
}

func TestSearchBlankQuerySkipsIndex(t *testing.T) {
	index := &semindexmock.Index{
		QueryResults: []semindex.Result{{ID: "f1", Document: "should not be returned"}},
	}
	s := testFactStore(index)

	for _, query := range []string{"", "   ", "\t\n"} {
		hits, err := s.Search(context.Background(), query, 5)
		if err != nil {
			t.Fatalf("Search(%q) error = %v", query, err)
		}
		if len(hits) != 0 {
			t.Errorf("Search(%q) returned %d hits, want 0", query, len(hits))
		}
	}
	if index.QueryCount() != 0 {
		t.Errorf("blank queries reached the index %d times", index.QueryCount())
	}
}

func TestFindMentions(t *testing.T) {
	s := testFactStore(nil)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"name on word boundary", "have you seen Aldric lately?", []string{"npc_aldric"}},
		{"case insensitive", "HAVE YOU SEEN ALDRIC?", []string{"npc_aldric"}},
		{"alias", "old aldric told me a story", []string{"npc_aldric"}},
		{"substring does not count", "the Aldrician order", nil},
		{"multiple entities", "Aldric drinks at the Crooked Tavern", []string{"npc_aldric", "loc_tavern"}},
		{"empty text", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.FindMentions(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("FindMentions(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("FindMentions(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIndexAll(t *testing.T) {
	index := &semindexmock.Index{}
	s := testFactStore(index)

	if err := s.IndexAll(context.Background()); err != nil {
		t.Fatalf("IndexAll() error = %v", err)
	}
	if len(index.Upserted) != 3 {
		t.Fatalf("IndexAll() upserted %d docs, want 3", len(index.Upserted))
	}
	doc := index.Upserted[0]
	if doc.ID != "f1" {
		t.Errorf("first upserted doc id = %q, want f1", doc.ID)
	}
	if doc.Text != "Aldric: ran the smithy for thirty years" {
		t.Errorf("doc text = %q, want entity-name prefix", doc.Text)
	}
	if doc.Metadata["entity_id"] != "npc_aldric" || doc.Metadata["entity_name"] != "Aldric" {
		t.Errorf("doc metadata = %v, missing entity fields", doc.Metadata)
	}
}

func TestWorldHints(t *testing.T) {
	s := testFactStore(nil)

	h := s.WorldHints()
	if len(h.NPCNames) != 1 || h.NPCNames[0] != "Aldric" {
		t.Errorf("NPCNames = %v, want [Aldric]", h.NPCNames)
	}
	if len(h.LocationNames) != 1 || h.LocationNames[0] != "Crooked Tavern" {
		t.Errorf("LocationNames = %v, want [Crooked Tavern]", h.LocationNames)
	}
	if len(h.OrgNames) != 1 || h.OrgNames[0] != "Iron Guard" {
		t.Errorf("OrgNames = %v, want [Iron Guard]", h.OrgNames)
	}
	if len(h.ItemNames) != 1 || h.ItemNames[0] != "Signet Ring" {
		t.Errorf("ItemNames = %v, want [Signet Ring]", h.ItemNames)
	}
}
