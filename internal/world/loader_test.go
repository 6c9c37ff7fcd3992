package world_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fennwald/loreweave/internal/world"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadEntities(t *testing.T) {
	path := writeFile(t, "entities.json", `{
		"entities": [
			{"id": "npc_aldric", "name": "Aldric", "type": "npc", "aliases": ["Old Aldric"]},
			{"id": "loc_tavern", "name": "Crooked Tavern", "type": "location"}
		]
	}`)

	entities, err := world.LoadEntities(path)
	if err != nil {
		t.Fatalf("LoadEntities() error = %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("LoadEntities() returned %d entities, want 2", len(entities))
	}
	if entities[0].ID != "npc_aldric" || entities[0].Aliases[0] != "Old Aldric" {
		t.Errorf("first entity = %+v", entities[0])
	}
}

func TestLoadEntitiesRejectsBadData(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing id",
			content: `{"entities": [{"name": "Aldric"}]}`,
			wantErr: "missing an id",
		},
		{
			name:    "missing name",
			content: `{"entities": [{"id": "npc_aldric"}]}`,
			wantErr: "missing a name",
		},
		{
			name: "duplicate id",
			content: `{"entities": [
				{"id": "npc_aldric", "name": "Aldric"},
				{"id": "npc_aldric", "name": "Aldric the Second"}
			]}`,
			wantErr: "duplicates id",
		},
		{
			name:    "unknown field",
			content: `{"entities": [{"id": "x", "name": "X", "mood": "grim"}]}`,
			wantErr: "unknown field",
		},
		{
			name:    "not json",
			content: `entities: []`,
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "entities.json", tt.content)
			_, err := world.LoadEntities(path)
			if err == nil {
				t.Fatal("LoadEntities() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadEntities() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEdges(t *testing.T) {
	path := writeFile(t, "edges.json", `{
		"edges": [
			{"id": "e1", "type": "LOCATED_IN", "source_id": "npc_aldric", "target_id": "loc_tavern"}
		]
	}`)

	edges, err := world.LoadEdges(path)
	if err != nil {
		t.Fatalf("LoadEdges() error = %v", err)
	}
	if len(edges) != 1 || edges[0].Type != "LOCATED_IN" {
		t.Fatalf("LoadEdges() = %+v", edges)
	}
}

func TestLoadFactsFromReader(t *testing.T) {
	input := `{
		"entities": [{"id": "npc_aldric", "name": "Aldric", "type": "npc"}],
		"facts": [
			{"id": "f1", "entity_id": "npc_aldric", "type": "event", "text": "lost his brother at sea"}
		]
	}`

	entities, facts, err := world.LoadFactsFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFactsFromReader() error = %v", err)
	}
	if len(entities) != 1 || len(facts) != 1 {
		t.Fatalf("got %d entities, %d facts, want 1 and 1", len(entities), len(facts))
	}
	if facts[0].Text != "lost his brother at sea" {
		t.Errorf("fact text = %q", facts[0].Text)
	}
}

func TestLoadFactsFromReaderRejectsEmptyText(t *testing.T) {
	input := `{"facts": [{"id": "f1", "entity_id": "npc_aldric", "text": ""}]}`

	_, _, err := world.LoadFactsFromReader(strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "empty text") {
		t.Fatalf("LoadFactsFromReader() error = %v, want empty-text rejection", err)
	}
}
