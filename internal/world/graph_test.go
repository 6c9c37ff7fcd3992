package world_test

import (
	"testing"

	"github.com/fennwald/loreweave/internal/world"
)

func testGraph() *world.Graph {
	entities := []world.Entity{
		{ID: "npc_aldric", Name: "Aldric", Type: "npc", Aliases: []string{"Old Aldric", "the smith"}},
		{ID: "loc_tavern", Name: "Crooked Tavern", Type: "location"},
		{ID: "loc_port", Name: "Port Valor", Type: "location"},
		{ID: "org_guard", Name: "Iron Guard", Type: "org"},
	}
	edges := []world.Edge{
		{ID: "e1", Type: "LOCATED_IN", SourceID: "npc_aldric", TargetID: "loc_tavern"},
		{ID: "e2", Type: "LOCATED_IN", SourceID: "loc_tavern", TargetID: "loc_port"},
		{ID: "e3", Type: "OPERATES_IN", SourceID: "org_guard", TargetID: "loc_port"},
		{ID: "e4", Type: "INVOLVED_IN", SourceID: "npc_aldric", TargetID: "org_guard"},
		{ID: "e5", Type: "OPERATES_IN", SourceID: "org_guard", TargetID: "loc_tavern"},
	}
	return world.NewGraph(entities, edges)
}

func TestEntityByName(t *testing.T) {
	g := testGraph()

	tests := []struct {
		name   string
		lookup string
		wantID string
		wantOK bool
	}{
		{"exact name", "Aldric", "npc_aldric", true},
		{"case insensitive", "aLDRIC", "npc_aldric", true},
		{"alias", "the smith", "npc_aldric", true},
		{"alias case insensitive", "OLD ALDRIC", "npc_aldric", true},
		{"prefix does not match", "Aldri", "", false},
		{"unknown", "Bartok", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := g.EntityByName(tt.lookup)
			if ok != tt.wantOK {
				t.Fatalf("EntityByName(%q) ok = %v, want %v", tt.lookup, ok, tt.wantOK)
			}
			if e.ID != tt.wantID {
				t.Errorf("EntityByName(%q).ID = %q, want %q", tt.lookup, e.ID, tt.wantID)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	g := testGraph()

	tests := []struct {
		name      string
		start     string
		edgeTypes []string
		depth     int
		wantEdges []string
	}{
		{
			name:      "depth zero is empty",
			start:     "npc_aldric",
			depth:     0,
			wantEdges: nil,
		},
		{
			name:      "negative depth is empty",
			start:     "npc_aldric",
			depth:     -3,
			wantEdges: nil,
		},
		{
			name:      "depth one collects direct edges in store order",
			start:     "npc_aldric",
			depth:     1,
			wantEdges: []string{"e1", "e4"},
		},
		{
			name:      "depth two expands the frontier level by level",
			start:     "npc_aldric",
			depth:     2,
			wantEdges: []string{"e1", "e4", "e2", "e3", "e5"},
		},
		{
			name:      "type filter restricts collection and expansion",
			start:     "npc_aldric",
			edgeTypes: []string{"LOCATED_IN"},
			depth:     2,
			wantEdges: []string{"e1", "e2"},
		},
		{
			name:      "unknown start entity yields nothing",
			start:     "npc_ghost",
			depth:     3,
			wantEdges: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Neighbors(tt.start, tt.edgeTypes, tt.depth)
			if len(got) != len(tt.wantEdges) {
				t.Fatalf("Neighbors() returned %d edges, want %d (%v)", len(got), len(tt.wantEdges), tt.wantEdges)
			}
			for i, e := range got {
				if e.ID != tt.wantEdges[i] {
					t.Errorf("Neighbors()[%d].ID = %q, want %q", i, e.ID, tt.wantEdges[i])
				}
			}
		})
	}
}

// TestNeighborsRevisitedTargetEdgesKept checks that dedup applies to target
// nodes, not edges: a node already visited still contributes the edge that
// reached it again, it just does not rejoin the frontier.
func TestNeighborsRevisitedTargetEdgesKept(t *testing.T) {
	entities := []world.Entity{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}
	edges := []world.Edge{
		{ID: "ab", Type: "CONNECTS", SourceID: "a", TargetID: "b"},
		{ID: "ac", Type: "CONNECTS", SourceID: "a", TargetID: "c"},
		{ID: "bc", Type: "CONNECTS", SourceID: "b", TargetID: "c"},
		{ID: "ca", Type: "CONNECTS", SourceID: "c", TargetID: "a"},
	}
	g := world.NewGraph(entities, edges)

	got := g.Neighbors("a", nil, 2)
	want := []string{"ab", "ac", "bc", "ca"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors() returned %d edges, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.ID != want[i] {
			t.Errorf("Neighbors()[%d].ID = %q, want %q", i, e.ID, want[i])
		}
	}
}

func TestEdgeTypes(t *testing.T) {
	g := testGraph()

	got := g.EdgeTypes()
	want := []string{"LOCATED_IN", "OPERATES_IN", "INVOLVED_IN"}
	if len(got) != len(want) {
		t.Fatalf("EdgeTypes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EdgeTypes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEdgesFiltered(t *testing.T) {
	g := testGraph()

	all := g.Edges("org_guard", "")
	if len(all) != 2 {
		t.Fatalf("Edges(org_guard, \"\") returned %d edges, want 2", len(all))
	}

	ops := g.Edges("org_guard", "OPERATES_IN")
	if len(ops) != 2 {
		t.Fatalf("Edges(org_guard, OPERATES_IN) returned %d edges, want 2", len(ops))
	}
	if ops[0].ID != "e3" || ops[1].ID != "e5" {
		t.Errorf("filtered edges = [%s %s], want [e3 e5]", ops[0].ID, ops[1].ID)
	}

	if none := g.Edges("org_guard", "KINSHIP"); len(none) != 0 {
		t.Errorf("Edges(org_guard, KINSHIP) returned %d edges, want 0", len(none))
	}
}
