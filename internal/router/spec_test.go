package router_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/fennwald/loreweave/internal/router"
)

func TestParseQuerySpec(t *testing.T) {
	input := `{
		"intent": "ASK_EVENTS",
		"query_text": "  bandit attacks  ",
		"entities": [{"name": " North Road ", "type": "LOCATION"}],
		"time_window_days": 14,
		"time_constraint_text": "lately",
		"location_bias": {"mode": "NEAR_NPC", "location_name": ""},
		"answer_format": "NORMAL"
	}`

	spec, err := router.ParseQuerySpec([]byte(input))
	if err != nil {
		t.Fatalf("ParseQuerySpec() error = %v", err)
	}
	if spec.Intent != router.IntentAskEvents {
		t.Errorf("intent = %q", spec.Intent)
	}
	if spec.QueryText != "bandit attacks" {
		t.Errorf("query_text = %q, want trimmed", spec.QueryText)
	}
	if len(spec.Entities) != 1 || spec.Entities[0].Name != "North Road" {
		t.Errorf("entities = %+v", spec.Entities)
	}
	if !spec.NeedsRetrieval {
		t.Error("needs_retrieval should default to true when absent")
	}
	if spec.TimeWindowDays != 14 {
		t.Errorf("time_window_days = %d", spec.TimeWindowDays)
	}
}

func TestParseQuerySpecClampsTimeWindow(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"negative", -5, 0},
		{"zero", 0, 0},
		{"in range", 42, 42},
		{"upper bound", 365, 365},
		{"above range", 4000, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `{
				"intent": "ASK_EVENTS",
				"query_text": "x",
				"time_window_days": ` + strconv.Itoa(tt.in) + `,
				"location_bias": {"mode": "NONE", "location_name": ""}
			}`
			spec, err := router.ParseQuerySpec([]byte(input))
			if err != nil {
				t.Fatalf("ParseQuerySpec() error = %v", err)
			}
			if spec.TimeWindowDays != tt.want {
				t.Errorf("time_window_days = %d, want %d", spec.TimeWindowDays, tt.want)
			}
		})
	}
}

func TestParseQuerySpecDefaults(t *testing.T) {
	input := `{
		"intent": "SMALLTALK",
		"query_text": "   ",
		"location_bias": {"mode": "NONE", "location_name": ""}
	}`

	spec, err := router.ParseQuerySpec([]byte(input))
	if err != nil {
		t.Fatalf("ParseQuerySpec() error = %v", err)
	}
	if spec.QueryText != "unknown" {
		t.Errorf("query_text = %q, want the %q default", spec.QueryText, "unknown")
	}
	if spec.AnswerFormat != router.FormatNormal {
		t.Errorf("answer_format = %q, want NORMAL default", spec.AnswerFormat)
	}
	if !spec.NeedsRetrieval {
		t.Error("needs_retrieval should default to true")
	}
}

func TestParseQuerySpecNeedsRetrievalExplicitFalse(t *testing.T) {
	input := `{
		"intent": "SMALLTALK",
		"query_text": "hello",
		"needs_retrieval": false,
		"location_bias": {"mode": "NONE", "location_name": ""}
	}`

	spec, err := router.ParseQuerySpec([]byte(input))
	if err != nil {
		t.Fatalf("ParseQuerySpec() error = %v", err)
	}
	if spec.NeedsRetrieval {
		t.Error("explicit needs_retrieval=false was overridden")
	}
}

func TestParseQuerySpecDedupesEntities(t *testing.T) {
	input := `{
		"intent": "ASK_ENTITY_FACTS",
		"query_text": "iron guard",
		"entities": [
			{"name": "Iron Guard", "type": "ORG"},
			{"name": "IRON GUARD", "type": "FACTION"},
			{"name": "  ", "type": "ORG"},
			{"name": "Port Valor", "type": "LOCATION"}
		],
		"location_bias": {"mode": "NEAR_NPC", "location_name": ""}
	}`

	spec, err := router.ParseQuerySpec([]byte(input))
	if err != nil {
		t.Fatalf("ParseQuerySpec() error = %v", err)
	}
	if len(spec.Entities) != 2 {
		t.Fatalf("entities = %+v, want 2 after case-insensitive dedup", spec.Entities)
	}
	if spec.Entities[0].Name != "Iron Guard" || spec.Entities[0].Type != router.EntityOrg {
		t.Errorf("first entity = %+v, want the first occurrence kept", spec.Entities[0])
	}
	if spec.Entities[1].Name != "Port Valor" {
		t.Errorf("second entity = %+v", spec.Entities[1])
	}
}

func TestParseQuerySpecRejectsBadEnums(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "unknown intent",
			input:   `{"intent": "ASK_NONSENSE", "query_text": "x", "location_bias": {"mode": "NONE"}}`,
			wantErr: "unknown intent",
		},
		{
			name:    "unknown bias mode",
			input:   `{"intent": "OTHER", "query_text": "x", "location_bias": {"mode": "SOMEWHERE"}}`,
			wantErr: "unknown location bias mode",
		},
		{
			name:    "unknown answer format",
			input:   `{"intent": "OTHER", "query_text": "x", "location_bias": {"mode": "NONE"}, "answer_format": "VERBOSE"}`,
			wantErr: "unknown answer format",
		},
		{
			name:    "unknown entity type",
			input:   `{"intent": "OTHER", "query_text": "x", "entities": [{"name": "X", "type": "DEITY"}], "location_bias": {"mode": "NONE"}}`,
			wantErr: "unknown type",
		},
		{
			name:    "not json",
			input:   `intent: OTHER`,
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := router.ParseQuerySpec([]byte(tt.input))
			if err == nil {
				t.Fatal("ParseQuerySpec() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseGraphQuerySpec(t *testing.T) {
	input := `{
		"graph_intent": "OWNERSHIP",
		"edge_types": [" owns ", "OWNED", "owns", "", "located_in"],
		"reason": "  Ownership question.  "
	}`

	spec, err := router.ParseGraphQuerySpec([]byte(input))
	if err != nil {
		t.Fatalf("ParseGraphQuerySpec() error = %v", err)
	}
	want := []string{"OWNS", "OWNED", "LOCATED_IN"}
	if len(spec.EdgeTypes) != len(want) {
		t.Fatalf("edge_types = %v, want %v", spec.EdgeTypes, want)
	}
	for i := range want {
		if spec.EdgeTypes[i] != want[i] {
			t.Errorf("edge_types[%d] = %q, want %q", i, spec.EdgeTypes[i], want[i])
		}
	}
	if spec.Reason != "Ownership question." {
		t.Errorf("reason = %q, want trimmed", spec.Reason)
	}
}

func TestParseGraphQuerySpecRejectsUnknownIntent(t *testing.T) {
	_, err := router.ParseGraphQuerySpec([]byte(`{"graph_intent": "TELEPORT", "edge_types": []}`))
	if err == nil || !strings.Contains(err.Error(), "unknown graph intent") {
		t.Fatalf("error = %v, want unknown graph intent rejection", err)
	}
}
