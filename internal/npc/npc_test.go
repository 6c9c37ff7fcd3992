package npc_test

import (
	"strings"
	"testing"

	"github.com/fennwald/loreweave/internal/npc"
)

func testNPC() npc.NPC {
	return npc.NPC{
		Name:               "Aldric",
		Age:                57,
		Location:           "Crooked Tavern",
		Profession:         "blacksmith",
		Traits:             []string{"gruff", "loyal"},
		ChildhoodBackstory: "Grew up at the docks of Port Valor.",
		AdultBackstory:     "Ran the smithy for thirty years.",
	}
}

func TestPromptText(t *testing.T) {
	text := testNPC().PromptText()

	for _, want := range []string{
		"Character Profile: Aldric",
		"Age: 57",
		"Location: Crooked Tavern",
		"Profession: blacksmith",
		"Traits: gruff, loyal",
		"Grew up at the docks of Port Valor.",
		"Ran the smithy for thirty years.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("PromptText() is missing %q", want)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := testNPC().SystemPrompt()

	if !strings.Contains(prompt, "respond to questions and engage in dialogue as this character") {
		t.Error("SystemPrompt() is missing the roleplay framing")
	}
	if !strings.Contains(prompt, "Character Profile: Aldric") {
		t.Error("SystemPrompt() does not embed the profile")
	}
	if !strings.Contains(prompt, "Always respond in character") {
		t.Error("SystemPrompt() is missing the instruction block")
	}
}

func TestContextID(t *testing.T) {
	tests := []struct {
		name string
		npc  npc.NPC
		want string
	}{
		{"explicit id wins", npc.NPC{ID: "npc_aldric", Name: "Aldric"}, "npc_aldric"},
		{"derived from name", npc.NPC{Name: "Prince Theron"}, "prince_theron"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.npc.ContextID(); got != tt.want {
				t.Errorf("ContextID() = %q, want %q", got, tt.want)
			}
		})
	}
}
