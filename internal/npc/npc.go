// Package npc holds the NPC character profile and the prompt text derived
// from it.
package npc

import (
	"fmt"
	"strings"
)

// NPC is one playable character profile. Profiles are loaded from
// configuration at startup and read-only afterwards.
type NPC struct {
	ID                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	Age                int      `yaml:"age"`
	Location           string   `yaml:"location"`
	Profession         string   `yaml:"profession"`
	Traits             []string `yaml:"traits"`
	ChildhoodBackstory string   `yaml:"childhood_backstory"`
	AdultBackstory     string   `yaml:"adult_backstory"`
}

// PromptText renders the profile as a single text block for prompt assembly.
func (n NPC) PromptText() string {
	return fmt.Sprintf(`Character Profile: %s

Age: %d
Location: %s
Profession: %s
Traits: %s

Childhood Backstory:
%s

Adult Backstory:
%s`,
		n.Name, n.Age, n.Location, n.Profession,
		strings.Join(n.Traits, ", "),
		n.ChildhoodBackstory, n.AdultBackstory)
}

// SystemPrompt renders the roleplay instructions wrapped around the profile.
func (n NPC) SystemPrompt() string {
	return fmt.Sprintf(`You are a character in a fantasy world. You will respond to questions and engage in dialogue as this character.

%s

INSTRUCTIONS:
- Always respond in character as this NPC
- Draw upon your backstory and traits when answering
- Be authentic to your personality, profession, and location
- Respond conversationally and naturally
- If asked about something outside your knowledge or experience, stay in character and respond accordingly (e.g., "I wouldn't know much about that")
`, n.PromptText())
}

// ContextID returns the routing id for the profile: the explicit ID when
// set, otherwise the name lowercased with spaces replaced by underscores.
func (n NPC) ContextID() string {
	if n.ID != "" {
		return n.ID
	}
	return strings.ReplaceAll(strings.ToLower(n.Name), " ", "_")
}
