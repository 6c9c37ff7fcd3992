// Package router classifies free-text user input into structured query
// specs using a generative backend.
//
// Both routers share one shape: build a classification prompt, call the
// backend, extract a JSON object from the raw reply, and parse-then-validate
// it. A failed attempt is retried exactly once with a prompt stating the
// previous output was invalid; if the retry also fails the router returns a
// fixed deterministic fallback. Classification failures never escape a
// router.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Intent classifies what the user is asking for.
type Intent string

const (
	IntentAskEvents       Intent = "ASK_EVENTS"
	IntentAskEntityFacts  Intent = "ASK_ENTITY_FACTS"
	IntentAskLocation     Intent = "ASK_LOCATION"
	IntentAskHowTo        Intent = "ASK_HOW_TO"
	IntentAskRelationship Intent = "ASK_RELATIONSHIP"
	IntentAskComparison   Intent = "ASK_COMPARISON"
	IntentAskCount        Intent = "ASK_COUNT"
	IntentSmalltalk       Intent = "SMALLTALK"
	IntentOther           Intent = "OTHER"
)

// IsValid reports whether i is a known intent.
func (i Intent) IsValid() bool {
	switch i {
	case IntentAskEvents, IntentAskEntityFacts, IntentAskLocation,
		IntentAskHowTo, IntentAskRelationship, IntentAskComparison,
		IntentAskCount, IntentSmalltalk, IntentOther:
		return true
	}
	return false
}

// EntityType is the coarse category of an extracted entity.
type EntityType string

const (
	EntityNPC      EntityType = "NPC"
	EntityOrg      EntityType = "ORG"
	EntityFaction  EntityType = "FACTION"
	EntityLocation EntityType = "LOCATION"
	EntityItem     EntityType = "ITEM"
	EntityEvent    EntityType = "EVENT"
	EntityUnknown  EntityType = "UNKNOWN"
)

// IsValid reports whether t is a known entity type.
func (t EntityType) IsValid() bool {
	switch t {
	case EntityNPC, EntityOrg, EntityFaction, EntityLocation,
		EntityItem, EntityEvent, EntityUnknown:
		return true
	}
	return false
}

// LocationBiasMode selects how retrieval should weight location.
type LocationBiasMode string

const (
	BiasNearNPC          LocationBiasMode = "NEAR_NPC"
	BiasSpecificLocation LocationBiasMode = "SPECIFIC_LOCATION"
	BiasNone             LocationBiasMode = "NONE"
)

// IsValid reports whether m is a known bias mode.
func (m LocationBiasMode) IsValid() bool {
	switch m {
	case BiasNearNPC, BiasSpecificLocation, BiasNone:
		return true
	}
	return false
}

// AnswerFormat is the requested verbosity of the NPC reply.
type AnswerFormat string

const (
	FormatBrief    AnswerFormat = "BRIEF"
	FormatNormal   AnswerFormat = "NORMAL"
	FormatDetailed AnswerFormat = "DETAILED"
)

// IsValid reports whether f is a known answer format.
func (f AnswerFormat) IsValid() bool {
	switch f {
	case FormatBrief, FormatNormal, FormatDetailed:
		return true
	}
	return false
}

// ExtractedEntity is one named entity the router pulled out of user text.
type ExtractedEntity struct {
	Name string     `json:"name"`
	Type EntityType `json:"type"`
}

// LocationBias carries the location weighting decision.
type LocationBias struct {
	Mode         LocationBiasMode `json:"mode"`
	LocationName string           `json:"location_name"`
}

// QuerySpec is the structured classification of one user turn. Built fresh
// per turn and discarded after the turn completes.
type QuerySpec struct {
	Intent             Intent            `json:"intent"`
	QueryText          string            `json:"query_text"`
	Entities           []ExtractedEntity `json:"entities"`
	NeedsRetrieval     bool              `json:"needs_retrieval"`
	TimeWindowDays     int               `json:"time_window_days"`
	TimeConstraintText string            `json:"time_constraint_text"`
	LocationBias       LocationBias      `json:"location_bias"`
	AnswerFormat       AnswerFormat      `json:"answer_format"`
}

// querySpecWire mirrors QuerySpec for decoding. needs_retrieval is a pointer
// so an absent field defaults to true rather than false.
type querySpecWire struct {
	Intent             Intent            `json:"intent"`
	QueryText          string            `json:"query_text"`
	Entities           []ExtractedEntity `json:"entities"`
	NeedsRetrieval     *bool             `json:"needs_retrieval"`
	TimeWindowDays     int               `json:"time_window_days"`
	TimeConstraintText string            `json:"time_constraint_text"`
	LocationBias       LocationBias      `json:"location_bias"`
	AnswerFormat       *AnswerFormat     `json:"answer_format"`
}

// ParseQuerySpec decodes and validates a QuerySpec from a raw JSON object.
//
// Normalisation: string fields are trimmed, query_text defaults to "unknown"
// when empty, time_window_days is clamped to [0,365], entities are
// deduplicated by case-insensitive name (first wins), needs_retrieval and
// answer_format default to true and NORMAL when absent. Unknown enum values
// are validation errors.
func ParseQuerySpec(data []byte) (QuerySpec, error) {
	var wire querySpecWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return QuerySpec{}, fmt.Errorf("router: decode query spec: %w", err)
	}

	spec := QuerySpec{
		Intent:             wire.Intent,
		QueryText:          strings.TrimSpace(wire.QueryText),
		NeedsRetrieval:     true,
		TimeWindowDays:     wire.TimeWindowDays,
		TimeConstraintText: strings.TrimSpace(wire.TimeConstraintText),
		LocationBias: LocationBias{
			Mode:         wire.LocationBias.Mode,
			LocationName: strings.TrimSpace(wire.LocationBias.LocationName),
		},
		AnswerFormat: FormatNormal,
	}
	if wire.NeedsRetrieval != nil {
		spec.NeedsRetrieval = *wire.NeedsRetrieval
	}
	if wire.AnswerFormat != nil {
		spec.AnswerFormat = *wire.AnswerFormat
	}
	if spec.QueryText == "" {
		spec.QueryText = "unknown"
	}
	if spec.TimeWindowDays < 0 {
		spec.TimeWindowDays = 0
	}
	if spec.TimeWindowDays > 365 {
		spec.TimeWindowDays = 365
	}

	seen := make(map[string]struct{})
	for _, e := range wire.Entities {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			continue
		}
		key := strings.ToLower(e.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if e.Type == "" {
			e.Type = EntityUnknown
		}
		spec.Entities = append(spec.Entities, e)
	}

	var errs []error
	if !spec.Intent.IsValid() {
		errs = append(errs, fmt.Errorf("unknown intent %q", spec.Intent))
	}
	if !spec.LocationBias.Mode.IsValid() {
		errs = append(errs, fmt.Errorf("unknown location bias mode %q", spec.LocationBias.Mode))
	}
	if !spec.AnswerFormat.IsValid() {
		errs = append(errs, fmt.Errorf("unknown answer format %q", spec.AnswerFormat))
	}
	for _, e := range spec.Entities {
		if !e.Type.IsValid() {
			errs = append(errs, fmt.Errorf("entity %q has unknown type %q", e.Name, e.Type))
		}
	}
	if len(errs) > 0 {
		return QuerySpec{}, fmt.Errorf("router: validate query spec: %w", errors.Join(errs...))
	}
	return spec, nil
}

// FallbackQuerySpec is the deterministic spec returned when both
// classification attempts fail.
func FallbackQuerySpec(userText string) QuerySpec {
	return QuerySpec{
		Intent:         IntentAskEntityFacts,
		QueryText:      userText,
		Entities:       []ExtractedEntity{},
		NeedsRetrieval: true,
		LocationBias:   LocationBias{Mode: BiasNearNPC, LocationName: ""},
		AnswerFormat:   FormatNormal,
	}
}
