package router

import (
	"strings"

	"github.com/fennwald/loreweave/internal/world"
)

// NPCContext is the read-only NPC framing passed to query routing.
type NPCContext struct {
	NPCID       string
	NPCName     string
	NPCLocation string
	WorldDate   string
}

const querySystemPrompt = "You are a query router for a fictional world assistant. " +
	"Output ONLY valid JSON. Do not include markdown or comments. " +
	"JSON must match the schema exactly. " +
	"If uncertain, choose ASK_ENTITY_FACTS. " +
	"Resolve relative time phrases: lately/recently/these days -> 14, " +
	"last week -> 7, last month -> 30, today -> 1, yesterday -> 2, " +
	"otherwise 0. " +
	"Location bias: default NEAR_NPC. " +
	"If user mentions a place explicitly, use SPECIFIC_LOCATION + that name. " +
	"Extract named entities (orgs, locations, items) into entities."

const querySchemaPrompt = `Schema:
{
  "intent": "ASK_EVENTS | ASK_ENTITY_FACTS | ASK_LOCATION | ASK_HOW_TO | ASK_RELATIONSHIP | ASK_COMPARISON | ASK_COUNT | SMALLTALK | OTHER",
  "query_text": "string",
  "entities": [{"name": "string", "type": "NPC | ORG | FACTION | LOCATION | ITEM | EVENT | UNKNOWN"}],
  "time_window_days": 0,
  "time_constraint_text": "string",
  "location_bias": {"mode": "NEAR_NPC | SPECIFIC_LOCATION | NONE", "location_name": "string"},
  "answer_format": "BRIEF | NORMAL | DETAILED"
}

Examples:
Input: Have you heard about any bandit attacks lately?
Output: {"intent":"ASK_EVENTS","query_text":"bandit attacks","entities":[],"time_window_days":14,"time_constraint_text":"lately","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}

Input: What happened on the North Road last week?
Output: {"intent":"ASK_EVENTS","query_text":"what happened on the North Road","entities":[{"name":"North Road","type":"LOCATION"}],"time_window_days":7,"time_constraint_text":"last week","location_bias":{"mode":"SPECIFIC_LOCATION","location_name":"North Road"},"answer_format":"NORMAL"}

Input: Where can I find Sunleaf?
Output: {"intent":"ASK_LOCATION","query_text":"find Sunleaf","entities":[{"name":"Sunleaf","type":"ITEM"}],"time_window_days":0,"time_constraint_text":"","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}

Input: What do the Iron Guard do?
Output: {"intent":"ASK_ENTITY_FACTS","query_text":"Iron Guard role","entities":[{"name":"Iron Guard","type":"ORG"}],"time_window_days":0,"time_constraint_text":"","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}

Input: Who does the Ironwatch report to?
Output: {"intent":"ASK_RELATIONSHIP","query_text":"Ironwatch chain of command","entities":[{"name":"Ironwatch","type":"ORG"}],"time_window_days":0,"time_constraint_text":"","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}

Input: Is Port Valor bigger than Grayfall?
Output: {"intent":"ASK_COMPARISON","query_text":"Port Valor compared to Grayfall","entities":[{"name":"Port Valor","type":"LOCATION"},{"name":"Grayfall","type":"LOCATION"}],"time_window_days":0,"time_constraint_text":"","location_bias":{"mode":"NONE","location_name":""},"answer_format":"NORMAL"}

Input: How many ships disappeared this season?
Output: {"intent":"ASK_COUNT","query_text":"ships disappeared this season","entities":[],"time_window_days":0,"time_constraint_text":"this season","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}

Input: Tell me about Prince Theron.
Output: {"intent":"ASK_ENTITY_FACTS","query_text":"Prince Theron","entities":[{"name":"Prince Theron","type":"NPC"}],"time_window_days":0,"time_constraint_text":"","location_bias":{"mode":"NEAR_NPC","location_name":""},"answer_format":"NORMAL"}
`

const graphSystemPrompt = "You are a graph routing assistant. " +
	"Output ONLY valid JSON. Do not include markdown or comments. " +
	"Choose graph_intent and edge_types for traversing a world graph. " +
	"If no graph traversal is needed, use graph_intent NONE and empty edge_types."

const graphSchemaPrompt = `Schema:
{
  "graph_intent": "NONE | RELATIONSHIP | LOCATION | OWNERSHIP | MEMBERSHIP | CAUSALITY | ALL",
  "edge_types": ["KINSHIP", "INHERITED_FROM", "OWNS", "OWNED", "LOCATED_IN", "OPERATES_IN", "CONNECTS", "INVOLVED_IN", "HAPPENED_AT", "CAUSES"],
  "reason": "string"
}

Examples:
Input: Who is Aldric's uncle?
Output: {"graph_intent":"RELATIONSHIP","edge_types":["KINSHIP"],"reason":"Kinship term mentioned."}

Input: Where is the Crooked Tavern?
Output: {"graph_intent":"LOCATION","edge_types":["LOCATED_IN"],"reason":"Location question."}

Input: Who owns the Crooked Tavern?
Output: {"graph_intent":"OWNERSHIP","edge_types":["OWNS","OWNED"],"reason":"Ownership question."}

Input: Tell me about Aldric.
Output: {"graph_intent":"NONE","edge_types":[],"reason":"General facts can be handled by narrative retrieval."}
`

const retryNotice = "Your previous output was invalid JSON. Output ONLY valid JSON."

// queryUserBlock lists NPC context, the user message, and known-world entity
// names by category so entity extraction is grounded in names that exist.
func queryUserBlock(userText string, npcCtx NPCContext, hints world.Hints) string {
	lines := []string{
		"NPC_ID: " + npcCtx.NPCID,
		"NPC_NAME: " + npcCtx.NPCName,
		"NPC_LOCATION: " + npcCtx.NPCLocation,
		"WORLD_DATE: " + npcCtx.WorldDate,
		"USER_MESSAGE: " + userText,
	}
	if orgs := strings.Join(hints.OrgNames, "; "); orgs != "" {
		lines = append(lines, "KNOWN_ORGS: "+orgs)
	}
	if locations := strings.Join(hints.LocationNames, "; "); locations != "" {
		lines = append(lines, "KNOWN_LOCATIONS: "+locations)
	}
	if npcs := strings.Join(hints.NPCNames, "; "); npcs != "" {
		lines = append(lines, "KNOWN_NPCS: "+npcs)
	}
	if items := strings.Join(hints.ItemNames, "; "); items != "" {
		lines = append(lines, "KNOWN_ITEMS: "+items)
	}
	return strings.Join(lines, "\n")
}

// graphUserBlock lists the user message, the entities already extracted by
// query routing, and the edge types the world actually contains.
func graphUserBlock(userText string, entities []ExtractedEntity, availableEdgeTypes []string) string {
	var entityLines []string
	for _, e := range entities {
		if e.Name == "" {
			continue
		}
		entityLines = append(entityLines, "- "+e.Name+" ("+string(e.Type)+")")
	}
	entityBlock := "None"
	if len(entityLines) > 0 {
		entityBlock = strings.Join(entityLines, "\n")
	}

	return strings.Join([]string{
		"USER_MESSAGE: " + userText,
		"ENTITIES: " + entityBlock,
		"AVAILABLE_EDGE_TYPES: " + strings.Join(availableEdgeTypes, "; "),
	}, "\n")
}
