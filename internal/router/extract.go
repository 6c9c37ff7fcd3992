package router

import "strings"

// extractJSON pulls the first JSON object out of a raw backend reply.
//
// Models wrap JSON in markdown fences or chatter around it often enough that
// strict decoding of the whole reply is useless. Strip fences, then take the
// substring from the first '{' to the last '}'. Returns "" when no object
// boundary is found.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimSpace(strings.Trim(text, "`"))
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}
