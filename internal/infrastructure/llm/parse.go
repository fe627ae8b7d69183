package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// fencedJSON matches a fenced code block, tagged json or untagged, holding an
// object.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseReply recovers a JSON object from a model reply. Recovery order,
// stopping at the first success:
//  1. the whole trimmed reply as a JSON object,
//  2. the content of a fenced code block,
//  3. the substring between the first '{' and the last '}'.
//
// When everything fails it returns a fixed parse-error object so callers
// always see the four baseline keys.
func ParseReply(raw string) map[string]any {
	if data, ok := tryParseObject(strings.TrimSpace(raw)); ok {
		return data
	}

	if match := fencedJSON.FindStringSubmatch(raw); len(match) > 1 {
		if data, ok := tryParseObject(strings.TrimSpace(match[1])); ok {
			return data
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		if data, ok := tryParseObject(raw[start : end+1]); ok {
			return data
		}
	}

	return map[string]any{
		"title":    ParseErrorTitle,
		"summary":  ParseErrorSummary,
		"keywords": []string{},
		"date":     DateNotFound,
	}
}

func tryParseObject(candidate string) (map[string]any, bool) {
	if candidate == "" {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		return nil, false
	}
	if data == nil {
		return nil, false
	}
	return data, true
}
