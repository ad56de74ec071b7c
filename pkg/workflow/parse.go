package workflow

import (
	"encoding/json"
	"regexp"
)

var fencedJSONPattern = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// ParseModelOutput turns raw model text into a structured object using a
// three-tier fallback: direct JSON parse, then a fenced ```json block, then
// the raw text wrapped as {"text": ...}. It never fails; malformed model
// output is data, not an error.
func ParseModelOutput(content string) map[string]interface{} {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed
	}

	if match := fencedJSONPattern.FindStringSubmatch(content); match != nil {
		if err := json.Unmarshal([]byte(match[1]), &parsed); err == nil {
			return parsed
		}
	}

	return map[string]interface{}{"text": content}
}
