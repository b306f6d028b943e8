package agents

import (
	"encoding/json"
	"strings"
)

// ParsePlan extracts the first well-formed JSON object from free-form model
// output. Models wrap their plan in prose or code fences, so the parse scans
// for balanced braces rather than unmarshalling the whole text. A nil return
// means no plan was found; callers proceed with empty task lists.
func ParsePlan(text string) *Plan {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			c := text[i]
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = inString
			case '"':
				inString = !inString
			case '{':
				if !inString {
					depth++
				}
			case '}':
				if !inString {
					depth--
					if depth == 0 {
						var plan Plan
						if err := json.Unmarshal([]byte(text[start:i+1]), &plan); err == nil {
							return &plan
						}
						i = len(text)
					}
				}
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return nil
}
