package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON unmarshals the JSON carried in a model reply into out.
// Models do not always return clean JSON, so it tries in order:
// a direct parse, the contents of a fenced ```json block, the slice
// between the first '{' and last '}', and finally the slice between
// the first '[' and last ']'.
func ExtractJSON(text string, out interface{}) error {
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}

	if match := fencedJSONPattern.FindStringSubmatch(text); match != nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), out); err == nil {
			return nil
		}
	}

	for _, pair := range []struct{ open, close string }{
		{"{", "}"},
		{"[", "]"},
	} {
		start := strings.Index(text, pair.open)
		end := strings.LastIndex(text, pair.close)
		if start >= 0 && end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), out); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("could not extract JSON from response: %s", truncate(text, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
