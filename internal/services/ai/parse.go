package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON parses a JSON object from a model response. Responses wrapped in
// prose or code fences are recovered by cutting from the first '{' to the last '}'.
func decodeJSON(content string, v any) error {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
