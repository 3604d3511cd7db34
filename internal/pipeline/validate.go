package pipeline

import (
	"encoding/json"
	"strings"
)

// CardTypeTag is the sentinel top-level type every artifact must carry.
const CardTypeTag = "AdaptiveCard"

// validateCard parses the provider's message text into a card artifact. The
// content must be a JSON object tagged "type":"AdaptiveCard"; nested card
// structure is passed through opaquely, trusted beyond the top-level tag.
// Failures retain the raw text for diagnostics (logs only).
func validateCard(content string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(content)
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil || probe == nil {
		return nil, malformedResponseError{reason: "content is not a JSON object", raw: content}
	}
	var tag string
	if err := json.Unmarshal(probe["type"], &tag); err != nil || tag != CardTypeTag {
		return nil, malformedResponseError{reason: "missing or wrong card type tag", raw: content}
	}
	return json.RawMessage(trimmed), nil
}
