package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CleanJSONReply strips a leading/trailing ```json or ``` fence, which both
// Gemini and OpenAI occasionally wrap structured replies in even when asked
// for raw JSON, and reports whether the result is at least syntactically
// valid JSON (via a lenient gjson pass rather than a full unmarshal, since
// the caller owns its own target type and strict-decode error).
//
// Callers use this before attempting strict encoding/json.Unmarshal; when
// ok is false, encoding/json will fail too and the caller should surface
// apperr.KindModelResponseInvalid.
func CleanJSONReply(raw string) (cleaned string, ok bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	return s, gjson.Valid(s)
}
