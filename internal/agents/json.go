package agents

import (
	"encoding/json"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
)

var errModelResponseInvalid = apperr.New(apperr.KindModelResponseInvalid, "model reply was not valid JSON")

func decodeJSON(raw string, target any) error {
	return json.Unmarshal([]byte(raw), target)
}
