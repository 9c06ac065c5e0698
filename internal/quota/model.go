// Package quota enforces a per-user monthly chat-turn allowance, adapted
// from the teacher's ai_usage token-ledger concern onto CartPilot's chat
// endpoint: one allowance unit per orchestrator turn instead of one per
// raw LLM call.
package quota

import "errors"

// ErrExhausted is returned when a user has no turns remaining for the
// current calendar month.
var ErrExhausted = errors.New("monthly chat quota exhausted")

// DefaultMonthlyTurns is the number of chat turns granted per month.
const DefaultMonthlyTurns = 100
