package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionFlag   Action = "flag"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to save a single answer.
type AnswerRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
	Option int    `json:"option"`
}

// FlagRequest is sent by the client to toggle a question's review flag.
type FlagRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventFlagged   Event = "flagged"
	EventPong      Event = "pong"
	EventFinalized Event = "finalized"
)

type SavedResponse struct {
	Event  Event  `json:"event"`
	QID    string `json:"q_id"`
	Status string `json:"status"`
}

type FlaggedResponse struct {
	Event   Event  `json:"event"`
	QID     string `json:"q_id"`
	Flagged bool   `json:"flagged"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse carries the authoritative remaining time so the client
// clock re-syncs on every ping.
type PongResponse struct {
	Event            Event  `json:"event"`
	RemainingSeconds *int64 `json:"remaining_seconds,omitempty"`
}

// FinalizedResponse tells the client its session was closed, typically
// by deadline expiry while the socket was open.
type FinalizedResponse struct {
	Event Event `json:"event"`
}
