package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState enumerates exam session states. The submit flow is an
// explicit machine so illegal transitions (finalize from LOADING, review
// from CONFIRMING, ...) are rejected rather than accidentally permitted.
type SessionState string

const (
	SessionStateLoading    SessionState = "LOADING"
	SessionStateReady      SessionState = "READY"
	SessionStateReviewing  SessionState = "REVIEWING"
	SessionStateConfirming SessionState = "CONFIRMING"
	SessionStateFinalized  SessionState = "FINALIZED"
	SessionStateErrored    SessionState = "ERRORED"
)

// sessionTransitions is the legal transition table. FINALIZED and ERRORED
// are terminal. Finalize is additionally reachable from READY, REVIEWING
// and CONFIRMING via the deadline expiry path, which shares the same
// finalize code with a different trigger.
var sessionTransitions = map[SessionState][]SessionState{
	SessionStateLoading:    {SessionStateReady, SessionStateErrored},
	SessionStateReady:      {SessionStateReviewing, SessionStateFinalized},
	SessionStateReviewing:  {SessionStateReady, SessionStateConfirming, SessionStateFinalized},
	SessionStateConfirming: {SessionStateReady, SessionStateFinalized},
}

// CanTransition reports whether moving from one state to another is legal.
func (s SessionState) CanTransition(to SessionState) bool {
	for _, next := range sessionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the state admits no further transitions.
func (s SessionState) Terminal() bool {
	return s == SessionStateFinalized || s == SessionStateErrored
}

// SessionSnapshot is the durable, keyed record of an in-progress session.
// It is written before every mutation is acknowledged, so a crash or
// reload loses at most the in-flight event. Answers and flags live under
// their own keys: they change on every click and are saved without
// rewriting the snapshot.
type SessionSnapshot struct {
	ExamID      uuid.UUID    `json:"exam_id"`
	StudentID   int          `json:"student_id"`
	Kind        ExamKind     `json:"kind"`
	State       SessionState `json:"state"`
	CurrentPage int          `json:"current_page"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	Submitted   bool         `json:"submitted"`
}

// QuestionStatus summarizes one question's review-step status.
type QuestionStatus struct {
	QuestionID uuid.UUID `json:"question_id"`
	Index      int       `json:"index"`
	Answered   bool      `json:"answered"`
	Flagged    bool      `json:"flagged"`
}

// AnswerRequest records a single-select choice for one question.
type AnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Option     int       `json:"option" binding:"min=0"`
}

// PageRequest moves the pagination cursor.
type PageRequest struct {
	Op    string `json:"op" binding:"required,oneof=next prev jump"`
	Index int    `json:"index" binding:"min=0"`
}
