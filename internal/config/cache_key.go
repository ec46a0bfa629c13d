package config

import (
	"fmt"
)

type SessionKeyStruct struct{}

func NewSessionKeyStruct() *SessionKeyStruct {
	return &SessionKeyStruct{}
}

// SessionStateKey returns the key holding a student's session snapshot
// (state machine position, current page, submitted marker). One session
// per (student, exam); the session kind is recorded in the snapshot,
// never in the key, so clients cannot address a session they invented.
func (r *SessionKeyStruct) SessionStateKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:session", studentID, examID)
}

// AnswersKey returns the key holding a student's in-progress answers.
func (r *SessionKeyStruct) AnswersKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:answers", studentID, examID)
}

// FlagsKey returns the key holding a student's review flags.
func (r *SessionKeyStruct) FlagsKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:flags", studentID, examID)
}

// DeadlineKey returns the key holding a timed session's absolute deadline.
func (r *SessionKeyStruct) DeadlineKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:deadline", studentID, examID)
}

// FinalizedKey returns the key used as the once-only finalize guard.
func (r *SessionKeyStruct) FinalizedKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:finalized", studentID, examID)
}

// HistoryKey returns the key holding a student's attempt history list.
func (r *SessionKeyStruct) HistoryKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:history", studentID, examID)
}

// DeadlineIndex is the sorted set of active timed sessions scored by their
// deadline (unix seconds). The deadline worker polls it every tick.
func (r *SessionKeyStruct) DeadlineIndex() string {
	return "sessions:deadlines"
}

// DeadlineMember is the member format used inside the deadline index.
func (r *SessionKeyStruct) DeadlineMember(examID string, studentID int) string {
	return fmt.Sprintf("%s:%d", examID, studentID)
}

// ExamInstanceKey returns the key caching a published exam's resolved
// question list (with points) for session starts.
func (r *SessionKeyStruct) ExamInstanceKey(examID string) string {
	return fmt.Sprintf("exam:%s:instance", examID)
}

var SessionKey = NewSessionKeyStruct()
