package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one completed, scored submission of an exam by a student.
// Attempts are append-only: history is never mutated or reordered, only
// cleared explicitly as a whole.
type Attempt struct {
	ID            uuid.UUID      `json:"id"`
	ExamID        uuid.UUID      `json:"exam_id"`
	StudentID     int            `json:"student_id"`
	CorrectCount  int            `json:"correct_count"`
	Total         int            `json:"total"`
	EarnedPoints  float64        `json:"earned_points"`
	TotalPoints   float64        `json:"total_points"`
	Percentage    float64        `json:"percentage"`
	Passed        bool           `json:"passed"`
	Answers       map[string]int `json:"answers"`
	AutoSubmitted bool           `json:"auto_submitted"`
	SubmittedAt   time.Time      `json:"submitted_at"`
}
