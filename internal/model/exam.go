package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the lifecycle states of an exam.
// The only legal transition is DRAFT → PUBLISHED.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "DRAFT"
	ExamStatusPublished ExamStatus = "PUBLISHED"
)

// ExamKind distinguishes untimed practice exams from scheduled timed tests.
type ExamKind string

const (
	ExamKindPractice ExamKind = "PRACTICE"
	ExamKindTest     ExamKind = "TEST"
)

// Exam represents an exam definition owned by a teacher.
type Exam struct {
	ID                    uuid.UUID   `json:"id"`
	Title                 string      `json:"title"`
	SubjectID             uuid.UUID   `json:"subject_id"`
	ClassID               *uuid.UUID  `json:"class_id,omitempty"`
	AuthorID              int         `json:"author_id"`
	Kind                  ExamKind    `json:"kind"`
	Status                ExamStatus  `json:"status"`
	Categories            []uuid.UUID `json:"categories"`
	OpenTime              *time.Time  `json:"open_time,omitempty"`
	CloseTime             *time.Time  `json:"close_time,omitempty"`
	DurationMinutes       int         `json:"duration_minutes"`
	PassingScore          float64     `json:"passing_score"`
	ShowResultImmediately bool        `json:"show_result_immediately"`
	ShowCorrectAnswers    bool        `json:"show_correct_answers"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// Timed reports whether sessions for this exam run against a deadline.
func (e *Exam) Timed() bool {
	return e.Kind == ExamKindTest && e.DurationMinutes > 0
}

// EffectiveCloseTime derives close time for timed tests as open + duration.
// Practice exams keep their independently set close time.
func (e *Exam) EffectiveCloseTime() *time.Time {
	if e.Timed() && e.OpenTime != nil {
		t := e.OpenTime.Add(time.Duration(e.DurationMinutes) * time.Minute)
		return &t
	}
	return e.CloseTime
}

// ExamQuestion is one resolved entry of an exam instance: a question
// reference plus the point value it carries in this exam.
type ExamQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Points     float64   `json:"points"`
}

// ExamInstance is the resolved, student-facing form of a published exam:
// the definition plus its ordered question list with point values.
type ExamInstance struct {
	ExamID          uuid.UUID      `json:"exam_id"`
	Title           string         `json:"title"`
	Kind            ExamKind       `json:"kind"`
	DurationMinutes int            `json:"duration_minutes"`
	PassingScore    float64        `json:"passing_score"`
	Questions       []TakeQuestion `json:"questions"`
}

// TakeQuestion pairs a full question with its point value for taking.
type TakeQuestion struct {
	Question Question `json:"question"`
	Points   float64  `json:"points"`
}

// UpdateExamRequest is the payload for updating a draft exam's
// non-content fields.
type UpdateExamRequest struct {
	Title                 string     `json:"title" binding:"omitempty,min=3,max=255"`
	Kind                  *ExamKind  `json:"kind" binding:"omitempty,examkind"`
	OpenTime              *time.Time `json:"open_time" binding:"omitempty"`
	CloseTime             *time.Time `json:"close_time" binding:"omitempty,gtfield=OpenTime"`
	DurationMinutes       *int       `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	PassingScore          *float64   `json:"passing_score" binding:"omitempty,min=0,max=100"`
	ShowResultImmediately *bool      `json:"show_result_immediately" binding:"omitempty"`
	ShowCorrectAnswers    *bool      `json:"show_correct_answers" binding:"omitempty"`
}
