package model

import (
	"github.com/google/uuid"
)

// Difficulty labels a question's difficulty level.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyMedium   Difficulty = "MEDIUM"
	DifficultyHard     Difficulty = "HARD"
	DifficultyVeryHard Difficulty = "VERY_HARD"
)

// Question represents a single multiple-choice question.
// Invariant: 0 <= CorrectAnswer < len(Options), len(Options) >= 2.
type Question struct {
	ID            uuid.UUID  `json:"id"`
	CategoryID    uuid.UUID  `json:"category_id"`
	Title         string     `json:"title"`
	Options       []string   `json:"options"`
	CorrectAnswer int        `json:"correct_answer"`
	Difficulty    Difficulty `json:"difficulty"`
	ImageURL      *string    `json:"image_url,omitempty"`
}

// Valid checks the correct-answer index invariant.
func (q *Question) Valid() bool {
	return len(q.Options) >= 2 && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}

// StudentQuestion is a question without the correct answer, sent to students.
type StudentQuestion struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID uuid.UUID  `json:"category_id"`
	Title      string     `json:"title"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
	ImageURL   *string    `json:"image_url,omitempty"`
}

// ForStudent strips the correct answer from a question.
func (q *Question) ForStudent() StudentQuestion {
	return StudentQuestion{
		ID:         q.ID,
		CategoryID: q.CategoryID,
		Title:      q.Title,
		Options:    q.Options,
		Difficulty: q.Difficulty,
		ImageURL:   q.ImageURL,
	}
}

// BulkAddRequest is the payload for appending questions to an exam.
type BulkAddRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1,dive,required"`
}

// RandomAddRequest is the payload for quota-random question selection.
// Category accepts either a raw id string or a populated {_id} object.
type RandomAddRequest struct {
	Count           int            `json:"count" binding:"required,min=1"`
	Category        CategoryFilter `json:"category_id"`
	AcceptShortfall bool           `json:"accept_shortfall"`
}
