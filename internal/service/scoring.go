package service

import (
	"github.com/google/uuid"
)

// ScoredQuestion is the grading view of one exam entry: the authoritative
// correct option index and the point value the question carries.
type ScoredQuestion struct {
	QuestionID    uuid.UUID
	CorrectAnswer int
	Points        float64
}

// ScoreResult is the outcome of grading one answer set.
type ScoreResult struct {
	CorrectCount int     `json:"correct_count"`
	Total        int     `json:"total"`
	EarnedPoints float64 `json:"earned_points"`
	TotalPoints  float64 `json:"total_points"`
	Percentage   float64 `json:"percentage"`
}

// Score grades an answer set against the answer key. It is a pure
// function of its inputs: no clock, no I/O, identical arguments always
// yield identical results.
//
// Correctness compares the stored correct-option index only; unanswered
// or wrong selections earn 0 for that question. A zero total-point exam
// reports percentage 0 rather than dividing by zero.
func Score(questions []ScoredQuestion, answers map[string]int) ScoreResult {
	res := ScoreResult{Total: len(questions)}

	for _, q := range questions {
		res.TotalPoints += q.Points

		selected, answered := answers[q.QuestionID.String()]
		if answered && selected == q.CorrectAnswer {
			res.CorrectCount++
			res.EarnedPoints += q.Points
		}
	}

	if res.TotalPoints > 0 {
		res.Percentage = res.EarnedPoints / res.TotalPoints * 100
	}

	return res
}
