package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luyenthi/luyenthi-backend/internal/model"
)

// AttemptRepository handles attempt history data access. Attempts are
// append-only: there is no update path, only insert, list and the
// explicit whole-history clear.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Insert appends a single attempt record.
func (r *AttemptRepository) Insert(ctx context.Context, a *model.Attempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO attempts (id, exam_id, student_id, correct_count, total,
		                       earned_points, total_points, percentage, passed,
		                       answers, auto_submitted, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.ExamID, a.StudentID, a.CorrectCount, a.Total,
		a.EarnedPoints, a.TotalPoints, a.Percentage, a.Passed,
		answers, a.AutoSubmitted, a.SubmittedAt)
	return err
}

// BulkInsert appends a batch of attempts in one statement.
func (r *AttemptRepository) BulkInsert(ctx context.Context, batch []*model.Attempt) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	examIDs := make([]uuid.UUID, 0, n)
	students := make([]int, 0, n)
	corrects := make([]int, 0, n)
	totals := make([]int, 0, n)
	earned := make([]float64, 0, n)
	totalPts := make([]float64, 0, n)
	percentages := make([]float64, 0, n)
	passed := make([]bool, 0, n)
	answers := make([][]byte, 0, n)
	autos := make([]bool, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, a := range batch {
		ab, err := json.Marshal(a.Answers)
		if err != nil {
			return err
		}
		ids = append(ids, a.ID)
		examIDs = append(examIDs, a.ExamID)
		students = append(students, a.StudentID)
		corrects = append(corrects, a.CorrectCount)
		totals = append(totals, a.Total)
		earned = append(earned, a.EarnedPoints)
		totalPts = append(totalPts, a.TotalPoints)
		percentages = append(percentages, a.Percentage)
		passed = append(passed, a.Passed)
		answers = append(answers, ab)
		autos = append(autos, a.AutoSubmitted)
		submittedAts = append(submittedAts, a.SubmittedAt)
	}

	query := `
		INSERT INTO attempts (id, exam_id, student_id, correct_count, total,
		                      earned_points, total_points, percentage, passed,
		                      answers, auto_submitted, submitted_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::float8[],
			$7::float8[],
			$8::float8[],
			$9::bool[],
			$10::jsonb[],
			$11::bool[],
			$12::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, examIDs, students, corrects, totals,
		earned, totalPts, percentages, passed,
		answers, autos, submittedAts)
	return err
}

// ListByExamAndStudent retrieves a student's attempts for one exam in
// chronological order.
func (r *AttemptRepository) ListByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, correct_count, total,
		        earned_points, total_points, percentage, passed,
		        answers, auto_submitted, submitted_at
		 FROM attempts
		 WHERE exam_id = $1 AND student_id = $2
		 ORDER BY submitted_at ASC`, examID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var answers []byte
		if err := rows.Scan(
			&a.ID, &a.ExamID, &a.StudentID, &a.CorrectCount, &a.Total,
			&a.EarnedPoints, &a.TotalPoints, &a.Percentage, &a.Passed,
			&answers, &a.AutoSubmitted, &a.SubmittedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// DeleteByExamAndStudent clears a student's history for one exam.
func (r *AttemptRepository) DeleteByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM attempts WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID)
	return err
}
