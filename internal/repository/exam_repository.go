package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luyenthi/luyenthi-backend/internal/model"
)

// ExamRepository handles exam definition data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, subject_id, class_id, author_id, kind, status, categories,
		        open_time, close_time, duration_minutes, passing_score,
		        show_result_immediately, show_correct_answers, created_at, updated_at
		 FROM exams
		 WHERE id = $1`, id,
	).Scan(
		&e.ID, &e.Title, &e.SubjectID, &e.ClassID, &e.AuthorID, &e.Kind, &e.Status,
		&e.Categories, &e.OpenTime, &e.CloseTime, &e.DurationMinutes, &e.PassingScore,
		&e.ShowResultImmediately, &e.ShowCorrectAnswers, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateStatus changes an exam's lifecycle status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// UpdateSettings modifies the non-content fields a draft exam may still
// change (kind, scheduling window, display flags, passing threshold).
func (r *ExamRepository) UpdateSettings(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, kind = $2, open_time = $3, close_time = $4, duration_minutes = $5,
		     passing_score = $6, show_result_immediately = $7, show_correct_answers = $8,
		     updated_at = NOW()
		 WHERE id = $9`,
		e.Title, e.Kind, e.OpenTime, e.CloseTime, e.DurationMinutes,
		e.PassingScore, e.ShowResultImmediately, e.ShowCorrectAnswers, e.ID)
	return err
}
