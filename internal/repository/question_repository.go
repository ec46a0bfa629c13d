package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luyenthi/luyenthi-backend/internal/model"
)

// QuestionRepository handles question and exam-question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByExam retrieves an exam's resolved question list, ordered by
// position, with the point value each entry carries.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.TakeQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.category_id, q.title, q.options, q.correct_answer, q.difficulty, q.image_url,
		        eq.points
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position ASC`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.TakeQuestion
	for rows.Next() {
		var e model.TakeQuestion
		if err := rows.Scan(
			&e.Question.ID, &e.Question.CategoryID, &e.Question.Title, &e.Question.Options,
			&e.Question.CorrectAnswer, &e.Question.Difficulty, &e.Question.ImageURL,
			&e.Points,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListBank retrieves the pool of questions eligible for an exam (its
// categories) that are not yet assigned to it. QuotaSelector and the
// bank-pick flow both draw from this set, so repeated random adds can
// never duplicate a question within one exam.
func (r *QuestionRepository) ListBank(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.category_id, q.title, q.options, q.correct_answer, q.difficulty, q.image_url
		 FROM questions q
		 WHERE q.category_id = ANY (SELECT unnest(categories) FROM exams WHERE id = $1)
		   AND NOT EXISTS (
		       SELECT 1 FROM exam_questions eq
		       WHERE eq.exam_id = $1 AND eq.question_id = q.id
		   )
		 ORDER BY q.category_id, q.id`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(
			&q.ID, &q.CategoryID, &q.Title, &q.Options,
			&q.CorrectAnswer, &q.Difficulty, &q.ImageURL,
		); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AssignedIDs returns the set of question ids already on an exam.
func (r *QuestionRepository) AssignedIDs(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM exam_questions WHERE exam_id = $1`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assigned := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		assigned[id] = true
	}
	return assigned, rows.Err()
}

// BulkAdd appends questions to an exam in one statement. Conflicting
// entries are skipped, so re-running an add is idempotent and a partial
// failure never applies: either the insert commits or the exam's
// question list is left unchanged.
func (r *QuestionRepository) BulkAdd(ctx context.Context, examID uuid.UUID, questionIDs []uuid.UUID, points float64) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_questions (exam_id, question_id, points, position)
		 SELECT $1, qid, $3,
		        COALESCE((SELECT MAX(position) FROM exam_questions WHERE exam_id = $1), 0) + ord
		 FROM unnest($2::uuid[]) WITH ORDINALITY AS t(qid, ord)
		 ON CONFLICT (exam_id, question_id) DO NOTHING`,
		examID, questionIDs, points)
	return err
}

// CountByExam returns how many questions an exam currently holds.
func (r *QuestionRepository) CountByExam(ctx context.Context, examID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_questions WHERE exam_id = $1`, examID,
	).Scan(&count)
	return count, err
}
