package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/model"
	"github.com/luyenthi/luyenthi-backend/internal/repository"
	"github.com/luyenthi/luyenthi-backend/internal/store"
	"github.com/rs/zerolog"
)

// Domain Errors
var (
	ErrNotExamAuthor    = errors.New("not the author of this exam")
	ErrNoQuestions      = errors.New("exam has no questions, cannot publish/start")
	ErrExamNotDraft     = errors.New("exam status is not DRAFT")
	ErrExamNotPublished = errors.New("exam status is not PUBLISHED")
	ErrQuotaShortfall   = errors.New("fewer questions available than requested")
)

// defaultQuestionPoints is the point value assigned to bank-added questions.
const defaultQuestionPoints = 1.0

// ExamService handles exam authoring, publishing and instance resolution.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	selector     *QuotaSelector
	store        store.SessionStore
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	selector *QuotaSelector,
	st store.SessionStore,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		selector:     selector,
		store:        st,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(ctx, id)
}

// UpdateSettings modifies a draft exam's non-content fields. Only the
// author may update, and only while the exam is still a draft.
func (s *ExamService) UpdateSettings(ctx context.Context, examID uuid.UUID, authorID int, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Kind != nil {
		exam.Kind = *req.Kind
	}
	if req.OpenTime != nil {
		exam.OpenTime = req.OpenTime
	}
	if req.CloseTime != nil {
		exam.CloseTime = req.CloseTime
	}
	if req.DurationMinutes != nil {
		exam.DurationMinutes = *req.DurationMinutes
	}
	if req.PassingScore != nil {
		exam.PassingScore = *req.PassingScore
	}
	if req.ShowResultImmediately != nil {
		exam.ShowResultImmediately = *req.ShowResultImmediately
	}
	if req.ShowCorrectAnswers != nil {
		exam.ShowCorrectAnswers = *req.ShowCorrectAnswers
	}

	if err := s.examRepo.UpdateSettings(ctx, exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Publish moves a draft exam to PUBLISHED and warms the instance cache.
// An exam with zero questions cannot be published.
func (s *ExamService) Publish(ctx context.Context, examID uuid.UUID, authorID int) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, ErrExamNotDraft
	}

	count, err := s.questionRepo.CountByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoQuestions
	}

	if err := s.examRepo.UpdateStatus(ctx, examID, model.ExamStatusPublished); err != nil {
		return nil, err
	}
	exam.Status = model.ExamStatusPublished

	// Cache warm failure is not fatal: Instance falls back to the DB.
	if _, err := s.cacheInstance(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("failed to warm instance cache")
	}

	return exam, nil
}

// Instance resolves a published exam into its student-facing instance,
// serving from cache when possible.
func (s *ExamService) Instance(ctx context.Context, examID uuid.UUID) (*model.ExamInstance, error) {
	cached, err := s.store.Get(ctx, config.SessionKey.ExamInstanceKey(examID.String()))
	if err == nil {
		inst := &model.ExamInstance{}
		if jsonErr := json.Unmarshal([]byte(cached), inst); jsonErr == nil {
			return inst, nil
		}
		// Corrupt cache entry, rebuild from the DB.
		s.log.Warn().Str("exam_id", examID.String()).Msg("corrupt instance cache entry")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("read instance cache: %w", err)
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, ErrExamNotPublished
	}

	return s.cacheInstance(ctx, exam)
}

// cacheInstance builds an exam's instance from the DB and stores it.
func (s *ExamService) cacheInstance(ctx context.Context, exam *model.Exam) (*model.ExamInstance, error) {
	questions, err := s.questionRepo.ListByExam(ctx, exam.ID)
	if err != nil {
		return nil, fmt.Errorf("load exam questions: %w", err)
	}

	inst := &model.ExamInstance{
		ExamID:          exam.ID,
		Title:           exam.Title,
		Kind:            exam.Kind,
		DurationMinutes: exam.DurationMinutes,
		PassingScore:    exam.PassingScore,
		Questions:       questions,
	}

	payload, err := json.Marshal(inst)
	if err != nil {
		return nil, fmt.Errorf("marshal instance: %w", err)
	}
	if err := s.store.Set(ctx, config.SessionKey.ExamInstanceKey(exam.ID.String()), string(payload)); err != nil {
		return nil, fmt.Errorf("cache instance: %w", err)
	}

	return inst, nil
}

// ListQuestions returns an exam's current question list for its author.
func (s *ExamService) ListQuestions(ctx context.Context, examID uuid.UUID, authorID int) ([]model.TakeQuestion, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []model.TakeQuestion{}
	}
	return questions, nil
}

// Bank returns the unassigned question pool an exam may still draw from.
func (s *ExamService) Bank(ctx context.Context, examID uuid.UUID, authorID int) ([]model.Question, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.AuthorID != authorID {
		return nil, ErrNotExamAuthor
	}
	pool, err := s.questionRepo.ListBank(ctx, examID)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = []model.Question{}
	}
	return pool, nil
}

// BulkAdd appends hand-picked questions to a draft exam.
func (s *ExamService) BulkAdd(ctx context.Context, examID uuid.UUID, authorID int, questionIDs []uuid.UUID) error {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return err
	}
	if exam.AuthorID != authorID {
		return ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return ErrExamNotDraft
	}
	return s.questionRepo.BulkAdd(ctx, examID, questionIDs, defaultQuestionPoints)
}

// RandomAdd draws random questions from the exam's bank and appends them.
//
// When the bank cannot satisfy the requested count, the draw is returned
// alongside ErrQuotaShortfall without applying it. A caller that has
// explicitly accepted the shortfall gets the partial draw committed.
func (s *ExamService) RandomAdd(ctx context.Context, examID uuid.UUID, authorID int, req *model.RandomAddRequest) (QuotaSelection, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return QuotaSelection{}, err
	}
	if exam.AuthorID != authorID {
		return QuotaSelection{}, ErrNotExamAuthor
	}
	if exam.Status != model.ExamStatusDraft {
		return QuotaSelection{}, ErrExamNotDraft
	}

	pool, err := s.questionRepo.ListBank(ctx, examID)
	if err != nil {
		return QuotaSelection{}, err
	}

	// The bank query already excludes assigned questions.
	sel := s.selector.SelectRandom(pool, req.Category, req.Count, nil)

	if sel.Shortfall > 0 && !req.AcceptShortfall {
		return sel, ErrQuotaShortfall
	}

	ids := make([]uuid.UUID, 0, len(sel.Selected))
	for _, q := range sel.Selected {
		ids = append(ids, q.ID)
	}
	if err := s.questionRepo.BulkAdd(ctx, examID, ids, defaultQuestionPoints); err != nil {
		return QuotaSelection{}, err
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("requested", sel.Requested).
		Int("added", len(sel.Selected)).
		Int("shortfall", sel.Shortfall).
		Msg("random questions added")

	return sel, nil
}
