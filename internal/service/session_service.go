package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/model"
	"github.com/luyenthi/luyenthi-backend/internal/store"
	"github.com/rs/zerolog"
)

// Session errors.
var (
	ErrSessionNotFound   = errors.New("no active session for this exam")
	ErrSessionFinalized  = errors.New("session already finalized")
	ErrInvalidTransition = errors.New("illegal session state transition")
	ErrQuestionNotInExam = errors.New("question does not belong to this exam")
	ErrInvalidOption     = errors.New("selected option is out of range")
	ErrPageOutOfRange    = errors.New("page index out of range")
	ErrExamLoadFailed    = errors.New("exam could not be loaded")
)

// ExamInstanceSource resolves a published exam into its question list.
// Satisfied by ExamService; tests substitute a fixture-backed source.
type ExamInstanceSource interface {
	Instance(ctx context.Context, examID uuid.UUID) (*model.ExamInstance, error)
}

// AttemptPurger removes a student's persisted attempt rows for one exam.
type AttemptPurger interface {
	DeleteByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) error
}

// PageQuestion is one entry of the current page, with the student's
// recorded answer (if any) alongside the sanitized question.
type PageQuestion struct {
	Question model.StudentQuestion `json:"question"`
	Points   float64               `json:"points"`
	Answer   *int                  `json:"answer,omitempty"`
	Flagged  bool                  `json:"flagged"`
}

// SessionView is the full client-facing state of a session: enough to
// render the take page from scratch after a reload.
type SessionView struct {
	ExamID           uuid.UUID          `json:"exam_id"`
	Title            string             `json:"title"`
	Kind             model.ExamKind     `json:"kind"`
	State            model.SessionState `json:"state"`
	CurrentPage      int                `json:"current_page"`
	TotalPages       int                `json:"total_pages"`
	QuestionsPerPage int                `json:"questions_per_page"`
	Page             []PageQuestion     `json:"page"`
	Answers          map[string]int     `json:"answers"`
	Flags            map[string]bool    `json:"flags"`
	AnsweredCount    int                `json:"answered_count"`
	Total            int                `json:"total"`
	RemainingSeconds *int64             `json:"remaining_seconds,omitempty"`
	Submitted        bool               `json:"submitted"`
}

// SessionService drives the exam-taking state machine. All session state
// lives in the store, keyed per (student, exam), so any instance of the
// server can handle any request and a reload recovers everything. The
// session kind is the exam's own, resolved server-side; it is never
// taken from the client.
type SessionService struct {
	cfg       *config.Config
	store     store.SessionStore
	clock     *SessionClock
	instances ExamInstanceSource
	attempts  AttemptPurger
	now       func() time.Time
	log       zerolog.Logger
}

// NewSessionService creates a new SessionService. nowFn defaults to
// time.Now when nil.
func NewSessionService(
	cfg *config.Config,
	st store.SessionStore,
	clock *SessionClock,
	instances ExamInstanceSource,
	attempts AttemptPurger,
	nowFn func() time.Time,
	log zerolog.Logger,
) *SessionService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SessionService{
		cfg:       cfg,
		store:     st,
		clock:     clock,
		instances: instances,
		attempts:  attempts,
		now:       nowFn,
		log:       log.With().Str("component", "session_service").Logger(),
	}
}

// ─── Snapshot persistence ──────────────────────────────────────────────

func (s *SessionService) loadSnapshot(ctx context.Context, examID uuid.UUID, studentID int) (*model.SessionSnapshot, error) {
	raw, err := s.store.Get(ctx, config.SessionKey.SessionStateKey(examID.String(), studentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	snap := &model.SessionSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		return nil, fmt.Errorf("corrupt session snapshot: %w", err)
	}
	return snap, nil
}

func (s *SessionService) saveSnapshot(ctx context.Context, snap *model.SessionSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	key := config.SessionKey.SessionStateKey(snap.ExamID.String(), snap.StudentID)
	if err := s.store.Set(ctx, key, string(payload)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionService) loadAnswers(ctx context.Context, examID uuid.UUID, studentID int) (map[string]int, error) {
	answers := make(map[string]int)
	raw, err := s.store.Get(ctx, config.SessionKey.AnswersKey(examID.String(), studentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return answers, nil
		}
		return nil, fmt.Errorf("read answers: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		return nil, fmt.Errorf("corrupt answers: %w", err)
	}
	return answers, nil
}

func (s *SessionService) saveAnswers(ctx context.Context, examID uuid.UUID, studentID int, answers map[string]int) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return s.store.Set(ctx, config.SessionKey.AnswersKey(examID.String(), studentID), string(payload))
}

func (s *SessionService) loadFlags(ctx context.Context, examID uuid.UUID, studentID int) (map[string]bool, error) {
	flags := make(map[string]bool)
	raw, err := s.store.Get(ctx, config.SessionKey.FlagsKey(examID.String(), studentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return flags, nil
		}
		return nil, fmt.Errorf("read flags: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &flags); err != nil {
		return nil, fmt.Errorf("corrupt flags: %w", err)
	}
	return flags, nil
}

func (s *SessionService) saveFlags(ctx context.Context, examID uuid.UUID, studentID int, flags map[string]bool) error {
	payload, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}
	return s.store.Set(ctx, config.SessionKey.FlagsKey(examID.String(), studentID), string(payload))
}

// loadInstance fetches the exam instance under the configured timeout so
// a hung fetch surfaces as a load failure rather than an indefinite hang.
func (s *SessionService) loadInstance(ctx context.Context, examID uuid.UUID) (*model.ExamInstance, error) {
	lctx, cancel := context.WithTimeout(ctx, s.cfg.LoadTimeout)
	defer cancel()

	inst, err := s.instances.Instance(lctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	if len(inst.Questions) == 0 {
		return nil, fmt.Errorf("%w: exam has no questions", ErrExamLoadFailed)
	}
	return inst, nil
}

// ─── Lifecycle ─────────────────────────────────────────────────────────

// Start opens a session or resumes a saved one. The session's kind comes
// from the exam itself: a timed test always runs against the clock no
// matter what the client sends.
//
// Resuming a timed session whose deadline has already passed finalizes
// it immediately with whatever answers were saved.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, studentID int) (*SessionView, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	switch {
	case err == nil && snap.State == model.SessionStateFinalized:
		// Practice exams may be retaken: a finished run resets to a fresh
		// one. Timed tests stay locked once submitted.
		if snap.Kind != model.ExamKindPractice {
			return nil, ErrSessionFinalized
		}
		if err := s.reset(ctx, examID, studentID); err != nil {
			return nil, err
		}
	case err == nil && snap.State == model.SessionStateErrored:
		// A failed load is retryable, start over.
		if err := s.reset(ctx, examID, studentID); err != nil {
			return nil, err
		}
	case err == nil && snap.State != model.SessionStateLoading:
		inst, err := s.loadInstance(ctx, examID)
		if err != nil {
			return nil, err
		}
		return s.resume(ctx, inst, snap)
	case err != nil && !errors.Is(err, ErrSessionNotFound):
		return nil, err
	}

	// Record the load in progress. A crash mid-fetch leaves a LOADING
	// snapshot behind, which the next start simply overwrites.
	snap = &model.SessionSnapshot{
		ExamID:      examID,
		StudentID:   studentID,
		State:       model.SessionStateLoading,
		CurrentPage: 0,
		StartedAt:   s.now(),
	}
	if err := s.saveSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	inst, err := s.loadInstance(ctx, examID)
	if err != nil {
		snap.State = model.SessionStateErrored
		if saveErr := s.saveSnapshot(ctx, snap); saveErr != nil {
			return nil, saveErr
		}
		return nil, err
	}

	snap.Kind = inst.Kind
	snap.State = model.SessionStateReady

	if inst.Kind == model.ExamKindTest && inst.DurationMinutes > 0 {
		duration := time.Duration(inst.DurationMinutes) * time.Minute
		deadline, err := s.clock.StartOrResume(ctx, config.SessionKey.DeadlineKey(examID.String(), studentID), duration)
		if err != nil {
			return nil, err
		}
		snap.Deadline = &deadline

		member := config.SessionKey.DeadlineMember(examID.String(), studentID)
		if err := s.store.IndexAdd(ctx, config.SessionKey.DeadlineIndex(), member, float64(deadline.Unix())); err != nil {
			return nil, fmt.Errorf("index deadline: %w", err)
		}
	}

	if err := s.saveSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("exam_id", examID.String()).
		Int("student_id", studentID).
		Str("kind", string(snap.Kind)).
		Msg("session started")

	return s.buildView(ctx, inst, snap)
}

// resume rebuilds the view of a saved session, auto-finalizing first if
// its deadline already passed while the student was away.
func (s *SessionService) resume(ctx context.Context, inst *model.ExamInstance, snap *model.SessionSnapshot) (*SessionView, error) {
	if snap.Deadline != nil && Remaining(*snap.Deadline, s.now()) == 0 {
		if _, err := s.Finalize(ctx, snap.ExamID, snap.StudentID, true); err != nil && !errors.Is(err, ErrSessionFinalized) {
			return nil, err
		}
		return nil, ErrSessionFinalized
	}
	return s.buildView(ctx, inst, snap)
}

// reset wipes every key of a session so a fresh one can start.
func (s *SessionService) reset(ctx context.Context, examID uuid.UUID, studentID int) error {
	eid := examID.String()
	return s.store.Delete(ctx,
		config.SessionKey.SessionStateKey(eid, studentID),
		config.SessionKey.AnswersKey(eid, studentID),
		config.SessionKey.FlagsKey(eid, studentID),
		config.SessionKey.FinalizedKey(eid, studentID),
		config.SessionKey.DeadlineKey(eid, studentID),
	)
}

// State returns the current view of an active session.
func (s *SessionService) State(ctx context.Context, examID uuid.UUID, studentID int) (*SessionView, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	inst, err := s.instances.Instance(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	return s.buildView(ctx, inst, snap)
}

// ─── Answering ─────────────────────────────────────────────────────────

// SelectAnswer records a single-select choice. The answer is persisted
// before the call returns, so an immediate reload cannot lose it.
func (s *SessionService) SelectAnswer(ctx context.Context, examID uuid.UUID, studentID int, questionID uuid.UUID, option int) error {
	_, inst, err := s.activeSession(ctx, examID, studentID)
	if err != nil {
		return err
	}

	var target *model.Question
	for i := range inst.Questions {
		if inst.Questions[i].Question.ID == questionID {
			target = &inst.Questions[i].Question
			break
		}
	}
	if target == nil {
		return ErrQuestionNotInExam
	}
	if option < 0 || option >= len(target.Options) {
		return ErrInvalidOption
	}

	answers, err := s.loadAnswers(ctx, examID, studentID)
	if err != nil {
		return err
	}
	answers[questionID.String()] = option
	return s.saveAnswers(ctx, examID, studentID, answers)
}

// ToggleFlag flips a question's review flag and returns the new value.
func (s *SessionService) ToggleFlag(ctx context.Context, examID uuid.UUID, studentID int, questionID uuid.UUID) (bool, error) {
	_, inst, err := s.activeSession(ctx, examID, studentID)
	if err != nil {
		return false, err
	}

	found := false
	for i := range inst.Questions {
		if inst.Questions[i].Question.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return false, ErrQuestionNotInExam
	}

	flags, err := s.loadFlags(ctx, examID, studentID)
	if err != nil {
		return false, err
	}
	qid := questionID.String()
	if flags[qid] {
		delete(flags, qid)
	} else {
		flags[qid] = true
	}
	if err := s.saveFlags(ctx, examID, studentID, flags); err != nil {
		return false, err
	}
	return flags[qid], nil
}

// activeSession loads a session that must still accept mutations,
// auto-finalizing expired timed sessions on the way.
func (s *SessionService) activeSession(ctx context.Context, examID uuid.UUID, studentID int) (*model.SessionSnapshot, *model.ExamInstance, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if snap.State.Terminal() {
		return nil, nil, ErrSessionFinalized
	}
	if snap.Deadline != nil && Remaining(*snap.Deadline, s.now()) == 0 {
		if _, err := s.Finalize(ctx, examID, studentID, true); err != nil && !errors.Is(err, ErrSessionFinalized) {
			return nil, nil, err
		}
		return nil, nil, ErrSessionFinalized
	}
	if snap.State != model.SessionStateReady && snap.State != model.SessionStateReviewing {
		return nil, nil, ErrInvalidTransition
	}

	inst, err := s.instances.Instance(ctx, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	return snap, inst, nil
}

// ─── Pagination ────────────────────────────────────────────────────────

// Page moves the pagination cursor. Next and prev clamp at the bounds
// rather than failing; jump requires a valid page index. Jumping while
// reviewing drops the session back to READY first.
func (s *SessionService) Page(ctx context.Context, examID uuid.UUID, studentID int, op string, index int) (*SessionView, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	if snap.State.Terminal() {
		return nil, ErrSessionFinalized
	}

	inst, err := s.instances.Instance(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	totalPages := s.totalPages(len(inst.Questions))

	switch op {
	case "next":
		if snap.CurrentPage < totalPages-1 {
			snap.CurrentPage++
		}
	case "prev":
		if snap.CurrentPage > 0 {
			snap.CurrentPage--
		}
	case "jump":
		if index < 0 || index >= totalPages {
			return nil, ErrPageOutOfRange
		}
		if snap.State == model.SessionStateReviewing {
			if !snap.State.CanTransition(model.SessionStateReady) {
				return nil, ErrInvalidTransition
			}
			snap.State = model.SessionStateReady
		}
		snap.CurrentPage = index
	default:
		return nil, ErrPageOutOfRange
	}

	if err := s.saveSnapshot(ctx, snap); err != nil {
		return nil, err
	}
	return s.buildView(ctx, inst, snap)
}

// ─── Review and confirm ────────────────────────────────────────────────

// BeginReview moves READY → REVIEWING and returns the per-question
// summary the review screen shows.
func (s *SessionService) BeginReview(ctx context.Context, examID uuid.UUID, studentID int) ([]model.QuestionStatus, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, snap, model.SessionStateReviewing); err != nil {
		return nil, err
	}

	inst, err := s.instances.Instance(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	answers, err := s.loadAnswers(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	flags, err := s.loadFlags(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	statuses := make([]model.QuestionStatus, 0, len(inst.Questions))
	for i, q := range inst.Questions {
		qid := q.Question.ID.String()
		_, answered := answers[qid]
		statuses = append(statuses, model.QuestionStatus{
			QuestionID: q.Question.ID,
			Index:      i,
			Answered:   answered,
			Flagged:    flags[qid],
		})
	}
	return statuses, nil
}

// CancelReview moves REVIEWING → READY.
func (s *SessionService) CancelReview(ctx context.Context, examID uuid.UUID, studentID int) error {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return err
	}
	return s.transition(ctx, snap, model.SessionStateReady)
}

// RequestConfirm moves REVIEWING → CONFIRMING.
func (s *SessionService) RequestConfirm(ctx context.Context, examID uuid.UUID, studentID int) error {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return err
	}
	return s.transition(ctx, snap, model.SessionStateConfirming)
}

// DeclineConfirm moves CONFIRMING → READY.
func (s *SessionService) DeclineConfirm(ctx context.Context, examID uuid.UUID, studentID int) error {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return err
	}
	return s.transition(ctx, snap, model.SessionStateReady)
}

// transition validates and persists a state machine move.
func (s *SessionService) transition(ctx context.Context, snap *model.SessionSnapshot, to model.SessionState) error {
	if snap.State.Terminal() {
		return ErrSessionFinalized
	}
	if !snap.State.CanTransition(to) {
		return ErrInvalidTransition
	}
	snap.State = to
	return s.saveSnapshot(ctx, snap)
}

// ─── Finalize ──────────────────────────────────────────────────────────

// Finalize scores the session and closes it. Manual finalize requires the
// session to be in CONFIRMING; auto finalize (deadline expiry) accepts any
// non-terminal state. The store-level guard makes finalize once-only even
// when the deadline worker and a manual submit race: exactly one caller
// wins and the loser gets ErrSessionFinalized.
//
// The guard is claimed only after the attempt is fully built, and released
// again if persisting fails, so a transient error never leaves the session
// wedged between submitted and scored.
func (s *SessionService) Finalize(ctx context.Context, examID uuid.UUID, studentID int, auto bool) (*model.Attempt, error) {
	snap, err := s.loadSnapshot(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}
	if snap.State.Terminal() || snap.Submitted {
		return nil, ErrSessionFinalized
	}
	if !auto && snap.State != model.SessionStateConfirming {
		return nil, ErrInvalidTransition
	}

	inst, err := s.instances.Instance(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExamLoadFailed, err)
	}
	answers, err := s.loadAnswers(ctx, examID, studentID)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredQuestion, 0, len(inst.Questions))
	for _, q := range inst.Questions {
		scored = append(scored, ScoredQuestion{
			QuestionID:    q.Question.ID,
			CorrectAnswer: q.Question.CorrectAnswer,
			Points:        q.Points,
		})
	}
	res := Score(scored, answers)

	attempt := &model.Attempt{
		ID:            uuid.New(),
		ExamID:        examID,
		StudentID:     studentID,
		CorrectCount:  res.CorrectCount,
		Total:         res.Total,
		EarnedPoints:  res.EarnedPoints,
		TotalPoints:   res.TotalPoints,
		Percentage:    res.Percentage,
		Passed:        res.Percentage >= inst.PassingScore,
		Answers:       answers,
		AutoSubmitted: auto,
		SubmittedAt:   s.now(),
	}
	payload, err := json.Marshal(attempt)
	if err != nil {
		return nil, fmt.Errorf("marshal attempt: %w", err)
	}

	eid := examID.String()
	guardKey := config.SessionKey.FinalizedKey(eid, studentID)
	won, err := s.store.SetNX(ctx, guardKey, "1")
	if err != nil {
		return nil, fmt.Errorf("finalize guard: %w", err)
	}
	if !won {
		return nil, ErrSessionFinalized
	}

	if err := s.persistFinalize(ctx, snap, string(payload)); err != nil {
		if delErr := s.store.Delete(ctx, guardKey); delErr != nil {
			s.log.Error().Err(delErr).
				Str("exam_id", eid).
				Int("student_id", studentID).
				Msg("finalize guard release failed, session stuck until key expires")
		}
		return nil, err
	}

	s.log.Info().
		Str("exam_id", eid).
		Int("student_id", studentID).
		Bool("auto", auto).
		Float64("percentage", res.Percentage).
		Msg("session finalized")

	return attempt, nil
}

// persistFinalize writes everything the winning finalizer owns: the
// history entry, the worker queue item, and the terminal snapshot, and
// drops the session's working keys.
func (s *SessionService) persistFinalize(ctx context.Context, snap *model.SessionSnapshot, payload string) error {
	eid := snap.ExamID.String()
	sid := snap.StudentID

	if err := s.store.Append(ctx, config.SessionKey.HistoryKey(eid, sid), payload); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := s.store.Append(ctx, config.WorkerKey.PersistAttemptsQueue, payload); err != nil {
		return fmt.Errorf("enqueue attempt: %w", err)
	}

	// Working state is gone after finalize; only the snapshot marker and
	// history remain.
	if err := s.store.Delete(ctx,
		config.SessionKey.AnswersKey(eid, sid),
		config.SessionKey.FlagsKey(eid, sid),
	); err != nil {
		return fmt.Errorf("clear working state: %w", err)
	}
	if snap.Deadline != nil {
		if err := s.clock.Clear(ctx, config.SessionKey.DeadlineKey(eid, sid)); err != nil {
			return fmt.Errorf("clear deadline: %w", err)
		}
		if err := s.store.IndexRemove(ctx, config.SessionKey.DeadlineIndex(), config.SessionKey.DeadlineMember(eid, sid)); err != nil {
			return fmt.Errorf("unindex deadline: %w", err)
		}
	}

	snap.State = model.SessionStateFinalized
	snap.Submitted = true
	return s.saveSnapshot(ctx, snap)
}

// FinalizeExpired is the deadline worker entry point: finalize one
// session by its index member, treating an already-finalized session as
// done rather than an error.
func (s *SessionService) FinalizeExpired(ctx context.Context, examID uuid.UUID, studentID int) error {
	_, err := s.Finalize(ctx, examID, studentID, true)
	if errors.Is(err, ErrSessionFinalized) || errors.Is(err, ErrSessionNotFound) {
		// Lost the race to a manual submit, or the session was reset.
		return s.store.IndexRemove(ctx, config.SessionKey.DeadlineIndex(), config.SessionKey.DeadlineMember(examID.String(), studentID))
	}
	return err
}

// ─── History ───────────────────────────────────────────────────────────

// History returns a student's attempts for one exam, oldest first.
func (s *SessionService) History(ctx context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error) {
	entries, err := s.store.List(ctx, config.SessionKey.HistoryKey(examID.String(), studentID))
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	attempts := make([]model.Attempt, 0, len(entries))
	for _, raw := range entries {
		var a model.Attempt
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}

// ClearHistory wipes a student's attempt history for one exam, both the
// store list and the persisted rows.
func (s *SessionService) ClearHistory(ctx context.Context, examID uuid.UUID, studentID int) error {
	if err := s.store.Delete(ctx, config.SessionKey.HistoryKey(examID.String(), studentID)); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	if err := s.attempts.DeleteByExamAndStudent(ctx, examID, studentID); err != nil {
		return fmt.Errorf("purge attempts: %w", err)
	}
	return nil
}

// ─── View assembly ─────────────────────────────────────────────────────

func (s *SessionService) totalPages(questionCount int) int {
	perPage := s.cfg.QuestionsPerPage
	if perPage < 1 {
		perPage = 1
	}
	pages := (questionCount + perPage - 1) / perPage
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Remaining seconds for a snapshot, nil for untimed sessions.
func (s *SessionService) remainingSeconds(snap *model.SessionSnapshot) *int64 {
	if snap.Deadline == nil {
		return nil
	}
	secs := int64(Remaining(*snap.Deadline, s.now()) / time.Second)
	return &secs
}

func (s *SessionService) buildView(ctx context.Context, inst *model.ExamInstance, snap *model.SessionSnapshot) (*SessionView, error) {
	answers, err := s.loadAnswers(ctx, snap.ExamID, snap.StudentID)
	if err != nil {
		return nil, err
	}
	flags, err := s.loadFlags(ctx, snap.ExamID, snap.StudentID)
	if err != nil {
		return nil, err
	}

	perPage := s.cfg.QuestionsPerPage
	if perPage < 1 {
		perPage = 1
	}
	totalPages := s.totalPages(len(inst.Questions))
	if snap.CurrentPage >= totalPages {
		snap.CurrentPage = totalPages - 1
	}

	start := snap.CurrentPage * perPage
	end := start + perPage
	if end > len(inst.Questions) {
		end = len(inst.Questions)
	}

	page := make([]PageQuestion, 0, end-start)
	for _, q := range inst.Questions[start:end] {
		qid := q.Question.ID.String()
		pq := PageQuestion{
			Question: q.Question.ForStudent(),
			Points:   q.Points,
			Flagged:  flags[qid],
		}
		if sel, ok := answers[qid]; ok {
			v := sel
			pq.Answer = &v
		}
		page = append(page, pq)
	}

	return &SessionView{
		ExamID:           snap.ExamID,
		Title:            inst.Title,
		Kind:             snap.Kind,
		State:            snap.State,
		CurrentPage:      snap.CurrentPage,
		TotalPages:       totalPages,
		QuestionsPerPage: perPage,
		Page:             page,
		Answers:          answers,
		Flags:            flags,
		AnsweredCount:    len(answers),
		Total:            len(inst.Questions),
		RemainingSeconds: s.remainingSeconds(snap),
		Submitted:        snap.Submitted,
	}, nil
}
