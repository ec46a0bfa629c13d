package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/model"
	"github.com/luyenthi/luyenthi-backend/internal/store"
	"github.com/rs/zerolog"
)

type fixtureSource struct {
	inst *model.ExamInstance
	err  error
}

func (f *fixtureSource) Instance(_ context.Context, _ uuid.UUID) (*model.ExamInstance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inst, nil
}

type recordingPurger struct {
	purged bool
}

func (p *recordingPurger) DeleteByExamAndStudent(_ context.Context, _ uuid.UUID, _ int) error {
	p.purged = true
	return nil
}

type sessionFixture struct {
	svc     *SessionService
	store   *store.MemoryStore
	source  *fixtureSource
	purger  *recordingPurger
	examID  uuid.UUID
	now     *time.Time
	student int
}

// newSessionFixture builds a service over the in-memory store with a
// controllable clock and a fixed exam of n four-option questions where
// option 0 is always correct.
func newSessionFixture(t *testing.T, kind model.ExamKind, n, durationMinutes int) *sessionFixture {
	t.Helper()

	examID := uuid.New()
	questions := make([]model.TakeQuestion, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, model.TakeQuestion{
			Question: model.Question{
				ID:            uuid.New(),
				CategoryID:    uuid.New(),
				Title:         "q",
				Options:       []string{"a", "b", "c", "d"},
				CorrectAnswer: 0,
			},
			Points: 1,
		})
	}

	source := &fixtureSource{inst: &model.ExamInstance{
		ExamID:          examID,
		Title:           "Fixture Exam",
		Kind:            kind,
		DurationMinutes: durationMinutes,
		PassingScore:    50,
		Questions:       questions,
	}}

	now := time.Unix(1_700_000_000, 0)
	cfg := &config.Config{
		QuestionsPerPage: 3,
		LoadTimeout:      10 * time.Second,
		DeadlineTick:     time.Second,
	}

	st := store.NewMemoryStore()
	nowFn := func() time.Time { return now }
	clock := NewSessionClock(st, nowFn)
	purger := &recordingPurger{}
	svc := NewSessionService(cfg, st, clock, source, purger, nowFn, zerolog.Nop())

	return &sessionFixture{
		svc:     svc,
		store:   st,
		source:  source,
		purger:  purger,
		examID:  examID,
		now:     &now,
		student: 42,
	}
}

func (f *sessionFixture) question(i int) model.Question {
	return f.source.inst.Questions[i].Question
}

func (f *sessionFixture) mustStart(t *testing.T) *SessionView {
	t.Helper()
	view, err := f.svc.Start(context.Background(), f.examID, f.student)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return view
}

// confirmAndSubmit walks the full manual submit path.
func (f *sessionFixture) confirmAndSubmit(t *testing.T) *model.Attempt {
	t.Helper()
	ctx := context.Background()
	if _, err := f.svc.BeginReview(ctx, f.examID, f.student); err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	if err := f.svc.RequestConfirm(ctx, f.examID, f.student); err != nil {
		t.Fatalf("RequestConfirm: %v", err)
	}
	attempt, err := f.svc.Finalize(ctx, f.examID, f.student, false)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return attempt
}

// rawSnapshot reads the persisted snapshot straight from the store.
func (f *sessionFixture) rawSnapshot(t *testing.T) (string, *model.SessionSnapshot) {
	t.Helper()
	raw, err := f.store.Get(context.Background(), config.SessionKey.SessionStateKey(f.examID.String(), f.student))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	snap := &model.SessionSnapshot{}
	if err := json.Unmarshal([]byte(raw), snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return raw, snap
}

func TestStartCreatesReadySession(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 7, 0)

	view := f.mustStart(t)
	if view.State != model.SessionStateReady {
		t.Errorf("State = %s, want READY", view.State)
	}
	if view.Kind != model.ExamKindPractice {
		t.Errorf("Kind = %s, want PRACTICE", view.Kind)
	}
	if view.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", view.TotalPages)
	}
	if len(view.Page) != 3 {
		t.Errorf("page size = %d, want 3", len(view.Page))
	}
	if view.RemainingSeconds != nil {
		t.Errorf("practice session has RemainingSeconds = %d", *view.RemainingSeconds)
	}
	if view.Total != 7 {
		t.Errorf("Total = %d, want 7", view.Total)
	}
}

func TestStartTimedSessionDeadline(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindTest, 6, 30)

	view := f.mustStart(t)
	if view.RemainingSeconds == nil {
		t.Fatal("timed session missing RemainingSeconds")
	}
	if *view.RemainingSeconds != 30*60 {
		t.Errorf("RemainingSeconds = %d, want %d", *view.RemainingSeconds, 30*60)
	}

	// Ten minutes later a resume keeps the original deadline.
	*f.now = f.now.Add(10 * time.Minute)
	view = f.mustStart(t)
	if *view.RemainingSeconds != 20*60 {
		t.Errorf("RemainingSeconds after resume = %d, want %d", *view.RemainingSeconds, 20*60)
	}
}

// The session kind comes from the exam definition, not the caller. A
// timed test always gets the clock and the deadline index entry; there
// is no request surface left that could start it untimed.
func TestSessionKindFollowsExam(t *testing.T) {
	ctx := context.Background()

	f := newSessionFixture(t, model.ExamKindTest, 3, 30)
	view := f.mustStart(t)
	if view.Kind != model.ExamKindTest {
		t.Errorf("Kind = %s, want TEST", view.Kind)
	}
	if view.RemainingSeconds == nil {
		t.Fatal("timed exam started without a clock")
	}

	member := config.SessionKey.DeadlineMember(f.examID.String(), f.student)
	expired, err := f.store.IndexExpired(ctx, config.SessionKey.DeadlineIndex(), float64(f.now.Add(31*time.Minute).Unix()))
	if err != nil {
		t.Fatalf("IndexExpired: %v", err)
	}
	found := false
	for _, m := range expired {
		if m == member {
			found = true
		}
	}
	if !found {
		t.Errorf("timed session missing from deadline index, got %v", expired)
	}

	_, snap := f.rawSnapshot(t)
	if snap.Kind != model.ExamKindTest {
		t.Errorf("persisted Kind = %s, want TEST", snap.Kind)
	}

	p := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	pview := p.mustStart(t)
	if pview.Kind != model.ExamKindPractice {
		t.Errorf("Kind = %s, want PRACTICE", pview.Kind)
	}
	if pview.RemainingSeconds != nil {
		t.Errorf("practice exam got a clock: %d", *pview.RemainingSeconds)
	}
}

func TestResumeKeepsAnswersAndPage(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 6, 0)
	ctx := context.Background()

	f.mustStart(t)
	q := f.question(0)
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, q.ID, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := f.svc.Page(ctx, f.examID, f.student, "next", 0); err != nil {
		t.Fatalf("Page: %v", err)
	}

	view := f.mustStart(t)
	if got := view.Answers[q.ID.String()]; got != 2 {
		t.Errorf("resumed answer = %d, want 2", got)
	}
	if view.CurrentPage != 1 {
		t.Errorf("resumed CurrentPage = %d, want 1", view.CurrentPage)
	}
}

func TestSelectAnswerValidation(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, uuid.New(), 0); !errors.Is(err, ErrQuestionNotInExam) {
		t.Errorf("foreign question: err = %v, want ErrQuestionNotInExam", err)
	}
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 4); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("out of range option: err = %v, want ErrInvalidOption", err)
	}
	// Re-answering replaces, never duplicates.
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 3); err != nil {
		t.Fatalf("SelectAnswer again: %v", err)
	}
	view, err := f.svc.State(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if view.AnsweredCount != 1 {
		t.Errorf("AnsweredCount = %d, want 1", view.AnsweredCount)
	}
	if view.Answers[f.question(0).ID.String()] != 3 {
		t.Errorf("answer not replaced, got %d", view.Answers[f.question(0).ID.String()])
	}
}

// Answers live under their own key; the snapshot only tracks the state
// machine. Saving an answer must not rewrite the snapshot payload.
func TestSnapshotExcludesAnswers(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	q := f.question(0)
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, q.ID, 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := f.svc.ToggleFlag(ctx, f.examID, f.student, q.ID); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}

	raw, _ := f.rawSnapshot(t)
	if strings.Contains(raw, q.ID.String()) {
		t.Errorf("snapshot payload contains question data: %s", raw)
	}

	answersRaw, err := f.store.Get(ctx, config.SessionKey.AnswersKey(f.examID.String(), f.student))
	if err != nil {
		t.Fatalf("read answers key: %v", err)
	}
	if !strings.Contains(answersRaw, q.ID.String()) {
		t.Errorf("answers key missing the saved answer: %s", answersRaw)
	}
}

func TestToggleFlag(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	q := f.question(1)
	flagged, err := f.svc.ToggleFlag(ctx, f.examID, f.student, q.ID)
	if err != nil || !flagged {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", flagged, err)
	}
	flagged, err = f.svc.ToggleFlag(ctx, f.examID, f.student, q.ID)
	if err != nil || flagged {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", flagged, err)
	}
}

func TestPageClampAndJump(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 7, 0) // 3 pages
	ctx := context.Background()
	f.mustStart(t)

	view, err := f.svc.Page(ctx, f.examID, f.student, "prev", 0)
	if err != nil {
		t.Fatalf("prev at first page: %v", err)
	}
	if view.CurrentPage != 0 {
		t.Errorf("prev at first page moved to %d", view.CurrentPage)
	}

	for i := 0; i < 5; i++ {
		view, err = f.svc.Page(ctx, f.examID, f.student, "next", 0)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	if view.CurrentPage != 2 {
		t.Errorf("next clamped at %d, want 2", view.CurrentPage)
	}
	if len(view.Page) != 1 {
		t.Errorf("last page size = %d, want 1", len(view.Page))
	}

	if _, err := f.svc.Page(ctx, f.examID, f.student, "jump", 9); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("jump out of range: err = %v, want ErrPageOutOfRange", err)
	}
	view, err = f.svc.Page(ctx, f.examID, f.student, "jump", 1)
	if err != nil {
		t.Fatalf("jump: %v", err)
	}
	if view.CurrentPage != 1 {
		t.Errorf("jump landed on %d, want 1", view.CurrentPage)
	}
}

func TestJumpFromReviewReturnsToReady(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 6, 0)
	ctx := context.Background()
	f.mustStart(t)

	if _, err := f.svc.BeginReview(ctx, f.examID, f.student); err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	view, err := f.svc.Page(ctx, f.examID, f.student, "jump", 1)
	if err != nil {
		t.Fatalf("jump from review: %v", err)
	}
	if view.State != model.SessionStateReady {
		t.Errorf("State after jump = %s, want READY", view.State)
	}
}

func TestBeginReviewStatuses(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 4, 0)
	ctx := context.Background()
	f.mustStart(t)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := f.svc.ToggleFlag(ctx, f.examID, f.student, f.question(2).ID); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}

	statuses, err := f.svc.BeginReview(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	if len(statuses) != 4 {
		t.Fatalf("statuses = %d, want 4", len(statuses))
	}
	if !statuses[0].Answered || statuses[0].Flagged {
		t.Errorf("status[0] = %+v, want answered and unflagged", statuses[0])
	}
	if statuses[2].Answered || !statuses[2].Flagged {
		t.Errorf("status[2] = %+v, want unanswered and flagged", statuses[2])
	}
}

func TestConfirmFlowAndFinalize(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 4, 0)
	ctx := context.Background()
	f.mustStart(t)

	// Two correct, one wrong.
	for i, opt := range []int{0, 0, 1} {
		if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(i).ID, opt); err != nil {
			t.Fatalf("SelectAnswer: %v", err)
		}
	}

	attempt := f.confirmAndSubmit(t)
	if attempt.CorrectCount != 2 || attempt.Total != 4 {
		t.Errorf("scored %d/%d, want 2/4", attempt.CorrectCount, attempt.Total)
	}
	if attempt.Percentage != 50 {
		t.Errorf("Percentage = %v, want 50", attempt.Percentage)
	}
	if !attempt.Passed {
		t.Errorf("Passed = false at passing score 50")
	}
	if attempt.AutoSubmitted {
		t.Errorf("manual submit marked auto")
	}

	// Second finalize is rejected.
	if _, err := f.svc.Finalize(ctx, f.examID, f.student, false); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("double finalize: err = %v, want ErrSessionFinalized", err)
	}
	// So is answering.
	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(3).ID, 0); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("answer after finalize: err = %v, want ErrSessionFinalized", err)
	}
}

func TestManualFinalizeRequiresConfirming(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	if _, err := f.svc.Finalize(ctx, f.examID, f.student, false); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("finalize from READY: err = %v, want ErrInvalidTransition", err)
	}
	if _, err := f.svc.BeginReview(ctx, f.examID, f.student); err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	if _, err := f.svc.Finalize(ctx, f.examID, f.student, false); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("finalize from REVIEWING: err = %v, want ErrInvalidTransition", err)
	}
}

func TestDeclineConfirmReturnsToReady(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	if _, err := f.svc.BeginReview(ctx, f.examID, f.student); err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	if err := f.svc.RequestConfirm(ctx, f.examID, f.student); err != nil {
		t.Fatalf("RequestConfirm: %v", err)
	}
	if err := f.svc.DeclineConfirm(ctx, f.examID, f.student); err != nil {
		t.Fatalf("DeclineConfirm: %v", err)
	}

	view, err := f.svc.State(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if view.State != model.SessionStateReady {
		t.Errorf("State = %s, want READY", view.State)
	}
}

func TestAutoFinalizeOnExpiry(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindTest, 3, 10)
	ctx := context.Background()
	f.mustStart(t)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	*f.now = f.now.Add(11 * time.Minute)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(1).ID, 0); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("answer after expiry: err = %v, want ErrSessionFinalized", err)
	}

	attempts, err := f.svc.History(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("history = %d attempts, want 1", len(attempts))
	}
	if !attempts[0].AutoSubmitted {
		t.Errorf("expired attempt not marked auto-submitted")
	}
	if attempts[0].CorrectCount != 1 {
		t.Errorf("expired attempt scored %d, want the 1 saved answer", attempts[0].CorrectCount)
	}
}

func TestFinalizeExpiredRace(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindTest, 3, 10)
	ctx := context.Background()
	f.mustStart(t)

	// Manual submit wins first.
	f.confirmAndSubmit(t)

	// The worker path must treat the lost race as done, not an error.
	if err := f.svc.FinalizeExpired(ctx, f.examID, f.student); err != nil {
		t.Errorf("FinalizeExpired after manual submit: %v", err)
	}

	attempts, err := f.svc.History(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("history = %d attempts, want exactly 1", len(attempts))
	}
}

// flakyStore fails the first failAppends Append calls, then behaves.
type flakyStore struct {
	store.SessionStore
	failAppends int
}

func (f *flakyStore) Append(ctx context.Context, key, value string) error {
	if f.failAppends > 0 {
		f.failAppends--
		return errors.New("store unavailable")
	}
	return f.SessionStore.Append(ctx, key, value)
}

// A store failure during finalize must not consume the once-only guard:
// the retry has to succeed and produce exactly one attempt.
func TestFinalizeRetriesAfterStoreFailure(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if _, err := f.svc.BeginReview(ctx, f.examID, f.student); err != nil {
		t.Fatalf("BeginReview: %v", err)
	}
	if err := f.svc.RequestConfirm(ctx, f.examID, f.student); err != nil {
		t.Fatalf("RequestConfirm: %v", err)
	}

	flaky := &flakyStore{SessionStore: f.store, failAppends: 1}
	nowFn := func() time.Time { return *f.now }
	svc := NewSessionService(f.svc.cfg, flaky, NewSessionClock(flaky, nowFn), f.source, f.purger, nowFn, zerolog.Nop())

	if _, err := svc.Finalize(ctx, f.examID, f.student, false); err == nil {
		t.Fatal("Finalize succeeded with a failing store")
	} else if errors.Is(err, ErrSessionFinalized) {
		t.Fatalf("failed finalize reported as already finalized: %v", err)
	}

	// The store recovered; the same submit must now go through.
	attempt, err := svc.Finalize(ctx, f.examID, f.student, false)
	if err != nil {
		t.Fatalf("Finalize retry: %v", err)
	}
	if attempt.CorrectCount != 1 {
		t.Errorf("retried attempt scored %d, want 1", attempt.CorrectCount)
	}

	attempts, err := f.svc.History(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("history = %d attempts, want exactly 1", len(attempts))
	}

	_, snap := f.rawSnapshot(t)
	if snap.State != model.SessionStateFinalized || !snap.Submitted {
		t.Errorf("snapshot = %s submitted=%v, want FINALIZED submitted", snap.State, snap.Submitted)
	}
}

func TestPracticeRetakeAfterFinalize(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)

	if err := f.svc.SelectAnswer(ctx, f.examID, f.student, f.question(0).ID, 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	f.confirmAndSubmit(t)

	// Practice restarts fresh and keeps the old attempt in history.
	view := f.mustStart(t)
	if view.State != model.SessionStateReady {
		t.Errorf("retake State = %s, want READY", view.State)
	}
	if view.AnsweredCount != 0 {
		t.Errorf("retake AnsweredCount = %d, want 0", view.AnsweredCount)
	}

	attempts, err := f.svc.History(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("history = %d attempts, want 1", len(attempts))
	}
}

func TestTestRetakeBlocked(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindTest, 3, 10)
	f.mustStart(t)
	f.confirmAndSubmit(t)

	if _, err := f.svc.Start(context.Background(), f.examID, f.student); !errors.Is(err, ErrSessionFinalized) {
		t.Errorf("test retake: err = %v, want ErrSessionFinalized", err)
	}
}

func TestStartLoadFailure(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	f.source.err = errors.New("backend down")

	_, err := f.svc.Start(context.Background(), f.examID, f.student)
	if !errors.Is(err, ErrExamLoadFailed) {
		t.Errorf("load failure: err = %v, want ErrExamLoadFailed", err)
	}

	// The failed load leaves a persisted ERRORED snapshot behind.
	_, snap := f.rawSnapshot(t)
	if snap.State != model.SessionStateErrored {
		t.Errorf("snapshot after failed load = %s, want ERRORED", snap.State)
	}

	// Recovery: the fetch works again, the ERRORED session resets and
	// the start goes through.
	f.source.err = nil
	view := f.mustStart(t)
	if view.State != model.SessionStateReady {
		t.Errorf("recovered State = %s, want READY", view.State)
	}
}

func TestClearHistory(t *testing.T) {
	f := newSessionFixture(t, model.ExamKindPractice, 3, 0)
	ctx := context.Background()
	f.mustStart(t)
	f.confirmAndSubmit(t)

	if err := f.svc.ClearHistory(ctx, f.examID, f.student); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if !f.purger.purged {
		t.Errorf("persisted attempts were not purged")
	}

	attempts, err := f.svc.History(ctx, f.examID, f.student)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("history after clear = %d attempts, want 0", len(attempts))
	}
}
