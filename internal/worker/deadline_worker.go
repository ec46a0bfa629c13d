package worker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/luyenthi/luyenthi-backend/internal/config"
	"github.com/luyenthi/luyenthi-backend/internal/service"
	"github.com/luyenthi/luyenthi-backend/internal/store"
	"github.com/rs/zerolog"
)

// DeadlineWorker auto-submits timed sessions whose deadline has passed.
// It polls the deadline index every tick, so an expired session is
// finalized within one tick even when the student's client is gone.
// Finalize itself is guarded, so racing a late manual submit is safe.
type DeadlineWorker struct {
	store    store.SessionStore
	sessions *service.SessionService
	tick     time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewDeadlineWorker creates a new DeadlineWorker. nowFn defaults to
// time.Now when nil.
func NewDeadlineWorker(
	st store.SessionStore,
	sessions *service.SessionService,
	tick time.Duration,
	nowFn func() time.Time,
	log zerolog.Logger,
) *DeadlineWorker {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &DeadlineWorker{
		store:    st,
		sessions: sessions,
		tick:     tick,
		now:      nowFn,
		log:      log.With().Str("component", "deadline_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *DeadlineWorker) Start(ctx context.Context) {
	w.log.Info().Dur("tick", w.tick).Msg("DeadlineWorker started")

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep finalizes every session whose deadline is at or before now.
func (w *DeadlineWorker) Sweep(ctx context.Context) {
	members, err := w.store.IndexExpired(ctx, config.SessionKey.DeadlineIndex(), float64(w.now().Unix()))
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("deadline index read error")
		}
		return
	}

	for _, member := range members {
		examID, studentID, ok := parseDeadlineMember(member)
		if !ok {
			w.log.Error().Str("member", member).Msg("malformed deadline member, dropping")
			if err := w.store.IndexRemove(ctx, config.SessionKey.DeadlineIndex(), member); err != nil {
				w.log.Error().Err(err).Msg("drop malformed member failed")
			}
			continue
		}

		if err := w.sessions.FinalizeExpired(ctx, examID, studentID); err != nil {
			w.log.Error().Err(err).
				Str("exam_id", examID.String()).
				Int("student_id", studentID).
				Msg("auto finalize failed")
			continue
		}

		w.log.Info().
			Str("exam_id", examID.String()).
			Int("student_id", studentID).
			Msg("expired session auto-submitted")
	}
}

// parseDeadlineMember splits "examID:studentID" back into its parts.
func parseDeadlineMember(member string) (uuid.UUID, int, bool) {
	parts := strings.SplitN(member, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, 0, false
	}
	examID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, 0, false
	}
	studentID, err := strconv.Atoi(parts[1])
	if err != nil {
		return uuid.Nil, 0, false
	}
	return examID, studentID, true
}
