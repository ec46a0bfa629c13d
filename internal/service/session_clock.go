package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/luyenthi/luyenthi-backend/internal/store"
)

// SessionClock persists the absolute deadline of a timed session so the
// remaining time survives page reloads and client pauses. Remaining time
// is always recomputed from the wall clock against the stored deadline,
// never accumulated from a counter, which would drift whenever the
// client throttles its timer.
type SessionClock struct {
	store store.SessionStore
	now   func() time.Time
}

// NewSessionClock creates a clock over the given store. nowFn defaults
// to time.Now when nil.
func NewSessionClock(st store.SessionStore, nowFn func() time.Time) *SessionClock {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SessionClock{store: st, now: nowFn}
}

// StartOrResume returns the deadline for the session key. On first start
// the deadline is now + duration, persisted under key. On resume the
// persisted deadline is read back unchanged, so reloading can never
// reset the remaining time to the full duration.
func (c *SessionClock) StartOrResume(ctx context.Context, key string, duration time.Duration) (time.Time, error) {
	val, err := c.store.Get(ctx, key)
	if err == nil {
		unix, parseErr := strconv.ParseInt(val, 10, 64)
		if parseErr != nil {
			return time.Time{}, fmt.Errorf("corrupt deadline under %s: %w", key, parseErr)
		}
		return time.Unix(unix, 0), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return time.Time{}, fmt.Errorf("read deadline: %w", err)
	}

	deadline := c.now().Add(duration)
	if err := c.store.Set(ctx, key, strconv.FormatInt(deadline.Unix(), 10)); err != nil {
		return time.Time{}, fmt.Errorf("persist deadline: %w", err)
	}
	return deadline, nil
}

// Clear removes the persisted deadline, called when a session finalizes.
func (c *SessionClock) Clear(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Remaining computes the time left until deadline, floored at zero.
// Pure function of (deadline, now).
func Remaining(deadline, now time.Time) time.Duration {
	d := deadline.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
