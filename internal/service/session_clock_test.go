package service

import (
	"context"
	"testing"
	"time"

	"github.com/luyenthi/luyenthi-backend/internal/store"
)

func TestStartOrResumePersistsDeadline(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	clock := NewSessionClock(st, func() time.Time { return now })

	deadline, err := clock.StartOrResume(ctx, "k", 30*time.Minute)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	want := now.Add(30 * time.Minute)
	if !deadline.Equal(want) {
		t.Errorf("deadline = %v, want %v", deadline, want)
	}
}

func TestStartOrResumeKeepsExistingDeadline(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	clock := NewSessionClock(st, func() time.Time { return now })

	first, err := clock.StartOrResume(ctx, "k", 30*time.Minute)
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}

	// Ten minutes later, a resume must not reset the deadline.
	later := NewSessionClock(st, func() time.Time { return now.Add(10 * time.Minute) })
	second, err := later.StartOrResume(ctx, "k", 30*time.Minute)
	if err != nil {
		t.Fatalf("StartOrResume resume: %v", err)
	}
	if !second.Equal(first) {
		t.Errorf("resume moved deadline from %v to %v", first, second)
	}
}

func TestClearAllowsFreshDeadline(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	now := time.Unix(1_700_000_000, 0)
	clock := NewSessionClock(st, func() time.Time { return now })

	if _, err := clock.StartOrResume(ctx, "k", time.Minute); err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if err := clock.Clear(ctx, "k"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	later := NewSessionClock(st, func() time.Time { return now.Add(time.Hour) })
	deadline, err := later.StartOrResume(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("StartOrResume after clear: %v", err)
	}
	if !deadline.Equal(now.Add(time.Hour + time.Minute)) {
		t.Errorf("deadline = %v, want fresh one after clear", deadline)
	}
}

func TestRemaining(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		deadline time.Time
		now      time.Time
		want     time.Duration
	}{
		{"future", base.Add(time.Minute), base, time.Minute},
		{"exact", base, base, 0},
		{"past floors at zero", base, base.Add(time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.deadline, tt.now); got != tt.want {
				t.Errorf("Remaining = %v, want %v", got, tt.want)
			}
		})
	}
}
