package model

import "testing"

func TestSessionStateTransitions(t *testing.T) {
	tests := []struct {
		from SessionState
		to   SessionState
		want bool
	}{
		{SessionStateLoading, SessionStateReady, true},
		{SessionStateLoading, SessionStateErrored, true},
		{SessionStateLoading, SessionStateFinalized, false},
		{SessionStateReady, SessionStateReviewing, true},
		{SessionStateReady, SessionStateFinalized, true},
		{SessionStateReady, SessionStateConfirming, false},
		{SessionStateReviewing, SessionStateReady, true},
		{SessionStateReviewing, SessionStateConfirming, true},
		{SessionStateReviewing, SessionStateFinalized, true},
		{SessionStateConfirming, SessionStateReady, true},
		{SessionStateConfirming, SessionStateFinalized, true},
		{SessionStateConfirming, SessionStateReviewing, false},
		{SessionStateFinalized, SessionStateReady, false},
		{SessionStateErrored, SessionStateReady, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s → %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSessionStateTerminal(t *testing.T) {
	for _, s := range []SessionState{SessionStateLoading, SessionStateReady, SessionStateReviewing, SessionStateConfirming} {
		if s.Terminal() {
			t.Errorf("%s reported terminal", s)
		}
	}
	for _, s := range []SessionState{SessionStateFinalized, SessionStateErrored} {
		if !s.Terminal() {
			t.Errorf("%s not reported terminal", s)
		}
	}
}
