package service

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/luyenthi/luyenthi-backend/internal/model"
)

// QuotaSelection is the outcome of one random draw. Shortfall reports how
// many requested questions could not be satisfied; the caller decides
// whether to proceed with fewer, re-prompt, or abort. The selector never
// silently truncates and never fails on an undersized pool.
type QuotaSelection struct {
	Selected  []model.Question `json:"selected"`
	Available int              `json:"available"`
	Requested int              `json:"requested"`
	Shortfall int              `json:"shortfall"`
}

// QuotaSelector draws questions from a pool, uniformly at random and
// without replacement, honoring a category filter and a requested count.
type QuotaSelector struct {
	rng *rand.Rand
}

// NewQuotaSelector creates a selector seeded from the clock.
func NewQuotaSelector() *QuotaSelector {
	return NewQuotaSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewQuotaSelectorWithSource creates a selector with an explicit random
// source, for deterministic tests.
func NewQuotaSelectorWithSource(src rand.Source) *QuotaSelector {
	return &QuotaSelector{rng: rand.New(src)}
}

// SelectRandom picks up to requested questions matching the filter,
// excluding questions already assigned to the target exam so repeated
// runs never introduce duplicates within one exam's question list.
//
// Zero available questions for a non-empty request is a valid, reported
// outcome, not an error.
func (s *QuotaSelector) SelectRandom(
	pool []model.Question,
	filter model.CategoryFilter,
	requested int,
	assigned map[uuid.UUID]bool,
) QuotaSelection {
	eligible := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if assigned[q.ID] {
			continue
		}
		if filter.Matches(q.CategoryID) {
			eligible = append(eligible, q)
		}
	}

	sel := QuotaSelection{
		Available: len(eligible),
		Requested: requested,
	}

	s.rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	n := requested
	if n > len(eligible) {
		n = len(eligible)
		sel.Shortfall = requested - len(eligible)
	}
	sel.Selected = eligible[:n]

	return sel
}
