package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// stateGrace keeps state around a little after the window resets so the last
// observation can still be reported.
const stateGrace = time.Minute

var (
	githubRateLimitRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "github_rate_limit_remaining",
		Help: "Requests remaining in the current GitHub rate limit window by resource",
	}, []string{"resource"})

	githubRateLimitExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "github_rate_limit_exhausted_total",
		Help: "Total responses that reported an exhausted rate limit window by resource",
	}, []string{"resource"})
)

// Tracker records GitHub rate limit headers.
type Tracker struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a new rate limit tracker.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// State returns the last recorded state for resource and token id.
// When nothing is recorded it returns a state with Limit and Remaining set to -1.
func (t *Tracker) State(ctx context.Context, resource, tokenID string) (*State, error) {
	state, err := t.store.Load(ctx, Key(resource, tokenID))
	if errors.Is(err, ErrNoState) {
		t.logger.Debug().Str("resource", resource).Msg("No rate limit state recorded")
		return &State{Resource: resource, Limit: -1, Remaining: -1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rate limit state: %w", err)
	}
	return state, nil
}

// UpdateFromHeaders parses rate limit headers and stores the result for tokenID.
// Responses without rate limit headers are ignored.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, tokenID string, headers http.Header) error {
	state, err := ParseHeaders(headers, t.now())
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	ttl := state.ResetAt.Sub(state.LastUpdate) + stateGrace
	if ttl < stateGrace {
		ttl = stateGrace
	}
	if err := t.store.Save(ctx, Key(state.Resource, tokenID), state, ttl); err != nil {
		return fmt.Errorf("store rate limit state: %w", err)
	}

	githubRateLimitRemaining.WithLabelValues(state.Resource).Set(float64(state.Remaining))

	switch {
	case state.IsExhausted():
		githubRateLimitExhaustedTotal.WithLabelValues(state.Resource).Inc()
		t.logger.Warn().
			Str("resource", state.Resource).
			Int("limit", state.Limit).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit exhausted")
	case state.IsLow():
		t.logger.Warn().
			Str("resource", state.Resource).
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("GitHub rate limit low")
	default:
		t.logger.Debug().
			Str("resource", state.Resource).
			Int("remaining", state.Remaining).
			Int("limit", state.Limit).
			Msg("GitHub rate limit state updated")
	}

	return nil
}
