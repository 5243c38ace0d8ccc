// Package ratelimit tracks the GitHub API rate limit reported in the
// X-RateLimit-* response headers.
//
// GitHub limits each resource (core, search, graphql, ...) per token, so state
// is kept per resource and token. The tracker only observes: it records what
// GitHub reports and exposes it, it never delays or refuses a request.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// GitHub rate limit headers.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderUsed      = "X-RateLimit-Used"
	HeaderReset     = "X-RateLimit-Reset"
	HeaderResource  = "X-RateLimit-Resource"
)

// DefaultResource is assumed when a response omits X-RateLimit-Resource.
const DefaultResource = "core"

// LowThreshold marks the state as low when fewer requests than this remain.
// The search resource allows 10 (anonymous) or 30 (token) requests per minute.
const LowThreshold = 3

// State is the rate limit of one resource for one token.
type State struct {
	Resource  string `json:"resource"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Used      int    `json:"used"`

	// ResetAt is when the window resets (X-RateLimit-Reset, epoch seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the headers were observed.
	LastUpdate time.Time `json:"last_update"`
}

// IsExhausted returns true while no requests remain and the window has not reset.
func (s *State) IsExhausted() bool {
	return s.Remaining <= 0 && s.TimeUntilReset() > 0
}

// IsLow returns true when requests remain but fewer than LowThreshold.
func (s *State) IsLow() bool {
	return s.Remaining < LowThreshold && !s.IsExhausted()
}

// TimeUntilReset returns the duration until the window resets, or 0 if it
// already has.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// ParseHeaders builds a State from response headers observed at now.
// It returns (nil, nil) when the response carries no rate limit headers.
func ParseHeaders(headers http.Header, now time.Time) (*State, error) {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil, nil
	}

	remaining, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	state := &State{
		Resource:   headers.Get(HeaderResource),
		Remaining:  remaining,
		LastUpdate: now,
	}
	if state.Resource == "" {
		state.Resource = DefaultResource
	}

	if v := headers.Get(HeaderLimit); v != "" {
		if state.Limit, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	if v := headers.Get(HeaderUsed); v != "" {
		if state.Used, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("parse %s header: %w", HeaderUsed, err)
		}
	}

	resetStr := headers.Get(HeaderReset)
	if resetStr == "" {
		return nil, fmt.Errorf("%s header missing", HeaderReset)
	}
	resetEpoch, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", HeaderReset, err)
	}
	state.ResetAt = time.Unix(resetEpoch, 0)

	return state, nil
}
