// Package sampler serves reproducible random pages out of GitHub's capped
// search result window.
package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Sternrassler/gh-repo-sampler/pkg/pagination"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// SearchPath is the GitHub repository search endpoint.
const SearchPath = "/search/repositories"

var (
	samplerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sampler_requests_total",
		Help: "Total sampling calls by outcome",
	}, []string{"outcome"})

	samplerWindowExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sampler_window_exhausted_total",
		Help: "Total sampling calls that asked for a logical page past the result window",
	})
)

// SortKey is a GitHub search sort order.
type SortKey string

const (
	SortStars   SortKey = "stars"
	SortForks   SortKey = "forks"
	SortUpdated SortKey = "updated"
)

// Valid reports whether k is a sort key GitHub accepts.
func (k SortKey) Valid() bool {
	switch k {
	case SortStars, SortForks, SortUpdated:
		return true
	default:
		return false
	}
}

// Fetcher performs one authenticated GET against the provider.
//
// A non-nil error means the request never produced a status (network failure,
// timeout). Any HTTP status, including errors, is returned with a nil error.
type Fetcher interface {
	Get(ctx context.Context, path string, params url.Values, token string) (status int, body []byte, err error)
}

// Request describes one sampling call.
type Request struct {
	Query    string
	PageSize int
	Page     int
	// Seed drives the page permutation and item shuffle. Nil selects the
	// in-order, non-reproducible path.
	Seed  *int64
	Sort  SortKey
	Token string
}

// Sampler maps logical pages onto provider pages and shuffles what comes back.
// It holds no per-request state and is safe for concurrent use.
type Sampler struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// New creates a Sampler.
func New(fetcher Fetcher, logger zerolog.Logger) *Sampler {
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}
	return &Sampler{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "sampler").Logger(),
	}
}

type searchResponse struct {
	TotalCount int               `json:"total_count"`
	Items      []json.RawMessage `json:"items"`
}

// Sample serves one logical page. It issues at most one upstream request and
// never retries; every outcome, including failures, is an Envelope.
func (s *Sampler) Sample(ctx context.Context, req Request) Envelope {
	env := s.sample(ctx, req)

	outcome := string(env.Kind)
	switch {
	case env.Success && env.Exhausted():
		outcome = "exhausted"
	case env.Success:
		outcome = "ok"
	}
	samplerRequestsTotal.WithLabelValues(outcome).Inc()

	return env
}

func (s *Sampler) sample(ctx context.Context, req Request) Envelope {
	if err := validate(req); err != nil {
		return failure(req, KindValidation, err.Error())
	}

	maxPages := pagination.MaxLogicalPages(req.PageSize)

	page := req.Page
	if req.Seed != nil {
		p, ok := pagination.UnderlyingPage(*req.Seed, req.PageSize, req.Page)
		if !ok {
			samplerWindowExhaustedTotal.Inc()
			s.logger.Debug().
				Int64("seed", *req.Seed).
				Int("page", req.Page).
				Int("max_pages", maxPages).
				Msg("Result window exhausted")
			return Envelope{
				Success: true,
				Items:   []json.RawMessage{},
				Seed:    req.Seed,
				Page:    req.Page,
			}
		}
		page = p
	}

	s.logger.Debug().
		Str("query", req.Query).
		Int("page", req.Page).
		Int("underlying_page", page).
		Int("page_size", req.PageSize).
		Bool("seeded", req.Seed != nil).
		Msg("Fetching provider page")

	params := url.Values{
		"q":        {req.Query},
		"sort":     {string(req.Sort)},
		"order":    {"desc"},
		"per_page": {strconv.Itoa(req.PageSize)},
		"page":     {strconv.Itoa(page)},
	}

	status, body, err := s.fetcher.Get(ctx, SearchPath, params, req.Token)
	if err != nil {
		s.logger.Warn().Err(err).Int("underlying_page", page).Msg("Search request failed")
		return failure(req, KindTransport, fmt.Sprintf("Error fetching repositories: %v", err))
	}

	if kind, msg := classifyStatus(status, body); kind != KindNone {
		s.logger.Warn().
			Int("status", status).
			Str("kind", string(kind)).
			Int("underlying_page", page).
			Msg("Search request rejected")
		return failure(req, kind, msg)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return failure(req, KindUpstream, fmt.Sprintf("Error decoding search response: %v", err))
	}

	env := Envelope{
		Success:        true,
		Items:          []json.RawMessage{},
		Seed:           req.Seed,
		Page:           req.Page,
		UnderlyingPage: page,
	}

	if len(resp.Items) == 0 {
		env.Message = "No repositories found matching the criteria."
		return env
	}

	env.Items = resp.Items
	env.TotalCount = resp.TotalCount
	shuffle(env.Items, itemRand(req.Seed, page))
	env.HasMore = pagination.HasMore(req.Page, req.PageSize, resp.TotalCount)

	return env
}

func validate(req Request) error {
	switch {
	case strings.TrimSpace(req.Query) == "":
		return errors.New("at least one search criterion must be specified")
	case req.PageSize < 1 || req.PageSize > pagination.MaxPageSize:
		return fmt.Errorf("page size must be between 1 and %d (got %d)", pagination.MaxPageSize, req.PageSize)
	case req.Page < 1:
		return fmt.Errorf("page must be a positive integer (got %d)", req.Page)
	case !req.Sort.Valid():
		return fmt.Errorf("sort must be one of stars, forks, updated (got %q)", req.Sort)
	}
	return nil
}

// classifyStatus maps a provider status onto the failure taxonomy.
// KindNone means the status is a success.
func classifyStatus(status int, body []byte) (Kind, string) {
	switch {
	case status >= 200 && status < 300:
		return KindNone, ""
	case status == http.StatusForbidden:
		return KindRateLimited, "GitHub API rate limit exceeded. Consider using a GitHub token."
	case status == http.StatusUnauthorized:
		return KindUnauthorized, "GitHub rejected the credentials (401 Unauthorized). Check the token."
	default:
		msg := fmt.Sprintf("GitHub API returned status %d", status)
		if detail := upstreamMessage(body); detail != "" {
			msg += ": " + detail
		}
		return KindUpstream, msg
	}
}

// upstreamMessage extracts the "message" field GitHub puts in error bodies.
func upstreamMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Message
}

// itemRand builds the per-call generator for the item shuffle. A seeded call
// uses seed+page so the same logical page always comes back in the same order.
func itemRand(seed *int64, page int) *rand.Rand {
	if seed != nil {
		return pagination.NewRand(*seed + int64(page))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func shuffle(items []json.RawMessage, rng *rand.Rand) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
