// Package search is the entry boundary: it turns an API search request into
// a compiled query, samples one page and formats the results.
package search

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/query"
	"github.com/Sternrassler/gh-repo-sampler/pkg/repository"
	"github.com/Sternrassler/gh-repo-sampler/pkg/sampler"
	"github.com/rs/zerolog"
)

// MaxMintedSeed is the upper bound (inclusive) of seeds minted for new
// sessions.
const MaxMintedSeed = 1_000_000

// Service runs searches.
type Service struct {
	sampler      *sampler.Sampler
	defaultToken string
	logger       zerolog.Logger
	now          func() time.Time
	mintSeed     func() int64
}

// NewService creates a search service. defaultToken is used when a request
// carries no token of its own.
func NewService(s *sampler.Sampler, defaultToken string, logger zerolog.Logger) *Service {
	if s == nil {
		panic("sampler cannot be nil")
	}
	return &Service{
		sampler:      s,
		defaultToken: defaultToken,
		logger:       logger.With().Str("component", "search").Logger(),
		now:          time.Now,
		mintSeed:     func() int64 { return rand.Int64N(MaxMintedSeed + 1) },
	}
}

// Search runs one search. A request without a seed on page 1 starts a new
// session: a seed is minted and returned so later pages can reuse it.
func (s *Service) Search(ctx context.Context, req Request) Response {
	req = req.WithDefaults()

	filters, err := req.Filters(s.now())
	if err != nil {
		return validationFailure(req, err)
	}
	q, err := query.Build(filters)
	if err != nil {
		return validationFailure(req, err)
	}

	seed := req.Seed
	if seed == nil && req.Page == 1 {
		minted := s.mintSeed()
		seed = &minted
		s.logger.Debug().Int64("seed", minted).Msg("Minted session seed")
	}

	token := req.GitHubToken
	if token == "" {
		token = s.defaultToken
	}

	env := s.sampler.Sample(ctx, sampler.Request{
		Query:    q,
		PageSize: req.NumRepos,
		Page:     req.Page,
		Seed:     seed,
		Sort:     sampler.SortKey(req.SortBy),
		Token:    token,
	})

	resp := Response{
		Success:        env.Success,
		Query:          q,
		TotalCount:     env.TotalCount,
		Repositories:   []repository.Repository{},
		Seed:           env.Seed,
		Page:           env.Page,
		UnderlyingPage: env.UnderlyingPage,
		HasMore:        env.HasMore,
		Kind:           env.Kind,
		Error:          env.Error,
		Message:        env.Message,
	}
	if !env.Success {
		return resp
	}

	repos, err := repository.FormatAll(env.Items)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", q).Msg("Failed to format search results")
		resp.Success = false
		resp.Kind = sampler.KindUpstream
		resp.Error = "Error formatting repositories: " + err.Error()
		resp.TotalCount = 0
		resp.HasMore = false
		return resp
	}

	resp.Repositories = repos
	resp.ReturnedCount = len(repos)
	return resp
}

func validationFailure(req Request, err error) Response {
	msg := strings.TrimPrefix(err.Error(), query.ErrValidation.Error()+": ")
	return Response{
		Success:      false,
		Repositories: []repository.Repository{},
		Seed:         req.Seed,
		Page:         req.Page,
		Kind:         sampler.KindValidation,
		Error:        msg,
	}
}
