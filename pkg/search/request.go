package search

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/query"
	"github.com/Sternrassler/gh-repo-sampler/pkg/repository"
	"github.com/Sternrassler/gh-repo-sampler/pkg/sampler"
)

// Request defaults applied when a field is absent or zero.
const (
	DefaultNumRepos = 10
	DefaultPage     = 1
	DefaultSort     = sampler.SortStars
)

// Topics accepts either a JSON list or a comma separated string.
type Topics []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Topics) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("topics must be a list or a comma separated string")
	}
	*t = nil
	if s == nil {
		return nil
	}
	for _, part := range strings.Split(*s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*t = append(*t, part)
		}
	}
	return nil
}

// Request is the search payload accepted by the API.
type Request struct {
	Language        string `json:"language,omitempty"`
	Topics          Topics `json:"topics,omitempty"`
	MinStars        *int   `json:"min_stars,omitempty"`
	MaxStars        *int   `json:"max_stars,omitempty"`
	Since           string `json:"since,omitempty"`
	ExcludeArchived bool   `json:"exclude_archived,omitempty"`
	ExcludeForks    bool   `json:"exclude_forks,omitempty"`
	SortBy          string `json:"sort_by,omitempty"`
	NumRepos        int    `json:"num_repos,omitempty"`
	Page            int    `json:"page,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
	GitHubToken     string `json:"github_token,omitempty"`
}

// WithDefaults fills the zero-valued paging and sort fields.
func (r Request) WithDefaults() Request {
	if r.NumRepos == 0 {
		r.NumRepos = DefaultNumRepos
	}
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.SortBy == "" {
		r.SortBy = string(DefaultSort)
	}
	return r
}

// Filters converts the request into query filters. A since value is
// resolved relative to now.
func (r Request) Filters(now time.Time) (query.Filters, error) {
	f := query.Filters{
		Language:        r.Language,
		Topics:          r.Topics,
		MinStars:        r.MinStars,
		MaxStars:        r.MaxStars,
		ExcludeArchived: r.ExcludeArchived,
		ExcludeForks:    r.ExcludeForks,
	}
	if strings.TrimSpace(r.Since) != "" {
		since, err := query.ParseSince(r.Since, now)
		if err != nil {
			return query.Filters{}, err
		}
		f.Since = &since
	}
	return f, nil
}

// Response is what a search returns to the caller.
type Response struct {
	Success        bool                    `json:"success"`
	Query          string                  `json:"query,omitempty"`
	TotalCount     int                     `json:"total_count"`
	ReturnedCount  int                     `json:"returned_count"`
	Repositories   []repository.Repository `json:"repositories"`
	Seed           *int64                  `json:"seed"`
	Page           int                     `json:"page"`
	UnderlyingPage int                     `json:"underlying_page,omitempty"`
	HasMore        bool                    `json:"has_more"`
	Kind           sampler.Kind            `json:"kind,omitempty"`
	Error          string                  `json:"error,omitempty"`
	Message        string                  `json:"message,omitempty"`
}
