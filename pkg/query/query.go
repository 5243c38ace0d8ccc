// Package query compiles structured repository filters into the GitHub
// search query syntax.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the pushed qualifier.
const DateLayout = "2006-01-02"

// Validation errors. All of them wrap ErrValidation.
var (
	// ErrValidation is the parent of every filter validation error.
	ErrValidation = errors.New("validation error")

	// ErrNoCriteria is returned when no filter field is populated.
	ErrNoCriteria = fmt.Errorf("%w: at least one search criterion must be specified", ErrValidation)

	// ErrStarRange is returned when min_stars is greater than max_stars.
	ErrStarRange = fmt.Errorf("%w: min_stars cannot be greater than max_stars", ErrValidation)

	// ErrNegativeStars is returned when a star bound is negative.
	ErrNegativeStars = fmt.Errorf("%w: star bounds must be non-negative", ErrValidation)

	// ErrInvalidSince is returned when a since value is neither a known period nor a date.
	ErrInvalidSince = fmt.Errorf("%w: since must be a known period or a YYYY-MM-DD date", ErrValidation)
)

// Filters is the structured filter set for a repository search.
// A Filters value is never modified by this package.
type Filters struct {
	Language        string
	Topics          []string
	MinStars        *int
	MaxStars        *int
	Since           *time.Time
	ExcludeArchived bool
	ExcludeForks    bool
}

// Compile renders the filters as a GitHub search query.
//
// Clause order is fixed: language, topics (input order), stars, pushed,
// archived, fork. An empty string means no field was populated.
func Compile(f Filters) string {
	parts := make([]string, 0, 5+len(f.Topics))

	if lang := strings.TrimSpace(f.Language); lang != "" {
		parts = append(parts, "language:"+lang)
	}

	for _, topic := range f.Topics {
		if topic = strings.TrimSpace(topic); topic != "" {
			parts = append(parts, "topic:"+topic)
		}
	}

	if stars := starsClause(f.MinStars, f.MaxStars); stars != "" {
		parts = append(parts, stars)
	}

	if f.Since != nil {
		parts = append(parts, "pushed:>="+f.Since.Format(DateLayout))
	}

	if f.ExcludeArchived {
		parts = append(parts, "archived:false")
	}

	if f.ExcludeForks {
		parts = append(parts, "fork:false")
	}

	return strings.Join(parts, " ")
}

func starsClause(minStars, maxStars *int) string {
	switch {
	case minStars != nil && maxStars != nil:
		return fmt.Sprintf("stars:%d..%d", *minStars, *maxStars)
	case minStars != nil:
		return fmt.Sprintf("stars:>=%d", *minStars)
	case maxStars != nil:
		return fmt.Sprintf("stars:<=%d", *maxStars)
	default:
		return ""
	}
}

// Validate checks the star bounds of the filter set.
func Validate(f Filters) error {
	if (f.MinStars != nil && *f.MinStars < 0) || (f.MaxStars != nil && *f.MaxStars < 0) {
		return ErrNegativeStars
	}
	if f.MinStars != nil && f.MaxStars != nil && *f.MinStars > *f.MaxStars {
		return ErrStarRange
	}
	return nil
}

// Build validates and compiles the filters. An empty query is reported as
// ErrNoCriteria rather than returned.
func Build(f Filters) (string, error) {
	if err := Validate(f); err != nil {
		return "", err
	}

	q := Compile(f)
	if q == "" {
		return "", ErrNoCriteria
	}
	return q, nil
}

// Int returns a pointer to v. Handy for building star bounds.
func Int(v int) *int {
	return &v
}
