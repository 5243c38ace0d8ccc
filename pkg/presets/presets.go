// Package presets holds the catalog of ready-made searches.
package presets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"gopkg.in/yaml.v3"
)

//go:embed presets.yaml
var catalog []byte

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("preset not found")

// Config is the search block of a preset.
type Config struct {
	Language        string   `yaml:"language" json:"language,omitempty"`
	Topics          []string `yaml:"topics" json:"topics,omitempty"`
	MinStars        *int     `yaml:"min_stars" json:"min_stars,omitempty"`
	MaxStars        *int     `yaml:"max_stars" json:"max_stars,omitempty"`
	Since           string   `yaml:"since" json:"since,omitempty"`
	ExcludeArchived bool     `yaml:"exclude_archived" json:"exclude_archived,omitempty"`
	ExcludeForks    bool     `yaml:"exclude_forks" json:"exclude_forks,omitempty"`
	SortBy          string   `yaml:"sort_by" json:"sort_by,omitempty"`
	NumRepos        int      `yaml:"num_repos" json:"num_repos,omitempty"`
}

// Request converts the config into a search request.
func (c Config) Request() search.Request {
	return search.Request{
		Language:        c.Language,
		Topics:          search.Topics(c.Topics),
		MinStars:        c.MinStars,
		MaxStars:        c.MaxStars,
		Since:           c.Since,
		ExcludeArchived: c.ExcludeArchived,
		ExcludeForks:    c.ExcludeForks,
		SortBy:          c.SortBy,
		NumRepos:        c.NumRepos,
	}
}

// Preset is a named search.
type Preset struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Config      Config `yaml:"config" json:"config"`
}

var (
	loadOnce sync.Once
	builtin  []Preset
)

// Load decodes a preset catalog. Ids must be present and unique.
func Load(r io.Reader) ([]Preset, error) {
	var presets []Preset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&presets); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if p.ID == "" {
			return nil, fmt.Errorf("preset %d: id is required", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("preset %q: duplicate id", p.ID)
		}
		seen[p.ID] = true
	}
	return presets, nil
}

func load() []Preset {
	loadOnce.Do(func() {
		presets, err := Load(bytes.NewReader(catalog))
		if err != nil {
			panic(fmt.Sprintf("embedded presets: %v", err))
		}
		builtin = presets
	})
	return builtin
}

// All returns a copy of the built-in catalog in file order.
func All() []Preset {
	presets := load()
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// Get returns the built-in preset with the given id.
func Get(id string) (Preset, error) {
	for _, p := range load() {
		if p.ID == id {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}
