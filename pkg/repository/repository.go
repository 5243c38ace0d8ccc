// Package repository turns raw GitHub search items into the flat record the
// API and exports return.
package repository

import (
	"encoding/json"
	"fmt"
)

// NotAvailable is reported for a missing language or license.
const NotAvailable = "N/A"

// Repository is the formatted view of one search result.
type Repository struct {
	Name        string   `json:"name"`
	FullName    string   `json:"full_name"`
	Owner       string   `json:"owner"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Language    string   `json:"language"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Homepage    string   `json:"homepage"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	PushedAt    string   `json:"pushed_at"`
	Archived    bool     `json:"archived"`
	OpenIssues  int      `json:"open_issues"`
	Watchers    int      `json:"watchers"`
	License     string   `json:"license"`
}

// item mirrors the fields of a GitHub repository object that Format reads.
// Pointers distinguish null from empty where it matters.
type item struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    *struct {
		Login string `json:"login"`
	} `json:"owner"`
	Stars       int      `json:"stargazers_count"`
	Forks       int      `json:"forks_count"`
	Language    *string  `json:"language"`
	Description *string  `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Homepage    *string  `json:"homepage"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	PushedAt    string   `json:"pushed_at"`
	Archived    bool     `json:"archived"`
	OpenIssues  int      `json:"open_issues_count"`
	Watchers    int      `json:"watchers_count"`
	License     *struct {
		Name string `json:"name"`
	} `json:"license"`
}

// Format decodes one search item. Items without a name, full_name or owner
// are rejected.
func Format(raw json.RawMessage) (Repository, error) {
	var it item
	if err := json.Unmarshal(raw, &it); err != nil {
		return Repository{}, fmt.Errorf("decode repository: %w", err)
	}
	if it.Name == "" || it.FullName == "" || it.Owner == nil {
		return Repository{}, fmt.Errorf("decode repository: missing name, full_name or owner")
	}

	repo := Repository{
		Name:        it.Name,
		FullName:    it.FullName,
		Owner:       it.Owner.Login,
		Stars:       it.Stars,
		Forks:       it.Forks,
		Language:    NotAvailable,
		Description: deref(it.Description),
		URL:         it.HTMLURL,
		Homepage:    deref(it.Homepage),
		Topics:      it.Topics,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
		PushedAt:    it.PushedAt,
		Archived:    it.Archived,
		OpenIssues:  it.OpenIssues,
		Watchers:    it.Watchers,
		License:     NotAvailable,
	}
	if it.Language != nil && *it.Language != "" {
		repo.Language = *it.Language
	}
	if it.License != nil && it.License.Name != "" {
		repo.License = it.License.Name
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	return repo, nil
}

// FormatAll formats every item in order. One bad item fails the batch.
func FormatAll(items []json.RawMessage) ([]Repository, error) {
	repos := make([]Repository, 0, len(items))
	for i, raw := range items {
		repo, err := Format(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
