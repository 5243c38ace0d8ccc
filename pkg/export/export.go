// Package export writes formatted repositories as downloadable JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/repository"
)

// Content types for the two formats.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

// CSVHeader is the column order of WriteCSV. homepage and updated_at are not
// exported.
var CSVHeader = []string{
	"name", "full_name", "owner", "stars", "forks", "language",
	"description", "url", "topics", "created_at", "pushed_at",
	"archived", "open_issues", "watchers", "license",
}

// Document is the JSON export body.
type Document struct {
	ExportedAt   time.Time               `json:"exported_at"`
	Count        int                     `json:"count"`
	Repositories []repository.Repository `json:"repositories"`
}

// WriteJSON writes repos as an indented Document stamped with now.
func WriteJSON(w io.Writer, repos []repository.Repository, now time.Time) error {
	if repos == nil {
		repos = []repository.Repository{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{ExportedAt: now, Count: len(repos), Repositories: repos}); err != nil {
		return fmt.Errorf("write json export: %w", err)
	}
	return nil
}

// WriteCSV writes repos with CSVHeader. No repos means an empty document,
// without a header row.
func WriteCSV(w io.Writer, repos []repository.Repository) error {
	if len(repos) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range repos {
		record := []string{
			r.Name,
			r.FullName,
			r.Owner,
			strconv.Itoa(r.Stars),
			strconv.Itoa(r.Forks),
			r.Language,
			r.Description,
			r.URL,
			strings.Join(r.Topics, ", "),
			r.CreatedAt,
			r.PushedAt,
			strconv.FormatBool(r.Archived),
			strconv.Itoa(r.OpenIssues),
			strconv.Itoa(r.Watchers),
			r.License,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.FullName, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Filename returns the download name for ext, e.g.
// github_repos_20250102_030405.csv.
func Filename(ext string, now time.Time) string {
	return fmt.Sprintf("github_repos_%s.%s", now.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}
