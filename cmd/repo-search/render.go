package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/gh-repo-sampler/pkg/export"
	"github.com/Sternrassler/gh-repo-sampler/pkg/repository"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	rule           = "============================================================"
	maxDescription = 100
)

// render writes a successful response to out. Session hints (seed, next
// page) go to hints so that json and csv output stay machine readable.
func render(out, hints io.Writer, format string, resp search.Response) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case formatCSV:
		if err := export.WriteCSV(out, resp.Repositories); err != nil {
			return err
		}
		writeSession(hints, resp)
		return nil
	default:
		return renderText(out, resp)
	}
}

func renderText(w io.Writer, resp search.Response) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Query: %s\n", resp.Query)
	p.Fprintf(w, "Total matches: %d\n", resp.TotalCount)

	if len(resp.Repositories) == 0 {
		fmt.Fprintln(w, "\nNo repositories found matching your criteria.")
		writeSession(w, resp)
		return nil
	}

	for i, repo := range resp.Repositories {
		writeRepository(p, w, repo, i+1)
	}

	p.Fprintf(w, "\nRetrieved %d repositories (page %d)\n", resp.ReturnedCount, resp.Page)
	writeSession(w, resp)
	return nil
}

func writeRepository(p *message.Printer, w io.Writer, repo repository.Repository, index int) {
	archived := "No"
	if repo.Archived {
		archived = "Yes"
	}

	fmt.Fprintf(w, "\n%s\nRepository #%d\n%s\n", rule, index, rule)
	fmt.Fprintf(w, "Name:         %s\n", repo.FullName)
	fmt.Fprintf(w, "Owner:        %s\n", repo.Owner)
	p.Fprintf(w, "Stars:        %d\n", repo.Stars)
	p.Fprintf(w, "Forks:        %d\n", repo.Forks)
	fmt.Fprintf(w, "Language:     %s\n", repo.Language)
	fmt.Fprintf(w, "Last Push:    %s\n", repo.PushedAt)
	fmt.Fprintf(w, "Created:      %s\n", repo.CreatedAt)
	fmt.Fprintf(w, "Archived:     %s\n", archived)
	if len(repo.Topics) > 0 {
		fmt.Fprintf(w, "Topics:       %s\n", strings.Join(repo.Topics, ", "))
	}
	if repo.Description != "" {
		fmt.Fprintf(w, "Description:  %s\n", truncate(repo.Description, maxDescription))
	}
	fmt.Fprintf(w, "URL:          %s\n", repo.URL)
	fmt.Fprintln(w, rule)
}

// writeSession prints the seed and, when more pages exist, the flags that
// fetch the next one.
func writeSession(w io.Writer, resp search.Response) {
	if resp.Seed == nil {
		return
	}
	fmt.Fprintf(w, "Seed: %d\n", *resp.Seed)
	if resp.HasMore {
		fmt.Fprintf(w, "Next page: -seed %d -page %d\n", *resp.Seed, resp.Page+1)
	}
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
