package main

import (
	"errors"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/gh-repo-sampler/pkg/client"
	"github.com/Sternrassler/gh-repo-sampler/pkg/presets"
	"github.com/Sternrassler/gh-repo-sampler/pkg/search"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		want    search.Request
		wantFmt string
	}{
		{
			name:    "defaults",
			args:    nil,
			want:    search.Request{NumRepos: defaultNumRepos, Page: 1},
			wantFmt: formatText,
		},
		{
			name: "all filters",
			args: []string{
				"-language", "go", "-topics", "cli, tools,,",
				"-min-stars", "100", "-max-stars", "5000", "-since", "3months",
				"-exclude-archived", "-exclude-forks", "-sort-by", "updated",
				"-num-repos", "20", "-page", "3", "-seed", "4242", "-output", "json",
			},
			want: search.Request{
				Language:        "go",
				Topics:          search.Topics{"cli", "tools"},
				MinStars:        intPtr(100),
				MaxStars:        intPtr(5000),
				Since:           "3months",
				ExcludeArchived: true,
				ExcludeForks:    true,
				SortBy:          "updated",
				NumRepos:        20,
				Page:            3,
				Seed:            int64Ptr(4242),
			},
			wantFmt: formatJSON,
		},
		{
			name:    "zero min stars is kept",
			args:    []string{"-min-stars", "0"},
			want:    search.Request{MinStars: intPtr(0), NumRepos: defaultNumRepos, Page: 1},
			wantFmt: formatText,
		},
		{
			name:    "token from environment",
			args:    []string{"-language", "rust"},
			env:     map[string]string{"GITHUB_TOKEN": "env-token"},
			want:    search.Request{Language: "rust", NumRepos: defaultNumRepos, Page: 1, GitHubToken: "env-token"},
			wantFmt: formatText,
		},
		{
			name:    "token flag wins over environment",
			args:    []string{"-language", "rust", "-github-token", "flag-token"},
			env:     map[string]string{"GITHUB_TOKEN": "env-token"},
			want:    search.Request{Language: "rust", NumRepos: defaultNumRepos, Page: 1, GitHubToken: "flag-token"},
			wantFmt: formatText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, func(k string) string { return tt.env[k] }, io.Discard)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, opts.Request); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantFmt, opts.Format)
			assert.Equal(t, client.DefaultBaseURL, opts.BaseURL)
			assert.Equal(t, 10*time.Second, opts.Timeout)
		})
	}
}

func TestParseFlags_PresetWithOverrides(t *testing.T) {
	opts, err := parseFlags([]string{"-preset", "rust-projects", "-num-repos", "3", "-exclude-forks"}, func(string) string { return "" }, io.Discard)
	require.NoError(t, err)

	p, err := presets.Get("rust-projects")
	require.NoError(t, err)
	want := p.Config.Request()
	want.NumRepos = 3
	want.ExcludeForks = true
	want.Page = 1

	if diff := cmp.Diff(want, opts.Request); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{name: "unknown preset", args: []string{"-preset", "nope"}, is: presets.ErrNotFound},
		{name: "non-numeric stars", args: []string{"-min-stars", "many"}, wantErr: "invalid value"},
		{name: "zero repos", args: []string{"-language", "go", "-num-repos", "0"}, wantErr: "num-repos must be greater than 0"},
		{name: "zero page", args: []string{"-language", "go", "-page", "0"}, wantErr: "page must be greater than 0"},
		{name: "bad output", args: []string{"-output", "xml"}, wantErr: `unknown output format "xml"`},
		{name: "positional", args: []string{"-language", "go", "extra"}, wantErr: "unexpected arguments: extra"},
		{name: "help", args: []string{"-h"}, is: flag.ErrHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, func(string) string { return "" }, io.Discard)
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseFlags_UsageListsPeriods(t *testing.T) {
	var buf strings.Builder
	_, err := parseFlags([]string{"-h"}, func(string) string { return "" }, &buf)
	require.ErrorIs(t, err, flag.ErrHelp)

	assert.Contains(t, buf.String(), "3months")
	assert.Contains(t, buf.String(), "1825 days")
}
