package repository

import (
	"encoding/json"
	"testing"

	"github.com/Sternrassler/gh-repo-sampler/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawRepo(t *testing.T, n int) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(testutil.Repo(n))
	require.NoError(t, err)
	return b
}

func TestFormat(t *testing.T) {
	got, err := Format(rawRepo(t, 3))
	require.NoError(t, err)

	want := Repository{
		Name:        "repo-3",
		FullName:    "owner3/repo-3",
		Owner:       "owner3",
		Stars:       9997,
		Forks:       3,
		Language:    "Go",
		Description: "Repository number 3",
		URL:         "https://github.com/owner3/repo-3",
		Homepage:    "",
		Topics:      []string{"cli", "tools"},
		CreatedAt:   "2020-01-01T03:00:00Z",
		UpdatedAt:   "2020-01-02T03:00:00Z",
		PushedAt:    "2020-01-03T03:00:00Z",
		Archived:    false,
		OpenIssues:  3,
		Watchers:    9997,
		License:     "MIT License",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_NullFields(t *testing.T) {
	raw := json.RawMessage(`{
		"name": "x", "full_name": "o/x", "owner": {"login": "o"},
		"language": null, "license": null, "description": null, "homepage": null, "topics": null
	}`)

	got, err := Format(raw)
	require.NoError(t, err)

	assert.Equal(t, NotAvailable, got.Language)
	assert.Equal(t, NotAvailable, got.License)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "", got.Homepage)
	assert.Equal(t, []string{}, got.Topics)
}

func TestFormat_CorpusNullLanguage(t *testing.T) {
	got, err := Format(rawRepo(t, 5))
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, got.Language)
	assert.Equal(t, NotAvailable, got.License)
}

func TestFormat_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `nope`},
		{"array", `[]`},
		{"missing owner", `{"name":"x","full_name":"o/x"}`},
		{"missing name", `{"full_name":"o/x","owner":{"login":"o"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Format(json.RawMessage(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestFormatAll(t *testing.T) {
	items := []json.RawMessage{rawRepo(t, 1), rawRepo(t, 2), rawRepo(t, 3)}

	repos, err := FormatAll(items)
	require.NoError(t, err)
	require.Len(t, repos, 3)
	assert.Equal(t, "repo-1", repos[0].Name)
	assert.Equal(t, "repo-3", repos[2].Name)
}

func TestFormatAll_FailsBatch(t *testing.T) {
	items := []json.RawMessage{rawRepo(t, 1), json.RawMessage(`{}`)}

	repos, err := FormatAll(items)
	assert.Nil(t, repos)
	assert.ErrorContains(t, err, "item 1")
}

func TestFormatAll_Empty(t *testing.T) {
	repos, err := FormatAll(nil)
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
}
