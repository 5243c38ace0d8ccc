package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return &d
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{
			name:    "empty filters",
			filters: Filters{},
			want:    "",
		},
		{
			name:    "language and min stars",
			filters: Filters{Language: "python", MinStars: Int(100)},
			want:    "language:python stars:>=100",
		},
		{
			name:    "max stars only",
			filters: Filters{MaxStars: Int(4000)},
			want:    "stars:<=4000",
		},
		{
			name:    "star range",
			filters: Filters{MinStars: Int(500), MaxStars: Int(4000)},
			want:    "stars:500..4000",
		},
		{
			name:    "zero min stars is populated",
			filters: Filters{MinStars: Int(0)},
			want:    "stars:>=0",
		},
		{
			name:    "topics keep input order and skip blanks",
			filters: Filters{Topics: []string{" cli ", "", "terminal", "   "}},
			want:    "topic:cli topic:terminal",
		},
		{
			name: "all fields in fixed order",
			filters: Filters{
				ExcludeForks:    true,
				ExcludeArchived: true,
				Since:           date(t, "2024-03-01"),
				MaxStars:        Int(10),
				MinStars:        Int(1),
				Topics:          []string{"go", "api"},
				Language:        "go",
			},
			want: "language:go topic:go topic:api stars:1..10 pushed:>=2024-03-01 archived:false fork:false",
		},
		{
			name:    "flags only",
			filters: Filters{ExcludeArchived: true, ExcludeForks: true},
			want:    "archived:false fork:false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.filters))
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	f := Filters{
		Language: "rust",
		Topics:   []string{"wasm", "cli"},
		MinStars: Int(5),
		Since:    date(t, "2023-01-15"),
	}
	first := Compile(f)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Compile(f))
	}
}

func TestCompile_DoesNotMutate(t *testing.T) {
	topics := []string{" a ", "b"}
	f := Filters{Topics: topics}
	Compile(f)
	assert.Equal(t, []string{" a ", "b"}, topics)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		wantErr error
	}{
		{name: "no bounds", filters: Filters{}, wantErr: nil},
		{name: "equal bounds", filters: Filters{MinStars: Int(7), MaxStars: Int(7)}, wantErr: nil},
		{name: "inverted range", filters: Filters{MinStars: Int(10), MaxStars: Int(5)}, wantErr: ErrStarRange},
		{name: "negative min", filters: Filters{MinStars: Int(-1)}, wantErr: ErrNegativeStars},
		{name: "negative max", filters: Filters{MaxStars: Int(-3)}, wantErr: ErrNegativeStars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.filters)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestBuild(t *testing.T) {
	t.Run("empty filters", func(t *testing.T) {
		q, err := Build(Filters{})
		assert.Empty(t, q)
		assert.True(t, errors.Is(err, ErrNoCriteria))
	})

	t.Run("blank topics only", func(t *testing.T) {
		_, err := Build(Filters{Topics: []string{" ", ""}})
		assert.ErrorIs(t, err, ErrNoCriteria)
	})

	t.Run("inverted range never compiles", func(t *testing.T) {
		q, err := Build(Filters{Language: "go", MinStars: Int(9), MaxStars: Int(1)})
		assert.Empty(t, q)
		assert.ErrorIs(t, err, ErrStarRange)
	})

	t.Run("valid", func(t *testing.T) {
		q, err := Build(Filters{Language: "python", MinStars: Int(100)})
		require.NoError(t, err)
		assert.Equal(t, "language:python stars:>=100", q)
	})
}
