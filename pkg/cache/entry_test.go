package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		expected bool
	}{
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Expires: tt.expires}
			if got := e.IsExpired(); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	e := &Entry{Expires: time.Now().Add(-time.Minute)}
	if e.TTL() != 0 {
		t.Errorf("TTL() = %v, want 0 for expired entry", e.TTL())
	}

	e = &Entry{Expires: time.Now().Add(time.Minute)}
	if ttl := e.TTL(); ttl <= 58*time.Second || ttl > time.Minute {
		t.Errorf("TTL() = %v, want about 1m", ttl)
	}
}

func TestEntry_HasValidators(t *testing.T) {
	var nilEntry *Entry
	if nilEntry.HasValidators() {
		t.Error("nil entry must not have validators")
	}
	if (&Entry{}).HasValidators() {
		t.Error("empty entry must not have validators")
	}
	if !(&Entry{ETag: `"x"`}).HasValidators() {
		t.Error("ETag is a validator")
	}
	if !(&Entry{LastModified: time.Now()}).HasValidators() {
		t.Error("Last-Modified is a validator")
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	lastMod := now.Add(-time.Hour)

	h := http.Header{}
	h.Set("ETag", `W/"abc"`)
	h.Set("Last-Modified", lastMod.Format(http.TimeFormat))
	h.Set("Cache-Control", "private, max-age=60, s-maxage=60")

	e := NewEntry(200, h, []byte(`{"total_count":1}`), now)

	if e.ETag != `W/"abc"` {
		t.Errorf("ETag = %q", e.ETag)
	}
	if !e.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", e.LastModified, lastMod)
	}
	if !e.Expires.Equal(now.Add(60 * time.Second)) {
		t.Errorf("Expires = %v, want now+60s", e.Expires)
	}
	if e.StatusCode != 200 || string(e.Body) != `{"total_count":1}` || !e.CachedAt.Equal(now) {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestExpiresAt(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		header   http.Header
		expected time.Time
	}{
		{
			name:     "max-age wins over expires",
			header:   http.Header{"Cache-Control": {"max-age=30"}, "Expires": {now.Add(time.Hour).Format(http.TimeFormat)}},
			expected: now.Add(30 * time.Second),
		},
		{
			name:     "expires",
			header:   http.Header{"Expires": {now.Add(time.Hour).Format(http.TimeFormat)}},
			expected: now.Add(time.Hour),
		},
		{
			name:     "expires in the past",
			header:   http.Header{"Expires": {now.Add(-time.Hour).Format(http.TimeFormat)}},
			expected: now,
		},
		{
			name:     "no-store",
			header:   http.Header{"Cache-Control": {"no-store"}},
			expected: now,
		},
		{
			name:     "no-cache falls back to default",
			header:   http.Header{"Cache-Control": {"no-cache"}},
			expected: now.Add(DefaultTTL),
		},
		{
			name:     "unparseable expires",
			header:   http.Header{"Expires": {"tomorrow"}},
			expected: now.Add(DefaultTTL),
		},
		{
			name:     "nothing",
			header:   http.Header{},
			expected: now.Add(DefaultTTL),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiresAt(tt.header, now); !got.Equal(tt.expected) {
				t.Errorf("ExpiresAt() = %v, want %v", got, tt.expected)
			}
		})
	}
}
