package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL is how long an entry is kept when the response states no lifetime.
const DefaultTTL = 5 * time.Minute

// Entry is a cached GitHub response.
type Entry struct {
	Body []byte `json:"body"`

	// ETag is sent back as If-None-Match.
	ETag string `json:"etag"`

	// LastModified is sent back as If-Modified-Since when there is no ETag.
	LastModified time.Time `json:"last_modified"`

	StatusCode int       `json:"status_code"`
	Expires    time.Time `json:"expires"`
	CachedAt   time.Time `json:"cached_at"`
}

// NewEntry builds an entry from a response observed at now.
func NewEntry(status int, header http.Header, body []byte, now time.Time) *Entry {
	entry := &Entry{
		Body:       body,
		ETag:       header.Get("ETag"),
		StatusCode: status,
		Expires:    ExpiresAt(header, now),
		CachedAt:   now,
	}

	if lm := header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			entry.LastModified = t
		}
	}

	return entry
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the time until expiration, 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// HasValidators reports whether the entry can back a conditional request.
func (e *Entry) HasValidators() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}

// ExpiresAt derives the entry lifetime from Cache-Control, then Expires, then
// DefaultTTL. no-store yields now, which Set refuses to cache.
func ExpiresAt(header http.Header, now time.Time) time.Time {
	for _, directive := range strings.Split(header.Get("Cache-Control"), ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		switch {
		case directive == "no-store":
			return now
		case strings.HasPrefix(directive, "max-age="):
			secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err == nil && secs > 0 {
				return now.Add(time.Duration(secs) * time.Second)
			}
		}
	}

	if v := header.Get("Expires"); v != "" {
		if t, err := http.ParseTime(v); err == nil {
			if t.Before(now) {
				return now
			}
			return t
		}
	}

	return now.Add(DefaultTTL)
}
