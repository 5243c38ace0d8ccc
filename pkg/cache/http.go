package cache

import (
	"net/http"
)

// AddConditionalHeaders adds If-None-Match, or If-Modified-Since when the
// entry has no ETag. It reports whether a validator was added.
func AddConditionalHeaders(req *http.Request, entry *Entry) bool {
	if req == nil || !entry.HasValidators() {
		return false
	}

	// ETag is more precise than Last-Modified
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else {
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	}
	return true
}
