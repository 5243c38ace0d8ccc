package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces cache keys in Redis.
const KeyPrefix = "ghs:cache"

// Key identifies a cached response.
type Key struct {
	// Endpoint is the API path, e.g. "/search/repositories".
	Endpoint string

	// Query holds the request query parameters.
	Query url.Values

	// TokenID identifies the credential the response was fetched with.
	// It is a digest, never the token itself.
	TokenID string
}

// String renders a deterministic Redis key.
//
// Example:
//
//	ghs:cache:search/repositories:order=desc:page=3:q=language%3Ago:tok=anon
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if endpoint := strings.Trim(k.Endpoint, "/"); endpoint != "" {
		parts = append(parts, endpoint)
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, v := range k.Query[name] {
			parts = append(parts, name+"="+url.QueryEscape(v))
		}
	}

	tokenID := k.TokenID
	if tokenID == "" {
		tokenID = "anon"
	}
	parts = append(parts, "tok="+tokenID)

	return strings.Join(parts, ":")
}
