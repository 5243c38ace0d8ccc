// Package cache keeps GitHub API responses in Redis so repeated requests can be
// sent as conditional requests.
//
// GitHub answers a conditional request (If-None-Match / If-Modified-Since)
// with 304 Not Modified when nothing changed, and 304 responses do not count
// against the rate limit. The cache never answers a request on its own: every
// request still goes to GitHub, the cached entry only supplies the validators
// and the body to replay on 304.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Endpoint: "/search/repositories",
//		Query:    url.Values{"q": {"language:go"}, "page": {"3"}},
//		TokenID:  tokenID,
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// plain request
//	}
//	cache.AddConditionalHeaders(req, entry)
//
// # Expiry
//
// Entries live for Cache-Control max-age when present, else until Expires,
// else DefaultTTL. Responses marked no-store are not cached.
//
// # Metrics
//
//   - github_cache_hits_total - Cache hits
//   - github_cache_misses_total - Cache misses
//   - github_cache_errors_total{operation} - Cache operation errors
//   - github_304_responses_total - Requests answered with 304 Not Modified
//   - github_conditional_requests_total - Conditional requests sent
package cache
