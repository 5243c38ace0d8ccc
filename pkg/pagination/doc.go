// Package pagination maps logical pages onto GitHub search result pages.
//
// GitHub search exposes only the first 1000 matches of any query, at most 100
// per page, and only in stars/forks/updated order. To browse that window in a
// random but reproducible order this package derives, from a seed and a page
// size, a permutation of the provider pages inside the window:
//
//	perm := pagination.Permutation(seed, 5) // 200 provider pages, shuffled
//	page := perm[logical-1]                 // provider page for a logical page
//
// The permutation is a pure function of (seed, page size). It is rebuilt on
// demand instead of stored, so any process can serve any logical page of any
// browsing session.
//
// Matches beyond the window are unreachable. The window is a provider limit,
// not something this package tries to work around.
package pagination
