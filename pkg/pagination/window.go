package pagination

import "math/rand/v2"

const (
	// WindowCap is the number of matches GitHub search exposes for any query.
	WindowCap = 1000

	// MaxPageSize is the largest per_page value GitHub search accepts.
	MaxPageSize = 100
)

// permutationStream is the PCG stream selector. Changing it changes every
// permutation ever served, so it is fixed.
const permutationStream = 0x9e3779b97f4a7c15

// NewRand returns a generator seeded exactly by seed.
// Two generators built from the same seed produce the same sequence.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), permutationStream))
}

// MaxLogicalPages returns how many pages of pageSize fit inside the result
// window. It is never less than 1.
func MaxLogicalPages(pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	n := WindowCap / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// Permutation returns a Fisher-Yates shuffle of the provider pages
// [1..MaxLogicalPages(pageSize)], driven only by seed.
//
// Index i holds the provider page served for logical page i+1. The slice is
// recomputed on every call; nothing is retained between calls.
func Permutation(seed int64, pageSize int) []int {
	n := MaxLogicalPages(pageSize)

	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}

	rng := NewRand(seed)
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		pages[i], pages[j] = pages[j], pages[i]
	}

	return pages
}

// UnderlyingPage maps a logical page to the provider page for seed.
// It returns false when logical lies outside [1, MaxLogicalPages(pageSize)].
func UnderlyingPage(seed int64, pageSize, logical int) (int, bool) {
	if logical < 1 || logical > MaxLogicalPages(pageSize) {
		return 0, false
	}
	return Permutation(seed, pageSize)[logical-1], true
}

// HasMore reports whether a logical page after this one can hold results.
func HasMore(logical, pageSize, totalCount int) bool {
	return logical < MaxLogicalPages(pageSize) && logical*pageSize < totalCount
}
