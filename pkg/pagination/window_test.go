package pagination

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMaxLogicalPages(t *testing.T) {
	tests := []struct {
		pageSize int
		expected int
	}{
		{1, 1000},
		{3, 333},
		{5, 200},
		{7, 142},
		{10, 100},
		{30, 33},
		{100, 10},
		{0, 1},
		{-4, 1},
		{5000, 1},
	}

	for _, tt := range tests {
		if got := MaxLogicalPages(tt.pageSize); got != tt.expected {
			t.Errorf("MaxLogicalPages(%d) = %d, want %d", tt.pageSize, got, tt.expected)
		}
	}
}

func TestPermutation_IsBijection(t *testing.T) {
	for pageSize := 1; pageSize <= MaxPageSize; pageSize++ {
		n := MaxLogicalPages(pageSize)
		if n != WindowCap/pageSize {
			t.Fatalf("MaxLogicalPages(%d) = %d, want %d", pageSize, n, WindowCap/pageSize)
		}

		perm := Permutation(int64(pageSize)*7919, pageSize)
		if len(perm) != n {
			t.Fatalf("pageSize %d: len = %d, want %d", pageSize, len(perm), n)
		}

		sorted := append([]int(nil), perm...)
		sort.Ints(sorted)
		for i, p := range sorted {
			if p != i+1 {
				t.Fatalf("pageSize %d: page %d missing or duplicated", pageSize, i+1)
			}
		}
	}
}

func TestPermutation_Deterministic(t *testing.T) {
	first := Permutation(42, 5)
	second := Permutation(42, 5)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("permutation for seed 42 changed between calls (-first +second):\n%s", diff)
	}
	if len(first) != 200 {
		t.Errorf("len = %d, want 200", len(first))
	}
}

func TestPermutation_SeedsDiffer(t *testing.T) {
	const pageSize = 10

	identical := 0
	for seed := int64(0); seed < 200; seed++ {
		a := Permutation(seed, pageSize)
		b := Permutation(seed+1, pageSize)
		if cmp.Equal(a, b) {
			identical++
		}
	}

	if identical != 0 {
		t.Errorf("%d of 200 adjacent seed pairs produced identical permutations", identical)
	}
}

func TestPermutation_NegativeSeed(t *testing.T) {
	perm := Permutation(-1, 100)
	if len(perm) != 10 {
		t.Fatalf("len = %d, want 10", len(perm))
	}
	if !cmp.Equal(perm, Permutation(-1, 100)) {
		t.Error("negative seed is not deterministic")
	}
}

func TestUnderlyingPage(t *testing.T) {
	perm := Permutation(42, 5)

	for logical := 1; logical <= len(perm); logical++ {
		page, ok := UnderlyingPage(42, 5, logical)
		if !ok {
			t.Fatalf("logical page %d reported outside window", logical)
		}
		if page != perm[logical-1] {
			t.Fatalf("logical page %d -> %d, want %d", logical, page, perm[logical-1])
		}
	}

	for _, logical := range []int{0, -1, 201, 1000} {
		if _, ok := UnderlyingPage(42, 5, logical); ok {
			t.Errorf("logical page %d should be outside the window", logical)
		}
	}
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		name     string
		logical  int
		pageSize int
		total    int
		expected bool
	}{
		{"more matches remain", 1, 10, 25, true},
		{"exactly consumed", 2, 10, 20, false},
		{"past total", 3, 10, 20, false},
		{"no matches", 1, 10, 0, false},
		{"last page of window", 100, 10, 50000, false},
		{"second to last page of window", 99, 10, 50000, true},
		{"page size 100 last page", 10, 100, 1000, false},
		{"page size 100 middle", 5, 100, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMore(tt.logical, tt.pageSize, tt.total); got != tt.expected {
				t.Errorf("HasMore(%d, %d, %d) = %v, want %v", tt.logical, tt.pageSize, tt.total, got, tt.expected)
			}
		})
	}
}

func TestNewRand_SameSeedSameSequence(t *testing.T) {
	a := NewRand(7)
	b := NewRand(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Uint64(), b.Uint64(); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}
