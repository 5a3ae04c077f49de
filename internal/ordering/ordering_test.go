package ordering_test

import (
	"testing"

	"shadowlist/internal/ordering"
)

func TestLongestIncreasingSubsequence(t *testing.T) {
	cases := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, nil},
		{"single", []int{7}, []int{7}},
		{"already sorted", []int{1, 2}, []int{1, 2}},
		{"mixed", []int{3, 4, 2, 9, 1}, []int{3, 4, 9}},
		{"rotated", []int{2, 0, 1}, []int{0, 1}},
		{"middle slot replaced after front rewrite", []int{1, 2, 4, 0, 3}, []int{1, 2, 3}},
		{"descending", []int{5, 4, 3, 2, 1}, []int{1}},
		{"duplicates stay strict", []int{1, 1, 1}, []int{1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ordering.LongestIncreasingSubsequence(tc.in)
			if !equal(got, tc.want) {
				t.Fatalf("LongestIncreasingSubsequence(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestOutOfOrderSublist(t *testing.T) {
	cases := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty", nil, []int{}},
		{"sorted", []int{0, 1, 2}, []int{}},
		{"rotated", []int{2, 0, 1}, []int{2}},
		{"tail swap", []int{0, 2, 1}, []int{2}},
		{"reverse", []int{3, 2, 1}, []int{3, 2}},
		{"middle slot replaced after front rewrite", []int{1, 2, 4, 0, 3}, []int{4, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ordering.OutOfOrderSublist(tc.in)
			if !equal(got, tc.want) {
				t.Fatalf("OutOfOrderSublist(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

// TestExhaustiveSmallInputs checks the algebraic properties on every sequence
// of length <= 5 over a small alphabet: the subsequence really is one, it is
// strictly increasing, it has maximal length, and the out-of-order complement
// restores the input multiset while leaving an increasing remainder. The
// alphabet must span at least 5 values: a middle-slot replacement following a
// front-slot rewrite, the hardest case for the subsequence property, needs 5
// distinct values to appear within length 5.
func TestExhaustiveSmallInputs(t *testing.T) {
	const alphabet = 5
	for length := 0; length <= 5; length++ {
		total := 1
		for i := 0; i < length; i++ {
			total *= alphabet
		}
		for n := 0; n < total; n++ {
			seq := make([]int, length)
			v := n
			for i := 0; i < length; i++ {
				seq[i] = v % alphabet
				v /= alphabet
			}

			lis := ordering.LongestIncreasingSubsequence(seq)
			if !isSubsequence(lis, seq) {
				t.Fatalf("%v: result %v is not a subsequence", seq, lis)
			}
			if !strictlyIncreasing(lis) {
				t.Fatalf("%v: result %v is not strictly increasing", seq, lis)
			}
			if want := bruteForceLISLength(seq); len(lis) != want {
				t.Fatalf("%v: result %v has length %d, maximal is %d", seq, lis, len(lis), want)
			}

			out := ordering.OutOfOrderSublist(seq)
			if len(out)+len(lis) != len(seq) {
				t.Fatalf("%v: complement %v + subsequence %v does not cover input", seq, out, lis)
			}
			counts := map[int]int{}
			for _, x := range seq {
				counts[x]++
			}
			for _, x := range lis {
				counts[x]--
			}
			for _, x := range out {
				counts[x]--
			}
			for x, c := range counts {
				if c != 0 {
					t.Fatalf("%v: multiset mismatch for value %d", seq, x)
				}
			}
		}
	}
}

func bruteForceLISLength(seq []int) int {
	best := 0
	for mask := 0; mask < 1<<len(seq); mask++ {
		prev := -1 << 30
		count := 0
		ok := true
		for i := 0; i < len(seq); i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			if seq[i] <= prev {
				ok = false
				break
			}
			prev = seq[i]
			count++
		}
		if ok && count > best {
			best = count
		}
	}
	return best
}

func isSubsequence(sub, seq []int) bool {
	j := 0
	for _, v := range seq {
		if j < len(sub) && sub[j] == v {
			j++
		}
	}
	return j == len(sub)
}

func strictlyIncreasing(seq []int) bool {
	for i := 1; i < len(seq); i++ {
		if seq[i] <= seq[i-1] {
			return false
		}
	}
	return true
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
