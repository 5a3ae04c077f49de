// Package ordering computes longest strictly-increasing subsequences and the
// out-of-order complement used to decide which playlist entries must move.
package ordering

import "sort"

// LongestIncreasingSubsequence returns one longest strictly-increasing
// subsequence of values (the values themselves, not indices), built by
// patience sorting with binary insertion. When several subsequences of
// maximal length exist, the one produced by the insertion process is
// returned; no lexicographic guarantee is made. Runs in O(n log n).
func LongestIncreasingSubsequence(values []int) []int {
	if len(values) < 2 {
		return append([]int(nil), values...)
	}

	// tails[i] is the smallest tail value of any increasing subsequence of
	// length i+1 seen so far; it is strictly increasing by construction.
	// best[i] is a subsequence realizing tails[i].
	tails := []int{values[0]}
	best := [][]int{{values[0]}}

	for _, x := range values[1:] {
		slot := sort.SearchInts(tails, x)

		if slot == len(tails) {
			tails = append(tails, x)
			last := best[len(best)-1]
			best = append(best, append(append(make([]int, 0, len(last)+1), last...), x))
			continue
		}

		// Strict increase only: an equal tail keeps its slot. The new
		// subsequence extends the previous slot's; splicing the tails
		// prefix instead would mix values that never co-occur in order.
		if x < tails[slot] {
			tails[slot] = x
			if slot == 0 {
				best[0] = []int{x}
				continue
			}
			prev := best[slot-1]
			best[slot] = append(append(make([]int, 0, len(prev)+1), prev...), x)
		}
	}

	return best[len(best)-1]
}

// OutOfOrderSublist returns the values of the input that are not part of the
// longest increasing subsequence chosen by LongestIncreasingSubsequence, in
// their original relative order. These are the elements that must move for
// the input to become sorted, given that particular subsequence choice.
func OutOfOrderSublist(values []int) []int {
	inOrder := LongestIncreasingSubsequence(values)

	out := make([]int, 0, len(values)-len(inOrder))
	j := 0
	for _, v := range values {
		if j < len(inOrder) && v == inOrder[j] {
			j++
			continue
		}
		out = append(out, v)
	}
	return out
}
