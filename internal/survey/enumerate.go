package survey

import (
	"fmt"
	"slices"
	"strings"
)

// Edge joins vertices I < J.
type Edge [2]int

// allPairs lists the edges of Kₙ in lexicographic order.
func allPairs(n int) []Edge {
	pairs := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, Edge{i, j})
		}
	}
	return pairs
}

// forEachEdgeSet calls fn with every subset of pairs, by increasing size and
// lexicographically within a size. fn must not retain the slice. Iteration
// stops early when fn returns false.
func forEachEdgeSet(pairs []Edge, fn func([]Edge) bool) {
	m := len(pairs)
	set := make([]Edge, 0, m)
	idx := make([]int, 0, m)
	for r := 0; r <= m; r++ {
		idx = idx[:r]
		for i := range idx {
			idx[i] = i
		}
		for {
			set = set[:0]
			for _, i := range idx {
				set = append(set, pairs[i])
			}
			if !fn(set) {
				return
			}

			// advance to the next r-combination
			k := r - 1
			for k >= 0 && idx[k] == m-r+k {
				k--
			}
			if k < 0 {
				break
			}
			idx[k]++
			for i := k + 1; i < r; i++ {
				idx[i] = idx[i-1] + 1
			}
		}
	}
}

func degrees(n int, edges []Edge) []int {
	deg := make([]int, n)
	for _, e := range edges {
		deg[e[0]]++
		deg[e[1]]++
	}
	return deg
}

// Fingerprint is an isomorphism invariant of the graph.
func Fingerprint(n int, edges []Edge) string {
	deg := degrees(n, edges)
	seq := slices.Clone(deg)
	slices.Sort(seq)
	slices.Reverse(seq)

	pairs := make([][2]int, len(edges))
	for i, e := range edges {
		pairs[i] = [2]int{deg[e[0]], deg[e[1]]}
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return fmt.Sprint(seq, pairs, len(edges))
}

// EdgeString renders edges as "0-1, 1-2", or "∅" for none.
func EdgeString(edges []Edge) string {
	if len(edges) == 0 {
		return "∅"
	}
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = fmt.Sprintf("%d-%d", e[0], e[1])
	}
	return strings.Join(parts, ", ")
}
