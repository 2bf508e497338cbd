package survey

import "fmt"

// IdentifyFamily names the well-known family the graph belongs to, or
// returns "". Families are tested in order: empty, complete, path, cycle,
// star, regular.
func IdentifyFamily(n int, edges []Edge) string {
	m := len(edges)
	deg := degrees(n, edges)

	count := make(map[int]int)
	maxDeg := 0
	for _, d := range deg {
		count[d]++
		maxDeg = max(maxDeg, d)
	}

	switch {
	case m == 0:
		return fmt.Sprintf("empty E%d", n)
	case m == n*(n-1)/2:
		return fmt.Sprintf("complete K%d", n)
	}

	if m == n-1 {
		if n > 2 && count[1] == 2 && count[2] == n-2 {
			return fmt.Sprintf("path P%d", n)
		}
		if maxDeg == n-1 && count[1] == n-1 {
			return fmt.Sprintf("star K1,%d", n-1)
		}
	}

	if m == n && count[2] == n && connected(n, edges) {
		return fmt.Sprintf("cycle C%d", n)
	}

	if len(count) == 1 && deg[0] > 0 {
		return fmt.Sprintf("%d-regular on %d vertices", deg[0], n)
	}
	return ""
}

func connected(n int, edges []Edge) bool {
	if n == 0 {
		return true
	}
	adj := make([][]int, n)
	for _, e := range edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	seen := make([]bool, n)
	stack := []int{0}
	seen[0] = true
	visited := 0
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		for _, w := range adj[v] {
			if !seen[w] {
				seen[w] = true
				stack = append(stack, w)
			}
		}
	}
	return visited == n
}
