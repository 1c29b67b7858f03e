package metrics

import (
	"sort"

	"tagmetry/types"
)

// computeCommunityHint is M9: connected components over the co-occurrence
// graph restricted to edges with weight >= threshold, found by breadth-first
// search visiting neighbours in ordinal order for determinism.
func computeCommunityHint(cooc map[pair]int, threshold float64, previewSize int) types.CommunityHint {
	adjacency := make(map[string]map[string]struct{})
	edgeCount := 0
	for p, weight := range cooc {
		if float64(weight) < threshold {
			continue
		}
		edgeCount++
		addEdge(adjacency, p.A, p.B)
		addEdge(adjacency, p.B, p.A)
	}

	nodes := make([]string, 0, len(adjacency))
	for node := range adjacency {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	visited := make(map[string]bool, len(nodes))
	var previews [][]string

	for _, seed := range nodes {
		if visited[seed] {
			continue
		}
		component := bfsComponent(adjacency, seed, visited)
		sort.Strings(component)
		limit := len(component)
		if previewSize > 0 && previewSize < limit {
			limit = previewSize
		}
		previews = append(previews, append([]string(nil), component[:limit]...))
	}

	nodeCount := len(nodes)
	componentCount := len(previews)

	var modularityHint float64
	if nodeCount > 0 {
		edgeRatio := float64(edgeCount) / float64(maxInt(edgeCount, 1))
		modularityHint = (float64(componentCount) / float64(nodeCount)) * edgeRatio
	}

	if previews == nil {
		previews = [][]string{}
	}

	return types.CommunityHint{
		CommunityCount:    componentCount,
		ModularityHint:    modularityHint,
		CommunityPreviews: previews,
	}
}

func addEdge(adjacency map[string]map[string]struct{}, from, to string) {
	if adjacency[from] == nil {
		adjacency[from] = make(map[string]struct{})
	}
	adjacency[from][to] = struct{}{}
}

func bfsComponent(adjacency map[string]map[string]struct{}, seed string, visited map[string]bool) []string {
	queue := []string{seed}
	visited[seed] = true
	component := []string{seed}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		neighbours := make([]string, 0, len(adjacency[node]))
		for n := range adjacency[node] {
			neighbours = append(neighbours, n)
		}
		sort.Strings(neighbours)

		for _, n := range neighbours {
			if visited[n] {
				continue
			}
			visited[n] = true
			component = append(component, n)
			queue = append(queue, n)
		}
	}

	return component
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
