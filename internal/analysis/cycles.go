package analysis

import (
	"github.com/Defantinis/flowlens/internal/workflow"
)

// DFS colors for cycle detection.
// 0 = unvisited, 1 = in progress (on the current path), 2 = done.
const (
	colorUnvisited = 0
	colorInPath    = 1
	colorDone      = 2
)

// HasLoops reports whether the directed graph contains any cycle, in any
// component. Self-loops count. The done set persists across start nodes, so
// every node is fully explored at most once and total work is O(V+E).
// Traversal order does not affect the result.
func HasLoops(g *workflow.Graph) bool {
	color := make(map[string]int, g.NodeCount())

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = colorInPath
		for _, outputs := range g.NodeConnections(name) {
			for _, targets := range outputs {
				for _, t := range targets {
					switch color[t.Node] {
					case colorInPath:
						return true
					case colorUnvisited:
						if visit(t.Node) {
							return true
						}
					}
				}
			}
		}
		color[name] = colorDone
		return false
	}

	for _, n := range g.Nodes() {
		if color[n.Name] == colorUnvisited {
			if visit(n.Name) {
				return true
			}
		}
	}
	return false
}
