package analysis

import (
	"github.com/Defantinis/flowlens/internal/workflow"
)

// MaxDepth returns the length, in nodes, of the longest directed path starting
// from a root (a node with no incoming connection). If the graph has no root
// (for example, it is entirely cycles), the first listed node is used as the
// sole start point. A graph with zero nodes has depth 0.
//
// Cycles are handled with a per-path visited set: a node already on the
// current path contributes no additional depth. The guard is per path, not a
// global memo, so nodes can be revisited along different paths and worst-case
// cost is exponential on dense cyclic graphs. Callers needing bounded latency
// must impose an external deadline.
func MaxDepth(g *workflow.Graph) int {
	if g.NodeCount() == 0 {
		return 0
	}

	roots := rootsOf(g)
	if len(roots) == 0 {
		roots = []string{g.Nodes()[0].Name}
	}

	onPath := make(map[string]bool, g.NodeCount())
	max := 0
	for _, root := range roots {
		if d := depthFrom(g, root, onPath); d > max {
			max = d
		}
	}
	return max
}

// rootsOf returns, in document order, every node with no incoming connection.
func rootsOf(g *workflow.Graph) []string {
	hasIncoming := make(map[string]bool)
	for _, outputs := range g.Connections() {
		for _, wires := range outputs {
			for _, targets := range wires {
				for _, t := range targets {
					hasIncoming[t.Node] = true
				}
			}
		}
	}

	var roots []string
	for _, n := range g.Nodes() {
		if !hasIncoming[n.Name] {
			roots = append(roots, n.Name)
		}
	}
	return roots
}

func depthFrom(g *workflow.Graph, name string, onPath map[string]bool) int {
	// Dangling connection targets are treated as absent: no node, no depth.
	if _, ok := g.NodeByName(name); !ok {
		return 0
	}

	onPath[name] = true
	best := 0
	for _, wires := range g.NodeConnections(name) {
		for _, targets := range wires {
			for _, t := range targets {
				if onPath[t.Node] {
					continue
				}
				if d := depthFrom(g, t.Node, onPath); d > best {
					best = d
				}
			}
		}
	}
	delete(onPath, name)

	return 1 + best
}
