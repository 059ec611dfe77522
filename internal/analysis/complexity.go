package analysis

import (
	"github.com/Defantinis/flowlens/internal/workflow"
)

// DefaultComplexTypes is the fallback set of node types that raise the
// complexity score: code execution, scripting, and generic HTTP-call nodes.
// Deployments override it via the analysis.complex_types config key.
var DefaultComplexTypes = []string{
	"n8n-nodes-base.code",
	"n8n-nodes-base.function",
	"n8n-nodes-base.functionItem",
	"n8n-nodes-base.executeCommand",
	"n8n-nodes-base.httpRequest",
}

// Estimator computes the heuristic complexity score. The complex-type set is
// fixed at construction time.
type Estimator struct {
	complexTypes map[string]bool
}

// NewEstimator creates an estimator with the given complex-type set.
// A nil or empty set falls back to DefaultComplexTypes.
func NewEstimator(complexTypes []string) *Estimator {
	if len(complexTypes) == 0 {
		complexTypes = DefaultComplexTypes
	}
	set := make(map[string]bool, len(complexTypes))
	for _, t := range complexTypes {
		set[t] = true
	}
	return &Estimator{complexTypes: set}
}

// Estimate returns a monotonic heuristic difficulty score in [1,10].
// It is additive over node count, connection density, loops, depth, and the
// number of complex-typed nodes, then clamped to the [1,10] range.
func (e *Estimator) Estimate(g *workflow.Graph, nodeCount, connectionCount int, hasLoops bool, maxDepth int) int {
	score := 1

	switch {
	case nodeCount <= 5:
		score++
	case nodeCount <= 10:
		score += 2
	case nodeCount <= 20:
		score += 3
	default:
		score += 4
	}

	avg := 0.0
	if nodeCount > 0 {
		avg = float64(connectionCount) / float64(nodeCount)
	}
	if avg > 2 {
		score++
	}
	if avg > 3 {
		score++
	}

	if hasLoops {
		score += 2
	}

	if maxDepth > 5 {
		score++
	}
	if maxDepth > 10 {
		score++
	}

	complexCount := 0
	if g != nil {
		for _, n := range g.Nodes() {
			if e.complexTypes[n.Type] {
				complexCount++
			}
		}
	}
	if complexCount > 2 {
		complexCount = 2
	}
	score += complexCount

	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}
	return score
}
