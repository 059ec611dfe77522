package analysis

import (
	"fmt"
	"strings"

	"github.com/Defantinis/flowlens/internal/workflow"
)

// Metadata is the derived structural record for one workflow analysis.
// It is recomputed from scratch on every Analyze call and never cached.
type Metadata struct {
	NodeCount           int      `json:"nodeCount"`
	ConnectionCount     int      `json:"connectionCount"`
	NodeTypes           []string `json:"nodeTypes"`
	HasLoops            bool     `json:"hasLoops"`
	MaxDepth            int      `json:"maxDepth"`
	EstimatedComplexity int      `json:"estimatedComplexity"`
}

// Analyzer runs the structural analyzers over a constructed graph and
// aggregates their outputs. It holds no per-call state and is safe for
// concurrent use.
type Analyzer struct {
	estimator *Estimator
}

// NewAnalyzer creates an analyzer. complexTypes overrides the complex-type
// set used by the complexity estimator; nil keeps the default set.
func NewAnalyzer(complexTypes []string) *Analyzer {
	return &Analyzer{estimator: NewEstimator(complexTypes)}
}

// Analyze derives the full metadata record for a graph.
func (a *Analyzer) Analyze(g *workflow.Graph) Metadata {
	nodeCount := g.NodeCount()
	connectionCount := g.ConnectionCount()
	hasLoops := HasLoops(g)
	maxDepth := MaxDepth(g)

	return Metadata{
		NodeCount:           nodeCount,
		ConnectionCount:     connectionCount,
		NodeTypes:           nodeTypes(g),
		HasLoops:            hasLoops,
		MaxDepth:            maxDepth,
		EstimatedComplexity: a.estimator.Estimate(g, nodeCount, connectionCount, hasLoops, maxDepth),
	}
}

// nodeTypes returns the distinct type tags in first-appearance order.
func nodeTypes(g *workflow.Graph) []string {
	seen := make(map[string]bool)
	var types []string
	for _, n := range g.Nodes() {
		if !seen[n.Type] {
			seen[n.Type] = true
			types = append(types, n.Type)
		}
	}
	return types
}

// Summary renders a fixed-format human-readable block for a workflow and its
// metadata. Purely presentational.
func Summary(name string, active bool, md Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workflow: %s\n", name)
	fmt.Fprintf(&b, "Active: %t\n", active)
	fmt.Fprintf(&b, "Nodes: %d\n", md.NodeCount)
	fmt.Fprintf(&b, "Connections: %d\n", md.ConnectionCount)
	fmt.Fprintf(&b, "Node types: %s\n", strings.Join(md.NodeTypes, ", "))
	fmt.Fprintf(&b, "Complexity: %d/10\n", md.EstimatedComplexity)
	fmt.Fprintf(&b, "Max depth: %d\n", md.MaxDepth)
	fmt.Fprintf(&b, "Contains loops: %t\n", md.HasLoops)
	return b.String()
}
