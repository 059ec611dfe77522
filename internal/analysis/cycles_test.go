package analysis

import (
	"fmt"
	"testing"

	"github.com/Defantinis/flowlens/internal/workflow"
)

// buildGraph constructs a graph from node names and simple name->name edges.
func buildGraph(t *testing.T, names []string, edges [][2]string) *workflow.Graph {
	t.Helper()

	wf := &workflow.Workflow{Connections: map[string]workflow.NodeOutputs{}}
	for _, name := range names {
		wf.Nodes = append(wf.Nodes, workflow.Node{Name: name, Type: "n8n-nodes-base.set"})
	}
	for _, e := range edges {
		outputs, ok := wf.Connections[e[0]]
		if !ok {
			outputs = workflow.NodeOutputs{}
			wf.Connections[e[0]] = outputs
		}
		if len(outputs["main"]) == 0 {
			outputs["main"] = [][]workflow.ConnectionTarget{{}}
		}
		outputs["main"][0] = append(outputs["main"][0],
			workflow.ConnectionTarget{Node: e[1], Type: "main", Index: 0})
	}

	g, err := workflow.NewGraph(wf)
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}
	return g
}

func TestHasLoopsNoEdges(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C"}, nil)
	if HasLoops(g) {
		t.Error("graph with no edges must not report loops")
	}
}

func TestHasLoopsSelfLoop(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"B", "B"}})
	if !HasLoops(g) {
		t.Error("self-loop must count as a cycle")
	}
}

func TestHasLoopsMutualCycle(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"}, [][2]string{{"A", "B"}, {"B", "A"}})
	if !HasLoops(g) {
		t.Error("two-node mutual cycle must be detected")
	}
}

func TestHasLoopsChain(t *testing.T) {
	g := buildGraph(t, []string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	if HasLoops(g) {
		t.Error("linear chain must not report loops")
	}
}

func TestHasLoopsDisconnectedComponent(t *testing.T) {
	// Cycle lives in a component unreachable from the first listed nodes.
	g := buildGraph(t, []string{"A", "B", "X", "Y"},
		[][2]string{{"A", "B"}, {"X", "Y"}, {"Y", "X"}})
	if !HasLoops(g) {
		t.Error("cycle in a disconnected component must be detected")
	}
}

func TestHasLoopsDiamondIsNotACycle(t *testing.T) {
	// Two paths converging on the same node share a "done" node but form no cycle.
	g := buildGraph(t, []string{"A", "B", "C", "D"},
		[][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})
	if HasLoops(g) {
		t.Error("diamond reconvergence must not report a loop")
	}
}

func TestHasLoopsToleratesDanglingTarget(t *testing.T) {
	g := buildGraph(t, []string{"A"}, [][2]string{{"A", "Ghost"}})
	if HasLoops(g) {
		t.Error("dangling target must be treated as a node with no edges")
	}
}

func TestHasLoopsLargerCycle(t *testing.T) {
	names := make([]string, 0, 6)
	edges := make([][2]string, 0, 6)
	for i := 0; i < 6; i++ {
		names = append(names, fmt.Sprintf("N%d", i))
		edges = append(edges, [2]string{fmt.Sprintf("N%d", i), fmt.Sprintf("N%d", (i+1)%6)})
	}
	g := buildGraph(t, names, edges)
	if !HasLoops(g) {
		t.Error("six-node ring must be detected as a cycle")
	}
}
