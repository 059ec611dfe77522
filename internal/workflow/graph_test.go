package workflow

import (
	"errors"
	"testing"
)

// chainWorkflow builds A -> B -> C with single main connections.
func chainWorkflow() *Workflow {
	return &Workflow{
		Name: "chain",
		Nodes: []Node{
			{Name: "A", Type: "n8n-nodes-base.webhook"},
			{Name: "B", Type: "n8n-nodes-base.set"},
			{Name: "C", Type: "n8n-nodes-base.set"},
		},
		Connections: map[string]NodeOutputs{
			"A": {"main": {{{Node: "B", Type: "main", Index: 0}}}},
			"B": {"main": {{{Node: "C", Type: "main", Index: 0}}}},
		},
	}
}

func TestNewGraphCounts(t *testing.T) {
	g, err := NewGraph(chainWorkflow())
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}
	if g.ConnectionCount() != 2 {
		t.Errorf("expected 2 connections, got %d", g.ConnectionCount())
	}
}

func TestNewGraphDuplicateName(t *testing.T) {
	wf := &Workflow{
		Nodes: []Node{
			{Name: "A", Type: "x"},
			{Name: "A", Type: "y"},
		},
		Connections: map[string]NodeOutputs{},
	}

	_, err := NewGraph(wf)
	if err == nil {
		t.Fatal("expected error for duplicate node name")
	}
	if !errors.Is(err, ErrSchema) {
		t.Errorf("expected ErrSchema, got %v", err)
	}
}

func TestNodeByName(t *testing.T) {
	g, _ := NewGraph(chainWorkflow())

	n, ok := g.NodeByName("B")
	if !ok {
		t.Fatal("expected to find node B")
	}
	if n.Type != "n8n-nodes-base.set" {
		t.Errorf("unexpected type for B: %q", n.Type)
	}

	if _, ok := g.NodeByName("missing"); ok {
		t.Error("expected lookup of unknown node to fail")
	}
}

func TestNodesByType(t *testing.T) {
	g, _ := NewGraph(chainWorkflow())

	sets := g.NodesByType("n8n-nodes-base.set")
	if len(sets) != 2 {
		t.Fatalf("expected 2 set nodes, got %d", len(sets))
	}
	if sets[0].Name != "B" || sets[1].Name != "C" {
		t.Errorf("expected document order B, C; got %s, %s", sets[0].Name, sets[1].Name)
	}

	if got := g.NodesByType("unknown"); len(got) != 0 {
		t.Errorf("expected no nodes of unknown type, got %d", len(got))
	}
}

func TestNodeConnections(t *testing.T) {
	g, _ := NewGraph(chainWorkflow())

	outputs := g.NodeConnections("A")
	if len(outputs["main"]) != 1 {
		t.Fatalf("expected 1 wire from A, got %d", len(outputs["main"]))
	}

	// Terminal node: empty map, not nil
	outputs = g.NodeConnections("C")
	if outputs == nil {
		t.Fatal("expected empty map for node with no outgoing connections")
	}
	if len(outputs) != 0 {
		t.Errorf("expected no outputs for C, got %d", len(outputs))
	}
}

func TestIncomingConnections(t *testing.T) {
	g, _ := NewGraph(chainWorkflow())

	in := g.IncomingConnections("B")
	if len(in) != 1 {
		t.Fatalf("expected 1 incoming connection for B, got %d", len(in))
	}
	if in[0].SourceNode != "A" {
		t.Errorf("expected source A, got %q", in[0].SourceNode)
	}
	if in[0].OutputSlot != "main" || in[0].SlotOrdinal != 0 || in[0].InputIndex != 0 {
		t.Errorf("unexpected incoming tuple: %+v", in[0])
	}

	if got := g.IncomingConnections("A"); len(got) != 0 {
		t.Errorf("expected no incoming connections for root A, got %d", len(got))
	}
}

func TestCheckReferences(t *testing.T) {
	g, _ := NewGraph(chainWorkflow())
	if errs := g.CheckReferences(); len(errs) != 0 {
		t.Errorf("expected no dangling references, got %v", errs)
	}

	wf := chainWorkflow()
	wf.Connections["C"] = NodeOutputs{
		"main": {{{Node: "Ghost", Type: "main", Index: 0}}},
	}
	g, err := NewGraph(wf)
	if err != nil {
		t.Fatalf("construction must tolerate dangling targets: %v", err)
	}

	errs := g.CheckReferences()
	if len(errs) != 1 {
		t.Fatalf("expected 1 dangling reference, got %d", len(errs))
	}
	if !errors.Is(errs[0], ErrDanglingReference) {
		t.Errorf("expected ErrDanglingReference, got %v", errs[0])
	}
	var dre *DanglingReferenceError
	if !errors.As(errs[0], &dre) {
		t.Fatalf("expected *DanglingReferenceError, got %T", errs[0])
	}
	if dre.Source != "C" || dre.Target != "Ghost" {
		t.Errorf("unexpected reference detail: %+v", dre)
	}

	// Lookups stay safe in the presence of the dangling target.
	if got := g.NodeConnections("Ghost"); len(got) != 0 {
		t.Errorf("expected no outputs for dangling target, got %d", len(got))
	}
}

func TestConnectionCountMultipleWires(t *testing.T) {
	wf := &Workflow{
		Nodes: []Node{
			{Name: "Split", Type: "n8n-nodes-base.if"},
			{Name: "Left", Type: "n8n-nodes-base.set"},
			{Name: "Right", Type: "n8n-nodes-base.set"},
		},
		Connections: map[string]NodeOutputs{
			"Split": {
				"main": {
					{{Node: "Left", Type: "main", Index: 0}, {Node: "Right", Type: "main", Index: 0}},
					{{Node: "Right", Type: "main", Index: 1}},
				},
			},
		},
	}

	g, err := NewGraph(wf)
	if err != nil {
		t.Fatalf("failed to build graph: %v", err)
	}

	// Two targets on the first output, one on the second.
	if g.ConnectionCount() != 3 {
		t.Errorf("expected 3 connection endpoints, got %d", g.ConnectionCount())
	}

	in := g.IncomingConnections("Right")
	if len(in) != 2 {
		t.Errorf("expected 2 incoming connections for Right, got %d", len(in))
	}
}
