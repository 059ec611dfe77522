package workflow

// Graph is the in-memory representation of a workflow: the node set plus the
// connection map. It is immutable after construction; all analyzer traversals
// are read-only, so a Graph may be shared across concurrent analyses.
type Graph struct {
	nodes  []Node
	byName map[string]int
	conns  map[string]NodeOutputs
}

// NewGraph builds a Graph from a parsed workflow document.
// Node input order is preserved. Duplicate node names are a SchemaError.
// Connection targets are NOT checked against the node set here; analyzers
// tolerate dangling references and CheckReferences reports them on demand.
func NewGraph(wf *Workflow) (*Graph, error) {
	g := &Graph{
		nodes:  wf.Nodes,
		byName: make(map[string]int, len(wf.Nodes)),
		conns:  wf.Connections,
	}
	if g.conns == nil {
		g.conns = map[string]NodeOutputs{}
	}

	for i, n := range wf.Nodes {
		if n.Name == "" {
			return nil, &SchemaError{Field: "nodes", Msg: "node with empty name"}
		}
		if _, exists := g.byName[n.Name]; exists {
			return nil, &SchemaError{Field: "nodes", Msg: "duplicate node name: " + n.Name}
		}
		g.byName[n.Name] = i
	}

	return g, nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// ConnectionCount returns the total number of edge endpoints: the sum of all
// targets across all output slots and wires of all nodes.
func (g *Graph) ConnectionCount() int {
	total := 0
	for _, outputs := range g.conns {
		for _, wires := range outputs {
			for _, targets := range wires {
				total += len(targets)
			}
		}
	}
	return total
}

// Nodes returns the node list in document order. The caller must not modify
// the returned slice.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Connections returns the full connection map. The caller must not modify it.
func (g *Graph) Connections() map[string]NodeOutputs {
	return g.conns
}

// CheckReferences scans every connection target and returns one
// DanglingReferenceError per target name that is absent from the node set.
// A nil slice means every reference resolves.
func (g *Graph) CheckReferences() []error {
	var errs []error
	for source, outputs := range g.conns {
		for slot, wires := range outputs {
			for _, targets := range wires {
				for _, t := range targets {
					if _, ok := g.byName[t.Node]; !ok {
						errs = append(errs, &DanglingReferenceError{
							Source: source,
							Slot:   slot,
							Target: t.Node,
						})
					}
				}
			}
		}
	}
	return errs
}
