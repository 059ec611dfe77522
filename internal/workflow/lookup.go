package workflow

// IncomingConnection describes one inbound edge of a node: the source node,
// the output slot it originates from, the ordinal of the wire within that
// slot, and the input index on the target side.
type IncomingConnection struct {
	SourceNode  string
	OutputSlot  string
	SlotOrdinal int
	InputIndex  int
}

// NodeByName returns the node with the given name, or false if absent.
func (g *Graph) NodeByName(name string) (*Node, bool) {
	i, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return &g.nodes[i], true
}

// NodesByType returns all nodes carrying the given type tag, in document order.
func (g *Graph) NodesByType(nodeType string) []Node {
	var out []Node
	for _, n := range g.nodes {
		if n.Type == nodeType {
			out = append(out, n)
		}
	}
	return out
}

// NodeConnections returns the outbound slot map for a node. Nodes with no
// outgoing connections get an empty map, never nil lookups downstream.
func (g *Graph) NodeConnections(name string) NodeOutputs {
	if outputs, ok := g.conns[name]; ok {
		return outputs
	}
	return NodeOutputs{}
}

// IncomingConnections scans the full connection map and returns every edge
// whose target is the given node. The scan is performed on every call; results
// are not memoized.
func (g *Graph) IncomingConnections(target string) []IncomingConnection {
	var in []IncomingConnection
	for source, outputs := range g.conns {
		for slot, wires := range outputs {
			for ordinal, targets := range wires {
				for _, t := range targets {
					if t.Node == target {
						in = append(in, IncomingConnection{
							SourceNode:  source,
							OutputSlot:  slot,
							SlotOrdinal: ordinal,
							InputIndex:  t.Index,
						})
					}
				}
			}
		}
	}
	return in
}
