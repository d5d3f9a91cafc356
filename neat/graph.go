package neat

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Validate checks that the genome is well formed: counts are positive, every
// connection endpoint is a legal node (inputs and bias are never targets) and
// the connection graph, disabled connections included, is acyclic.
func (g *Genome) Validate() error {
	if g.NumInputs <= 0 || g.NumOutputs <= 0 {
		return fmt.Errorf("invalid genome shape: %d inputs, %d outputs", g.NumInputs, g.NumOutputs)
	}

	dg := simple.NewDirectedGraph()
	for _, id := range g.InnovationIDs() {
		c := g.Connections[id]
		if c.From < 0 || c.To <= g.NumInputs {
			return fmt.Errorf("connection %d: invalid edge %d -> %d", id, c.From, c.To)
		}
		if c.From == c.To {
			return fmt.Errorf("%w: connection %d is a self loop on node %d", ErrCycle, id, c.From)
		}
		dg.SetEdge(dg.NewEdge(simple.Node(c.From), simple.Node(c.To)))
	}
	if _, err := topo.Sort(dg); err != nil {
		return fmt.Errorf("%w: %v", ErrCycle, err)
	}
	return nil
}

// --------------------------- DOT export ---------------------------

// MarshalDOT renders the connection graph in Graphviz DOT format, drawn
// bottom to top. Edges are labelled "<innovation id>: <weight>" and enabled
// edges are drawn bold.
func (g *Genome) MarshalDOT(name string) ([]byte, error) {
	mg := dotGraph{DirectedGraph: multi.NewDirectedGraph()}

	nodes := make(map[int]dotNode)
	node := func(id int) dotNode {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := dotNode{id: int64(id), kind: g.nodeKind(id)}
		nodes[id] = n
		mg.AddNode(n)
		return n
	}
	for i := 0; i <= g.NumInputs; i++ {
		node(i)
	}
	for i := 0; i < g.NumOutputs; i++ {
		node(g.OutputNode(i))
	}

	for _, id := range g.InnovationIDs() {
		c := g.Connections[id]
		mg.SetLine(dotLine{
			Line: multi.Line{F: node(c.From), T: node(c.To), UID: int64(id)},
			conn: c,
			id:   id,
		})
	}

	return dot.MarshalMulti(mg, name, "", "  ")
}

func (g *Genome) nodeKind(id int) string {
	switch {
	case id < g.NumInputs:
		return "input"
	case id == g.NumInputs:
		return "bias"
	case g.IsHidden(id):
		return "hidden"
	default:
		return "output"
	}
}

type dotGraph struct {
	*multi.DirectedGraph
}

// DOTAttributers implements dot.Attributers.
func (dotGraph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	return attrs{{Key: "rankdir", Value: "BT"}}, attrs{}, attrs{}
}

type attrs []encoding.Attribute

func (a attrs) Attributes() []encoding.Attribute { return a }

type dotNode struct {
	id   int64
	kind string
}

func (n dotNode) ID() int64 { return n.id }

func (n dotNode) Attributes() []encoding.Attribute {
	switch n.kind {
	case "input":
		return []encoding.Attribute{{Key: "shape", Value: "box"}}
	case "bias":
		return []encoding.Attribute{{Key: "shape", Value: "diamond"}}
	case "output":
		return []encoding.Attribute{{Key: "shape", Value: "doublecircle"}}
	}
	return nil
}

type dotLine struct {
	multi.Line
	conn Connection
	id   uint64
}

func (l dotLine) ReversedLine() graph.Line {
	return dotLine{Line: multi.Line{F: l.T, T: l.F, UID: l.UID}, conn: l.conn, id: l.id}
}

func (l dotLine) Attributes() []encoding.Attribute {
	a := []encoding.Attribute{{Key: "label", Value: fmt.Sprintf("%q", edgeLabel(l.id, l.conn.Weight))}}
	if !l.conn.Disabled {
		a = append(a, encoding.Attribute{Key: "style", Value: "bold"})
	}
	return a
}

func edgeLabel(id uint64, weight float64) string {
	return fmt.Sprintf("%d: %.1f", id, weight)
}
