package neat

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
)

// ActivationGain scales the summed input of every non-input node before the
// tanh squashing function is applied.
const ActivationGain = 5.0

// Connection is a single weighted edge of a controller network.
type Connection struct {
	From     int     // Source node id.
	To       int     // Target node id.
	Weight   float64 // Multiplier applied to the source node's output.
	Disabled bool    // Disabled connections are kept for alignment but do not carry signal.
}

// Genome is a feed-forward controller network encoded as a set of connections
// keyed by innovation id.
//
// Node ids are implicit: 0..NumInputs-1 are inputs, NumInputs is the bias node
// (constant 1.0), the next NumOutputs ids are outputs and anything above is a
// hidden node created by mutation.
type Genome struct {
	NumInputs   int
	NumOutputs  int
	Connections map[uint64]Connection // Map innovation id -> connection
}

// NewGenome creates a fully connected single layer genome: every input and the
// bias node is connected to every output with a standard normal weight.
// Innovation ids are assigned structurally (0, 1, 2, ...) so that independently
// created genomes agree on them. The returned value is the next free innovation id.
func NewGenome(numInputs, numOutputs int, rng *rand.Rand) (*Genome, uint64) {
	g := &Genome{
		NumInputs:   numInputs,
		NumOutputs:  numOutputs,
		Connections: make(map[uint64]Connection, (numInputs+1)*numOutputs),
	}
	var id uint64
	for o := 0; o < numOutputs; o++ {
		for i := 0; i <= numInputs; i++ {
			g.Connections[id] = Connection{
				From:   i,
				To:     g.OutputNode(o),
				Weight: rng.NormFloat64(),
			}
			id++
		}
	}
	return g, id
}

// BiasNode returns the id of the bias node.
func (g *Genome) BiasNode() int {
	return g.NumInputs
}

// OutputNode returns the node id of the i-th output.
func (g *Genome) OutputNode(i int) int {
	return g.NumInputs + 1 + i
}

// IsHidden reports whether node is a hidden node.
func (g *Genome) IsHidden(node int) bool {
	return node > g.NumInputs+g.NumOutputs
}

// Copy returns a deep copy of the genome.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		NumInputs:   g.NumInputs,
		NumOutputs:  g.NumOutputs,
		Connections: make(map[uint64]Connection, len(g.Connections)),
	}
	for id, conn := range g.Connections {
		c.Connections[id] = conn
	}
	return c
}

// InnovationIDs returns the genome's innovation ids in ascending order.
func (g *Genome) InnovationIDs() []uint64 {
	ids := make([]uint64, 0, len(g.Connections))
	for id := range g.Connections {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// MaxInnovation returns the largest innovation id in the genome, or 0 if it has none.
func (g *Genome) MaxInnovation() uint64 {
	var m uint64
	for id := range g.Connections {
		if id > m {
			m = id
		}
	}
	return m
}

// MaxNode returns the largest node id referenced by any connection. Input,
// bias and output ids are always counted even when unconnected.
func (g *Genome) MaxNode() int {
	m := g.NumInputs + g.NumOutputs
	for _, c := range g.Connections {
		m = max(m, c.From, c.To)
	}
	return m
}

// HasEdge reports whether a connection from -> to exists, disabled or not.
func (g *Genome) HasEdge(from, to int) bool {
	for _, c := range g.Connections {
		if c.From == from && c.To == to {
			return true
		}
	}
	return false
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, c := range g.Connections {
		if !c.Disabled {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(in: %d, out: %d, connections: %d, enabled: %d, nodes: %d)",
		g.NumInputs, g.NumOutputs, len(g.Connections), enabled, g.MaxNode()+1)
}

// --------------------------- Evaluation ---------------------------

// Evaluate computes the network outputs for the given inputs.
// It panics if len(inputs) != NumInputs.
func (g *Genome) Evaluate(inputs []float64) []float64 {
	if len(inputs) != g.NumInputs {
		panic(fmt.Sprintf("neat: %v: got %d inputs, genome has %d", ErrInputSize, len(inputs), g.NumInputs))
	}

	e := evaluator{
		genome:   g,
		inputs:   inputs,
		incoming: g.incoming(),
		memo:     make(map[int]float64),
	}
	outputs := make([]float64, g.NumOutputs)
	for i := range outputs {
		outputs[i] = e.node(g.OutputNode(i))
	}
	return outputs
}

// incoming maps every node to its enabled incoming connections, ordered by
// innovation id so the summation order is deterministic.
func (g *Genome) incoming() map[int][]Connection {
	in := make(map[int][]Connection)
	for _, id := range g.InnovationIDs() {
		c := g.Connections[id]
		if c.Disabled {
			continue
		}
		in[c.To] = append(in[c.To], c)
	}
	return in
}

type evaluator struct {
	genome   *Genome
	inputs   []float64
	incoming map[int][]Connection
	memo     map[int]float64
}

func (e *evaluator) node(n int) float64 {
	if n < e.genome.NumInputs {
		return e.inputs[n]
	}
	if n == e.genome.NumInputs {
		return 1.0
	}
	if v, ok := e.memo[n]; ok {
		return v
	}
	sum := 0.0
	for _, c := range e.incoming[n] {
		sum += c.Weight * e.node(c.From)
	}
	v := Activate(sum)
	e.memo[n] = v
	return v
}

// Activate is the node squashing function: tanh(ActivationGain * x).
func Activate(x float64) float64 {
	return math.Tanh(ActivationGain * x)
}

// --------------------------- InnovationCounter ---------------------------

// InnovationCounter hands out globally unique innovation ids. It is passed
// explicitly into every operation that creates genes. Next is safe for
// concurrent use.
type InnovationCounter struct {
	next atomic.Uint64
}

// NewInnovationCounter returns a counter whose next id is next.
func NewInnovationCounter(next uint64) *InnovationCounter {
	c := &InnovationCounter{}
	c.next.Store(next)
	return c
}

// Next returns a fresh innovation id.
func (c *InnovationCounter) Next() uint64 {
	return c.next.Add(1) - 1
}

// Peek returns the id that the next call to Next will return.
func (c *InnovationCounter) Peek() uint64 {
	return c.next.Load()
}

// Observe advances the counter past id if needed.
func (c *InnovationCounter) Observe(id uint64) {
	for {
		cur := c.next.Load()
		if cur > id {
			return
		}
		if c.next.CompareAndSwap(cur, id+1) {
			return
		}
	}
}
