package nn

import (
	"fmt"
	"sort"

	"github.com/baldhumanity/neat-racer/neat"
)

// input is one enabled incoming connection of a node.
type input struct {
	From   int
	Weight float64
}

// neuralNode represents a non-input node during network activation.
type neuralNode struct {
	Key    int
	Inputs []input // Ordered by innovation id
}

// FeedForwardNetwork is a genome compiled for repeated activation: nodes are
// stored in topological order so one pass computes every output. Results are
// identical to neat.Genome.Evaluate.
type FeedForwardNetwork struct {
	NumInputs     int
	OutputKeys    []int        // Output node ids in output order
	NodeEvalOrder []neuralNode // Topologically sorted non-input nodes

	values []float64 // Scratch buffer indexed by node id
}

// CreateFeedForwardNetwork builds a runnable feed-forward network from a genome.
// It performs a topological sort to determine the activation order and fails
// with neat.ErrCycle if the genome is not acyclic.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	maxNode := g.MaxNode()

	// Gather enabled connections per target node, in innovation order.
	incoming := make(map[int][]input)
	graph := make(map[int][]int) // nodeKey -> list of outgoing node keys
	inDegree := make(map[int]int)
	nodeKeys := make(map[int]bool)
	for i := 0; i <= g.NumInputs; i++ {
		nodeKeys[i] = true
	}
	for i := 0; i < g.NumOutputs; i++ {
		nodeKeys[g.OutputNode(i)] = true
	}

	for _, id := range g.InnovationIDs() {
		c := g.Connections[id]
		if c.Disabled {
			continue
		}
		incoming[c.To] = append(incoming[c.To], input{From: c.From, Weight: c.Weight})
		graph[c.From] = append(graph[c.From], c.To)
		inDegree[c.To]++
		nodeKeys[c.From] = true
		nodeKeys[c.To] = true
	}

	allNodeKeys := make([]int, 0, len(nodeKeys))
	for nk := range nodeKeys {
		allNodeKeys = append(allNodeKeys, nk)
	}
	sort.Ints(allNodeKeys)

	// Kahn's algorithm.
	queue := []int{}
	for _, nk := range allNodeKeys {
		if inDegree[nk] == 0 {
			queue = append(queue, nk)
		}
	}

	evalOrder := []int{}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		evalOrder = append(evalOrder, u)

		neighbors := graph[u]
		sort.Ints(neighbors)
		for _, v := range neighbors {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	if len(evalOrder) != len(nodeKeys) {
		return nil, fmt.Errorf("%w: topological sort visited %d of %d nodes", neat.ErrCycle, len(evalOrder), len(nodeKeys))
	}

	order := make([]neuralNode, 0, len(evalOrder))
	for _, nk := range evalOrder {
		if nk <= g.NumInputs { // Inputs and bias are set directly.
			continue
		}
		order = append(order, neuralNode{Key: nk, Inputs: incoming[nk]})
	}

	outputs := make([]int, g.NumOutputs)
	for i := range outputs {
		outputs[i] = g.OutputNode(i)
	}

	return &FeedForwardNetwork{
		NumInputs:     g.NumInputs,
		OutputKeys:    outputs,
		NodeEvalOrder: order,
		values:        make([]float64, maxNode+1),
	}, nil
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input nodes. A network is not safe
// for concurrent use; compile one per goroutine.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.NumInputs {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", neat.ErrInputSize, len(inputs), net.NumInputs)
	}

	copy(net.values, inputs)
	net.values[net.NumInputs] = 1.0 // Bias

	for _, node := range net.NodeEvalOrder {
		sum := 0.0
		for _, in := range node.Inputs {
			sum += in.Weight * net.values[in.From]
		}
		net.values[node.Key] = neat.Activate(sum)
	}

	outputs := make([]float64, len(net.OutputKeys))
	for i, ok := range net.OutputKeys {
		outputs[i] = net.values[ok]
	}
	return outputs, nil
}
