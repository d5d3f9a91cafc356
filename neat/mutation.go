package neat

import "math/rand"

// MutationRates holds the parameters of one mutation regime.
type MutationRates struct {
	WeightStdev float64 // Standard deviation of the additive weight perturbation.
	ConnAddProb float64 // Probability of attempting an add-connection mutation.
	NodeAddProb float64 // Probability of an add-node mutation.
}

// Rates returns the small or large mutation regime from the config.
func (mc *MutationConfig) Rates(small bool) MutationRates {
	if small {
		return MutationRates{
			WeightStdev: mc.WeightStdevSmall,
			ConnAddProb: mc.ConnAddProbSmall,
			NodeAddProb: mc.NodeAddProbSmall,
		}
	}
	return MutationRates{
		WeightStdev: mc.WeightStdevLarge,
		ConnAddProb: mc.ConnAddProbLarge,
		NodeAddProb: mc.NodeAddProbLarge,
	}
}

// Mutate applies structural and weight mutations to the genome in place.
// Small species use the gentler regime.
func (g *Genome) Mutate(cfg *MutationConfig, ids *InnovationCounter, small bool, rng *rand.Rand) {
	rates := cfg.Rates(small)

	if rng.Float64() < rates.ConnAddProb {
		g.MutateAddConnection(ids, cfg.ConnAddAttempts, rng)
	}
	if rng.Float64() < rates.NodeAddProb {
		g.MutateAddNode(ids, rng)
	}

	// Perturb every weight, including the ones just created.
	for _, id := range g.InnovationIDs() {
		c := g.Connections[id]
		c.Weight += rng.NormFloat64() * rates.WeightStdev
		g.Connections[id] = c
	}
}

// MutateAddNode splits a random connection: the connection is disabled and a
// new hidden node is inserted with an incoming edge of weight 1.0 and an
// outgoing edge carrying the original weight.
func (g *Genome) MutateAddNode(ids *InnovationCounter, rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}

	keys := g.InnovationIDs()
	splitID := keys[rng.Intn(len(keys))]
	split := g.Connections[splitID]
	split.Disabled = true
	g.Connections[splitID] = split

	node := g.MaxNode() + 1
	g.Connections[ids.Next()] = Connection{From: split.From, To: node, Weight: 1.0}
	g.Connections[ids.Next()] = Connection{From: node, To: split.To, Weight: split.Weight}
}

// MutateAddConnection tries up to attempts times to add a zero weight
// connection between two nodes already present in the genome. Endpoints that
// are identical, already connected or that would close a cycle are rejected.
// It reports whether a connection was added.
func (g *Genome) MutateAddConnection(ids *InnovationCounter, attempts int, rng *rand.Rand) bool {
	if len(g.Connections) == 0 {
		return false
	}

	keys := g.InnovationIDs()
	conns := make([]Connection, len(keys))
	for i, id := range keys {
		conns[i] = g.Connections[id]
	}
	backward := make(map[int][]int)
	for _, c := range conns {
		backward[c.To] = append(backward[c.To], c.From)
	}

	for i := 0; i < attempts; i++ {
		from := conns[rng.Intn(len(conns))].From
		to := conns[rng.Intn(len(conns))].To

		if from == to {
			continue
		}
		if g.HasEdge(from, to) {
			continue
		}
		if reaches(backward, from, to) {
			continue
		}

		g.Connections[ids.Next()] = Connection{From: from, To: to, Weight: 0.0}
		return true
	}
	return false
}

// reaches reports whether target is an ancestor of start, i.e. whether an edge
// start -> target would close a cycle. backward maps a node to its sources.
func reaches(backward map[int][]int, start, target int) bool {
	visited := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		for _, src := range backward[cur] {
			if !visited[src] {
				visited[src] = true
				stack = append(stack, src)
			}
		}
	}
	return false
}
