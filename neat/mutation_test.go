package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// assertAcyclic checks the full connection graph, disabled edges included.
func assertAcyclic(t *testing.T, g *Genome) {
	t.Helper()
	dg := simple.NewDirectedGraph()
	for _, c := range g.Connections {
		require.NotEqual(t, c.From, c.To, "self loop on node %d", c.From)
		dg.SetEdge(dg.NewEdge(simple.Node(c.From), simple.Node(c.To)))
	}
	_, err := topo.Sort(dg)
	require.NoError(t, err)
}

func TestMutationsKeepGenomeAcyclic(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := newTestRand(seed)
		g, next := NewGenome(3, 2, rng)
		ids := NewInnovationCounter(next)

		for step := 0; step < 200; step++ {
			if rng.Intn(2) == 0 {
				g.MutateAddConnection(ids, 40, rng)
			} else {
				g.MutateAddNode(ids, rng)
			}
		}
		assertAcyclic(t, g)
		require.NoError(t, g.Validate())
	}
}

func TestMutateKeepsGenomeAcyclic(t *testing.T) {
	rng := newTestRand(7)
	cfg := DefaultConfig().Mutation
	cfg.ConnAddProbLarge, cfg.NodeAddProbLarge = 1, 0.5
	g, next := NewGenome(4, 2, rng)
	ids := NewInnovationCounter(next)
	for i := 0; i < 200; i++ {
		g.Mutate(&cfg, ids, false, rng)
	}
	assertAcyclic(t, g)
}

func TestMutateAddNode(t *testing.T) {
	rng := newTestRand(8)
	g, next := NewGenome(1, 1, rng)
	ids := NewInnovationCounter(next)
	before := g.Copy()

	g.MutateAddNode(ids, rng)
	require.Len(t, g.Connections, 4)
	assert.Equal(t, next+2, ids.Peek())

	var split Connection
	for id, c := range before.Connections {
		if g.Connections[id].Disabled {
			split = c
		}
	}
	in := g.Connections[next]
	out := g.Connections[next+1]
	assert.Equal(t, Connection{From: split.From, To: 3, Weight: 1.0}, in)
	assert.Equal(t, Connection{From: 3, To: split.To, Weight: split.Weight}, out)
	assert.True(t, g.IsHidden(3))
}

func TestMutateAddNodeFreshID(t *testing.T) {
	rng := newTestRand(9)
	g, next := NewGenome(2, 2, rng)
	ids := NewInnovationCounter(next)
	for i := 0; i < 5; i++ {
		want := g.MaxNode() + 1
		g.MutateAddNode(ids, rng)
		assert.Equal(t, want, g.MaxNode())
	}
}

func TestMutateAddConnectionGivesUp(t *testing.T) {
	// Every reachable (from, to) pair of a 1x1 genome is already connected.
	rng := newTestRand(10)
	g, next := NewGenome(1, 1, rng)
	ids := NewInnovationCounter(next)

	assert.False(t, g.MutateAddConnection(ids, 40, rng))
	assert.Len(t, g.Connections, 2)
	assert.Equal(t, next, ids.Peek())
}

func TestMutateAddConnectionZeroWeight(t *testing.T) {
	rng := newTestRand(11)
	g, next := NewGenome(2, 1, rng)
	ids := NewInnovationCounter(next)
	g.MutateAddNode(ids, rng)
	g.MutateAddNode(ids, rng)

	before := ids.Peek()
	added := false
	for i := 0; i < 100 && !added; i++ {
		added = g.MutateAddConnection(ids, 40, rng)
	}
	require.True(t, added)
	c := g.Connections[before]
	assert.Equal(t, 0.0, c.Weight)
	assert.False(t, c.Disabled)
	assertAcyclic(t, g)
}

func TestMutatePerturbsWeights(t *testing.T) {
	rng := newTestRand(12)
	cfg := DefaultConfig().Mutation
	cfg.ConnAddProbSmall, cfg.NodeAddProbSmall = 0, 0
	g, next := NewGenome(3, 1, rng)
	before := g.Copy()

	g.Mutate(&cfg, NewInnovationCounter(next), true, rng)
	require.Len(t, g.Connections, len(before.Connections))
	for id, c := range g.Connections {
		assert.NotEqual(t, before.Connections[id].Weight, c.Weight)
		assert.InDelta(t, before.Connections[id].Weight, c.Weight, 0.2)
	}
}

func TestReaches(t *testing.T) {
	backward := map[int][]int{
		3: {0, 1},
		4: {3},
		2: {4},
	}
	assert.True(t, reaches(backward, 2, 0))
	assert.True(t, reaches(backward, 4, 1))
	assert.False(t, reaches(backward, 3, 4))
	assert.False(t, reaches(backward, 0, 2))
}
