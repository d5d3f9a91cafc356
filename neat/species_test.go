package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformGenome is a 2x1 genome with every weight set to w.
func uniformGenome(w float64) *Genome {
	g, _ := NewGenome(2, 1, newTestRand(1))
	for id, c := range g.Connections {
		c.Weight = w
		g.Connections[id] = c
	}
	return g
}

func speciesIndexOf(species []*Species, index int) int {
	for n, s := range species {
		for _, m := range s.Members {
			if m.Index == index {
				return n
			}
		}
	}
	return -1
}

func TestDistanceIdentity(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	a, b := divergedParents(t, 1)
	assert.Equal(t, 0.0, Distance(a, a, &cfg))
	assert.Equal(t, 0.0, Distance(b, b.Copy(), &cfg))
}

func TestDistanceSymmetric(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	for seed := int64(1); seed <= 10; seed++ {
		a, b := divergedParents(t, seed)
		assert.Equal(t, Distance(a, b, &cfg), Distance(b, a, &cfg))
	}
}

func TestDistanceTerms(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	a := &Genome{NumInputs: 1, NumOutputs: 1, Connections: map[uint64]Connection{
		0: {From: 0, To: 2, Weight: 1.0},
		1: {From: 1, To: 2, Weight: 0.5},
		2: {From: 0, To: 3, Weight: 1.0},
	}}
	b := &Genome{NumInputs: 1, NumOutputs: 1, Connections: map[uint64]Connection{
		0: {From: 0, To: 2, Weight: -1.0},
		1: {From: 1, To: 2, Weight: 0.5},
		5: {From: 1, To: 3, Weight: 0.0},
		6: {From: 0, To: 4, Weight: 0.0},
	}}
	// Three disjoint genes, weight difference 2 on the shared ids.
	assert.InDelta(t, 3*1.0+2*0.2, Distance(a, b, &cfg), 1e-12)
}

func TestClassSpeciesIdenticalGenomesShareSpecies(t *testing.T) {
	for _, match := range []string{SpeciesMatchLast, SpeciesMatchFirst} {
		cfg := DefaultConfig().SpeciesSet
		cfg.SpeciesMatch = match

		g := uniformGenome(0.5)
		far := uniformGenome(40)
		population := []*Genome{g, far, g.Copy(), far.Copy()}

		species := ClassSpecies(population, nil, &cfg)
		require.Len(t, species, 2)
		assert.Equal(t, speciesIndexOf(species, 0), speciesIndexOf(species, 2))
		assert.Equal(t, speciesIndexOf(species, 1), speciesIndexOf(species, 3))
	}
}

func TestClassSpeciesFirstMatchIsStableForCopies(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	cfg.SpeciesMatch = SpeciesMatchFirst
	cfg.CompatibilityThreshold = 1.0

	rng := newTestRand(3)
	var population []*Genome
	for i := 0; i < 30; i++ {
		g, _ := NewGenome(2, 1, rng)
		population = append(population, g)
	}
	for i := 0; i < 30; i++ {
		population = append(population, population[i].Copy())
	}

	species := ClassSpecies(population, nil, &cfg)
	for i := 0; i < 30; i++ {
		assert.Equal(t, speciesIndexOf(species, i), speciesIndexOf(species, i+30))
	}
}

func TestClassSpeciesMatchRule(t *testing.T) {
	previous := []*Species{
		{Members: []Member{{Genome: uniformGenome(0.0)}}},
		{Members: []Member{{Genome: uniformGenome(0.1)}}},
	}
	population := []*Genome{uniformGenome(0.05)}

	cfg := DefaultConfig().SpeciesSet
	species := ClassSpecies(population, previous, &cfg)
	require.Len(t, species, 1)
	assert.Same(t, population[0], species[0].Representative())

	// Previous species keep their slots ahead of newly founded ones.
	population = []*Genome{uniformGenome(40), uniformGenome(0.05)}
	species = ClassSpecies(population, previous, &cfg)
	require.Len(t, species, 2)
	assert.Equal(t, 1, species[0].Members[0].Index)
	assert.Equal(t, 0, species[1].Members[0].Index)

	cfg.SpeciesMatch = SpeciesMatchFirst
	species = ClassSpecies([]*Genome{uniformGenome(0.05), uniformGenome(0.1)}, previous, &cfg)
	require.Len(t, species, 1)
	assert.Len(t, species[0].Members, 2)
}

func TestClassSpeciesPreviousRepresentatives(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	old := uniformGenome(1.0)
	previous := []*Species{{Members: []Member{{Genome: old, Index: 7}}}}

	// Both genomes are compatible with the old representative but not with
	// each other, so they only share a species through it.
	a, b := uniformGenome(-2.5), uniformGenome(4.5)
	require.GreaterOrEqual(t, Distance(a, b, &cfg), cfg.CompatibilityThreshold)

	species := ClassSpecies([]*Genome{a, b}, previous, &cfg)
	require.Len(t, species, 1)
	assert.Len(t, species[0].Members, 2)
	assert.Same(t, a, species[0].Representative())
	assert.Equal(t, 7, previous[0].Members[0].Index)
}

func TestClassSpeciesDropsEmpty(t *testing.T) {
	cfg := DefaultConfig().SpeciesSet
	previous := []*Species{
		{Members: []Member{{Genome: uniformGenome(40)}}},
		{},
	}
	species := ClassSpecies([]*Genome{uniformGenome(0)}, previous, &cfg)
	require.Len(t, species, 1)
	for _, s := range species {
		assert.Positive(t, s.Len())
	}
}
