package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelFitnessMatchesSequential(t *testing.T) {
	rng := newTestRand(1)
	genomes := make([]*Genome, 64)
	for i := range genomes {
		genomes[i], _ = NewGenome(2, 1, rng)
	}

	for _, workers := range []int{0, 1, 4, 100} {
		got, err := ParallelFitness(workers, xorFitness)(genomes)
		require.NoError(t, err)
		require.Len(t, got, len(genomes))
		for i, g := range genomes {
			assert.Equal(t, xorFitness(g), got[i])
		}
	}
}

func TestParallelFitnessEmpty(t *testing.T) {
	got, err := ParallelFitness(4, xorFitness)(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
