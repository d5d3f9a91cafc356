package neat

import "github.com/sourcegraph/conc/pool"

// ParallelFitness returns a FitnessFunc that scores genomes concurrently on at
// most workers goroutines. score must only read the genome; Evaluate is safe
// to call from several goroutines at once.
func ParallelFitness(workers int, score func(*Genome) float64) FitnessFunc {
	return func(genomes []*Genome) ([]float64, error) {
		fitnesses := make([]float64, len(genomes))
		p := pool.New().WithMaxGoroutines(max(1, workers))
		for i, g := range genomes {
			p.Go(func() {
				fitnesses[i] = score(g)
			})
		}
		p.Wait()
		return fitnesses, nil
	}
}
