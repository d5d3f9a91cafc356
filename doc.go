// Package neat provides the neuroevolution core used to train feed-forward
// racing controllers with a reduced variant of NEAT (NeuroEvolution of
// Augmenting Topologies).
//
// A genome is a set of weighted connections keyed by innovation id between
// implicit node ids: inputs, a constant bias node, outputs and hidden nodes.
// Genomes grow by adding connections and by splitting connections with new
// hidden nodes, and the network always stays acyclic. Each generation the
// population is split into species by a compatibility distance, every species
// keeps its fittest half, and the population slots are shared between species
// in proportion to their z-score weighted fitness.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, slog.Default())
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	fitness := neat.ParallelFitness(runtime.NumCPU(), func(g *neat.Genome) float64 {
//		out := g.Evaluate(sensors)
//		return score(out)
//	})
//	for i := 0; i < 100; i++ {
//		stats, err := pop.RunGeneration(fitness)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		fmt.Println(stats.Generation, stats.MaxFitness)
//	}
//
// Snapshots of a run can be persisted with the storage package and resumed
// with RestorePopulation. Per-generation statistics are written as CSV by the
// telemetry package.
package neat
