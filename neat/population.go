package neat

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/baldhumanity/neat-racer/telemetry"
)

// FitnessFunc is the type for the function provided by the user to evaluate genome fitness.
// It returns one fitness value per genome, in population order.
type FitnessFunc func(genomes []*Genome) ([]float64, error)

// Population holds the state of the NEAT evolutionary process.
type Population struct {
	Config      *Config
	Genomes     []*Genome          // Current generation
	Species     []*Species         // Species of the previous classification, used for representative continuity
	Innovations *InnovationCounter // Shared source of innovation ids
	Generation  int
	Best        *Genome // Best genome found so far
	BestFitness float64
	RunID       string // Label attached to telemetry records

	Rand         *rand.Rand
	Logger       *slog.Logger
	Reproduction *Reproduction
}

// NewPopulation creates a new Population with Config.Neat.PopSize freshly
// initialised genomes.
func NewPopulation(config *Config, logger *slog.Logger) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	p := newPopulation(config, logger)

	var next uint64
	p.Genomes = make([]*Genome, config.Neat.PopSize)
	for i := range p.Genomes {
		p.Genomes[i], next = NewGenome(config.Genome.NumInputs, config.Genome.NumOutputs, p.Rand)
	}
	p.Innovations = NewInnovationCounter(next)
	return p, nil
}

// RestorePopulation resumes a run from a snapshot. The snapshot is validated
// against the config before use.
func RestorePopulation(config *Config, snap *Snapshot, logger *slog.Logger) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := snap.Validate(&config.Genome); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	p := newPopulation(config, logger)
	p.Genomes = snap.Genomes
	p.Innovations = NewInnovationCounter(snap.NextInnovation)
	p.Generation = snap.Generation
	return p, nil
}

func newPopulation(config *Config, logger *slog.Logger) *Population {
	seed := config.Neat.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Population{
		Config:       config,
		Rand:         rng,
		Logger:       logger,
		Reproduction: NewReproduction(config, rng),
		BestFitness:  math.Inf(-1),
	}
}

// Snapshot returns the persistable state of the population.
func (p *Population) Snapshot() *Snapshot {
	return &Snapshot{
		Genomes:        p.Genomes,
		NextInnovation: p.Innovations.Peek(),
		Generation:     p.Generation,
	}
}

// RunGeneration executes a single generation: evaluate, speciate, reproduce.
// On return Genomes holds the next generation.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (telemetry.GenerationStats, error) {
	p.Generation++
	start := time.Now()

	if len(p.Genomes) == 0 {
		return telemetry.GenerationStats{}, fmt.Errorf("generation %d: %w", p.Generation, ErrEmptyPopulation)
	}

	// 1. Evaluate Fitness
	fitnesses, err := fitnessFunc(p.Genomes)
	if err != nil {
		return telemetry.GenerationStats{}, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}
	if len(fitnesses) != len(p.Genomes) {
		return telemetry.GenerationStats{}, fmt.Errorf("generation %d: %w: %d values for %d genomes",
			p.Generation, ErrFitnessMismatch, len(fitnesses), len(p.Genomes))
	}

	stats := p.evaluatedStats(fitnesses)

	// 2. Speciate
	species := ClassSpecies(p.Genomes, p.Species, &p.Config.SpeciesSet)
	stats.SpeciesCount = len(species)

	// 3. Reproduce
	next, report, err := p.Reproduction.NextGeneration(species, fitnesses, p.Innovations)
	if err != nil {
		return stats, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}
	if len(next) == 0 {
		return stats, fmt.Errorf("generation %d: %w after reproduction", p.Generation, ErrEmptyPopulation)
	}

	for i, sr := range report.Species {
		p.Logger.Debug("species",
			"generation", p.Generation,
			"index", i,
			"small", sr.Small,
			"size", sr.OriginalSize,
			"survivors", sr.Survivors,
			"fitness", sr.Fitness,
			"multiplier", sr.Multiplier,
			"offspring", sr.Offspring,
		)
	}

	p.Species = species
	p.Genomes = next

	stats.Clones = report.Clones
	stats.Crossovers = report.Crossovers
	stats.Mutations = report.Mutations
	stats.NextInnovation = p.Innovations.Peek()
	stats.DurationMs = float64(time.Since(start).Microseconds()) / 1000

	p.Logger.Info("generation complete",
		"stats", stats,
		"species_fitness_std", report.StdevSpecies,
	)
	return stats, nil
}

// evaluatedStats summarises the just evaluated population and updates Best.
func (p *Population) evaluatedStats(fitnesses []float64) telemetry.GenerationStats {
	stats := telemetry.GenerationStats{
		RunID:          p.RunID,
		Generation:     p.Generation,
		PopulationSize: len(p.Genomes),
	}
	stats.MeanFitness, stats.StdevFitness, stats.MinFitness, stats.MaxFitness = telemetry.FitnessSummary(fitnesses)

	conns := 0
	for i, g := range p.Genomes {
		conns += len(g.Connections)
		stats.MaxNodes = max(stats.MaxNodes, g.MaxNode()+1)
		if fitnesses[i] > p.BestFitness {
			p.BestFitness = fitnesses[i]
			p.Best = g.Copy()
			p.Logger.Info("new best genome", "generation", p.Generation, "fitness", p.BestFitness, "genome", p.Best.String())
		}
	}
	stats.MeanConnections = float64(conns) / float64(len(p.Genomes))
	stats.BestEver = p.BestFitness
	return stats
}
