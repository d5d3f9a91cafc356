package neat

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeciesReport describes how one species was treated by NextGeneration.
type SpeciesReport struct {
	OriginalSize int     // Members before truncation.
	Survivors    int     // Members kept after truncation.
	Small        bool    // Whether offspring used the small mutation regime.
	Fitness      float64 // Sum of the survivors' adjusted fitness.
	Multiplier   float64 // Z-score bucket multiplier.
	Offspring    int     // Number of offspring produced.
}

// Report summarises a reproduction step.
type Report struct {
	Species            []SpeciesReport
	MeanSpeciesFitness float64
	StdevSpecies       float64
	Clones             int
	Crossovers         int
	Mutations          int
}

// Reproduction turns a speciated, evaluated population into the next generation.
type Reproduction struct {
	Config   *ReproductionConfig
	Mutation *MutationConfig
	Rand     *rand.Rand
}

// NewReproduction creates a reproduction scheduler drawing all randomness from rng.
func NewReproduction(config *Config, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Config:   &config.Reproduction,
		Mutation: &config.Mutation,
		Rand:     rng,
	}
}

// NextGeneration produces the next population from species and the fitness of
// every genome (indexed by Member.Index). New genes draw their innovation ids
// from ids. The input species are left untouched so they can serve as the
// previous generation's representatives.
//
// Each species keeps its fittest len/2+1 members. Fitness is shared within the
// species, species fitness is bucketed by z-score into an offspring multiplier,
// and the population slots are divided in proportion to the weighted species
// fitness with the fractional part rounded up by a biased coin flip. Offspring
// are clones or mutated crossovers of random survivors. The result is shuffled.
func (r *Reproduction) NextGeneration(species []*Species, fitnesses []float64, ids *InnovationCounter) ([]*Genome, *Report, error) {
	pools := make([]*Species, 0, len(species))
	for _, s := range species {
		if s.Len() > 0 {
			pools = append(pools, &Species{Members: slices.Clone(s.Members)})
		}
	}
	species = pools
	if len(species) == 0 {
		return nil, nil, ErrEmptyPopulation
	}

	total := 0
	originalSizes := make([]int, len(species))
	for i, s := range species {
		for _, m := range s.Members {
			if m.Index < 0 || m.Index >= len(fitnesses) {
				return nil, nil, fmt.Errorf("%w: member index %d, %d fitness values", ErrFitnessMismatch, m.Index, len(fitnesses))
			}
		}
		originalSizes[i] = s.Len()
		total += s.Len()
	}
	meanSize := float64(total) / float64(len(species))

	// Truncation: keep the top half plus one of every species.
	for _, s := range species {
		sort.SliceStable(s.Members, func(a, b int) bool {
			return fitnesses[s.Members[a].Index] > fitnesses[s.Members[b].Index]
		})
		s.Members = s.Members[:s.Len()/2+1]
	}

	// Fitness sharing: the species fitness is the sum of its members' fitness
	// divided by the species size.
	speciesFitness := make([]float64, len(species))
	for i, s := range species {
		sum := 0.0
		for _, m := range s.Members {
			sum += fitnesses[m.Index]
		}
		speciesFitness[i] = sum / float64(s.Len())
	}

	mean, stdev := stat.PopMeanStdDev(speciesFitness, nil)
	if math.IsNaN(stdev) {
		stdev = 0
	}
	weighted := make([]float64, len(species))
	report := &Report{
		Species:            make([]SpeciesReport, len(species)),
		MeanSpeciesFitness: mean,
		StdevSpecies:       stdev,
	}
	for i, f := range speciesFitness {
		mult := r.multiplier(f, mean, stdev)
		weighted[i] = math.Max(0, f*mult)
		report.Species[i] = SpeciesReport{
			OriginalSize: originalSizes[i],
			Survivors:    species[i].Len(),
			Small:        float64(originalSizes[i]) < meanSize,
			Fitness:      f,
			Multiplier:   mult,
		}
	}

	weightSum := floats.Sum(weighted)
	if weightSum <= 0 || math.IsNaN(weightSum) || math.IsInf(weightSum, 0) {
		// No usable fitness signal; share the slots evenly.
		for i := range weighted {
			weighted[i] = 1
		}
		weightSum = float64(len(weighted))
	}

	next := make([]*Genome, 0, total+len(species))
	for i, s := range species {
		count := r.offspringCount(weighted[i]/weightSum*float64(total))
		report.Species[i].Offspring = count

		for j := 0; j < count; j++ {
			next = append(next, r.offspring(s, fitnesses, ids, report.Species[i].Small, report))
		}
	}

	r.Rand.Shuffle(len(next), func(a, b int) { next[a], next[b] = next[b], next[a] })
	return next, report, nil
}

// multiplier buckets a species fitness by its distance from the mean. With
// zero deviation every species lands in the above-mean bucket.
func (r *Reproduction) multiplier(f, mean, stdev float64) float64 {
	switch {
	case f < mean-stdev:
		return r.Config.MultiplierFarBelow
	case f < mean:
		return r.Config.MultiplierBelow
	case f < mean+stdev:
		return r.Config.MultiplierAbove
	default:
		return r.Config.MultiplierFarAbove
	}
}

// offspringCount rounds share down and adds one with probability equal to the
// fractional part.
func (r *Reproduction) offspringCount(share float64) int {
	whole, frac := math.Modf(share)
	n := int(whole)
	if r.Rand.Float64() < frac {
		n++
	}
	return n
}

func (r *Reproduction) offspring(s *Species, fitnesses []float64, ids *InnovationCounter, small bool, report *Report) *Genome {
	p1 := s.Members[r.Rand.Intn(s.Len())]
	p2 := s.Members[r.Rand.Intn(s.Len())]

	if r.Rand.Float64() < r.Config.CloneProb {
		report.Clones++
		return p1.Genome.Copy()
	}

	child := p1.Genome.MergeWith(p2.Genome, CompareFitness(fitnesses[p1.Index], fitnesses[p2.Index]), r.Rand)
	report.Crossovers++
	if r.Rand.Float64() < r.Config.MutateProb {
		child.Mutate(r.Mutation, ids, small, r.Rand)
		report.Mutations++
	}
	return child
}
