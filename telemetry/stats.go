// Package telemetry records per-generation statistics of an evolutionary run.
package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one generation.
type GenerationStats struct {
	RunID      string `csv:"run_id"`
	Generation int    `csv:"generation"`

	PopulationSize int `csv:"population"`
	SpeciesCount   int `csv:"species"`

	// Fitness distribution of the evaluated population
	MeanFitness  float64 `csv:"fitness_mean"`
	StdevFitness float64 `csv:"fitness_std"`
	MinFitness   float64 `csv:"fitness_min"`
	MaxFitness   float64 `csv:"fitness_max"`
	BestEver     float64 `csv:"fitness_best_ever"`

	// Genome complexity
	MeanConnections float64 `csv:"connections_mean"`
	MaxNodes        int     `csv:"nodes_max"`
	NextInnovation  uint64  `csv:"next_innovation"`

	// Reproduction
	Clones     int `csv:"clones"`
	Crossovers int `csv:"crossovers"`
	Mutations  int `csv:"mutations"`

	DurationMs float64 `csv:"duration_ms"`
}

// FitnessSummary returns mean, population standard deviation, min and max of
// values. All are zero for an empty slice.
func FitnessSummary(values []float64) (mean, std, lo, hi float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std, floats.Min(values), floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.PopulationSize),
		slog.Int("species", s.SpeciesCount),
		slog.Float64("fitness_mean", s.MeanFitness),
		slog.Float64("fitness_std", s.StdevFitness),
		slog.Float64("fitness_max", s.MaxFitness),
		slog.Float64("fitness_best_ever", s.BestEver),
		slog.Float64("connections_mean", s.MeanConnections),
		slog.Int("nodes_max", s.MaxNodes),
		slog.Uint64("next_innovation", s.NextInnovation),
		slog.Float64("duration_ms", s.DurationMs),
	)
}
