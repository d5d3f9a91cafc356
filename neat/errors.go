package neat

import "errors"

var (
	// ErrInputSize is reported when an input vector does not match a genome's input count.
	ErrInputSize = errors.New("input size mismatch")
	// ErrFitnessMismatch is returned when fitness values do not line up with the population.
	ErrFitnessMismatch = errors.New("fitness values do not match population")
	// ErrCycle is returned when a genome's connection graph is not acyclic.
	ErrCycle = errors.New("connection graph contains a cycle")
	// ErrEmptyPopulation is returned when an operation needs at least one genome.
	ErrEmptyPopulation = errors.New("population is empty")
)
