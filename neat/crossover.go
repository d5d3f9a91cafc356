package neat

import (
	"math/rand"
	"slices"
)

// Fitter says which of two crossover parents has the higher fitness.
type Fitter int

const (
	// FitterEqual means both parents are equally fit.
	FitterEqual Fitter = iota
	// FitterSelf means the receiver of MergeWith is fitter.
	FitterSelf
	// FitterOther means the argument of MergeWith is fitter.
	FitterOther
)

// CompareFitness returns which of a and b is fitter. NaN compares as equal.
func CompareFitness(a, b float64) Fitter {
	switch {
	case a < b:
		return FitterOther
	case a > b:
		return FitterSelf
	default:
		return FitterEqual
	}
}

// MergeWith produces an offspring of g and other aligned by innovation id.
//
// Matching genes are copied from either parent with equal probability.
// Disjoint genes are inherited from the fitter parent only. When the parents
// are equally fit every disjoint gene is kept or dropped by its own coin flip.
// The offspring has the input and output counts of g.
//
// Hidden node ids are allocated per lineage, so disjoint genes of two parents
// may join into a cycle. Such genes are dropped, in innovation order, after
// all matching genes have been placed.
func (g *Genome) MergeWith(other *Genome, fitter Fitter, rng *rand.Rand) *Genome {
	child := &Genome{
		NumInputs:   g.NumInputs,
		NumOutputs:  g.NumOutputs,
		Connections: make(map[uint64]Connection, max(len(g.Connections), len(other.Connections))),
	}

	ids := make([]uint64, 0, len(g.Connections)+len(other.Connections))
	for id := range g.Connections {
		ids = append(ids, id)
	}
	for id := range other.Connections {
		if _, ok := g.Connections[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	var disjoint []uint64
	backward := make(map[int][]int)
	for _, id := range ids {
		mine, inSelf := g.Connections[id]
		theirs, inOther := other.Connections[id]

		switch {
		case inSelf && inOther:
			c := theirs
			if rng.Float64() < 0.5 {
				c = mine
			}
			child.Connections[id] = c
			backward[c.To] = append(backward[c.To], c.From)
		case inSelf:
			if !otherBetter(fitter, rng) {
				disjoint = append(disjoint, id)
			}
		case inOther:
			if otherBetter(fitter, rng) {
				disjoint = append(disjoint, id)
			}
		}
	}

	for _, id := range disjoint {
		c, ok := g.Connections[id]
		if !ok {
			c = other.Connections[id]
		}
		if reaches(backward, c.From, c.To) {
			continue
		}
		child.Connections[id] = c
		backward[c.To] = append(backward[c.To], c.From)
	}
	return child
}

// otherBetter resolves a tie with a fresh coin flip on every call.
func otherBetter(f Fitter, rng *rand.Rand) bool {
	switch f {
	case FitterOther:
		return true
	case FitterSelf:
		return false
	default:
		return rng.Float64() < 0.5
	}
}
