package neat

import "math"

// Member is a genome together with its index in the population it came from.
// The index is used to look up the genome's fitness.
type Member struct {
	Genome *Genome
	Index  int
}

// Species is an ordered group of genetically similar genomes. The first
// member is the representative used for distance comparisons.
type Species struct {
	Members []Member
}

// Representative returns the genome that new genomes are compared against,
// or nil for an empty species.
func (s *Species) Representative() *Genome {
	if s == nil || len(s.Members) == 0 {
		return nil
	}
	return s.Members[0].Genome
}

// Len returns the number of members.
func (s *Species) Len() int {
	return len(s.Members)
}

// Distance calculates the compatibility distance between two genomes:
// disjointCoeff * D + weightCoeff * W, where D counts innovation ids present in
// exactly one genome and W sums the absolute weight differences of the ids
// present in both.
func Distance(g1, g2 *Genome, cfg *SpeciesSetConfig) float64 {
	disjoint := 0
	weightDiff := 0.0

	// Sorted so the floating point sum does not depend on map order.
	for _, id := range g1.InnovationIDs() {
		c1 := g1.Connections[id]
		if c2, ok := g2.Connections[id]; ok {
			weightDiff += math.Abs(c1.Weight - c2.Weight)
		} else {
			disjoint++
		}
	}
	for id := range g2.Connections {
		if _, ok := g1.Connections[id]; !ok {
			disjoint++
		}
	}

	return float64(disjoint)*cfg.CompatibilityDisjointCoefficient + weightDiff*cfg.CompatibilityWeightCoefficient
}

// ClassSpecies partitions the population into species.
//
// Candidate species are checked in order: the species of the previous
// generation first (compared against their old representatives, so a species
// keeps its slot across generations), then species created earlier in this
// pass. With SpeciesMatchLast the genome joins the last compatible species
// found, with SpeciesMatchFirst the first. A genome with no compatible species
// founds a new one. Empty species are dropped.
func ClassSpecies(population []*Genome, previous []*Species, cfg *SpeciesSetConfig) []*Species {
	species := make([]*Species, len(previous))
	for i := range species {
		species[i] = &Species{}
	}

	for i, g := range population {
		match := -1
		for n := range species {
			var rep *Genome
			if n < len(previous) {
				rep = previous[n].Representative()
			} else {
				rep = species[n].Representative()
			}
			if rep == nil {
				continue
			}
			if Distance(rep, g, cfg) < cfg.CompatibilityThreshold {
				match = n
				if cfg.SpeciesMatch == SpeciesMatchFirst {
					break
				}
			}
		}

		if match >= 0 {
			species[match].Members = append(species[match].Members, Member{Genome: g, Index: i})
		} else {
			species = append(species, &Species{Members: []Member{{Genome: g, Index: i}}})
		}
	}

	return dropEmpty(species)
}

func dropEmpty(species []*Species) []*Species {
	kept := species[:0]
	for _, s := range species {
		if s.Len() > 0 {
			kept = append(kept, s)
		}
	}
	return kept
}
