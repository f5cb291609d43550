package triklops

import (
	"math/rand/v2"
	"sort"
)

// Individual is a candidate triangle with its cached fitness.
type Individual struct {
	Triangle Triangle
	Fitness  float64
	// Evaluated is false until the harness has scored the individual.
	Evaluated bool
}

// Population is one generation of individuals within a slot.
type Population struct {
	Members    []Individual
	Generation int
}

// randomTriangle samples every gene uniformly from its valid domain.
func randomTriangle(rng *rand.Rand, size int) Triangle {
	var g [NumGenes]float64
	for i := range g {
		g[i] = randomGene(rng, i, size)
	}
	return TriangleFromGenes(g)
}

// randomGene draws a fresh value for gene i: a coordinate in [0, size),
// a color channel in [0, 255] or an alpha in [0, 1].
func randomGene(rng *rand.Rand, i, size int) float64 {
	switch {
	case i < 6:
		return rng.Float64() * float64(size)
	case i < 9:
		return float64(rng.IntN(256))
	default:
		return rng.Float64()
	}
}

// seedPopulation builds generation 0 of a slot. Individual i draws from its
// own index derived stream, so the result does not depend on scheduling.
func seedPopulation(streams Streams, slot, n, size int) *Population {
	pop := &Population{Members: make([]Individual, n)}
	for i := range pop.Members {
		rng := streams.For(slot, 0, i)
		pop.Members[i] = Individual{Triangle: randomTriangle(rng, size)}
	}
	return pop
}

// Best returns the index of the fittest individual. Ties go to the earliest
// member. It returns -1 for an empty population.
func (p *Population) Best(m Metric) int {
	best := -1
	for i := range p.Members {
		if best < 0 || m.Better(p.Members[i].Fitness, p.Members[best].Fitness) {
			best = i
		}
	}
	return best
}

// Ranked returns the individuals ordered best first. The sort is stable so
// equal fitness keeps population order.
func (p *Population) Ranked(m Metric) []Individual {
	ranked := make([]Individual, len(p.Members))
	copy(ranked, p.Members)
	sort.SliceStable(ranked, func(i, j int) bool {
		return m.Better(ranked[i].Fitness, ranked[j].Fitness)
	})
	return ranked
}
