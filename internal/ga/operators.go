package ga

import (
	"math/rand"
	"sort"
)

// initialPopulation builds n chromosomes: a uniformly random permutation of
// all job ids followed by a random vehicle segment.
func initialPopulation(rng *rand.Rand, p *Problem, n int) []Chromosome {
	jobs := len(p.Jobs)
	vehicles := len(p.Vehicles)
	ids := p.JobIDs()
	pop := make([]Chromosome, n)
	for i := range pop {
		genes := make([]int, jobs+vehicles)
		perm := append([]int(nil), ids...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		copy(genes, perm)
		copy(genes[jobs:], randomVehicleSegment(rng, vehicles, jobs))
		pop[i] = newChromosome(genes, jobs)
	}
	return pop
}

// selectParents ranks the population ascending by fitness and returns the m
// best chromosomes as the mating pool.
func selectParents(pop []Chromosome, fitness []float64, m int) []Chromosome {
	idx := make([]int, len(pop))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return fitness[idx[a]] < fitness[idx[b]] })
	parents := make([]Chromosome, m)
	for i := 0; i < m; i++ {
		parents[i] = pop[idx[i]]
	}
	return parents
}

// crossover produces n offspring from adjacent pairs in the mating pool:
// offspring i is built from parents[i] and parents[i+1]. The pool must be
// larger than n so the pairing never runs off the end; Config.Validate
// guarantees that.
func crossover(rng *rand.Rand, parents []Chromosome, vehicles, jobs, n int) []Chromosome {
	offspring := make([]Chromosome, n)
	for i := 0; i < n; i++ {
		r := rng.Intn(vehicles)
		offspring[i] = constructOffspring(rng, parents[i], parents[i+1], r, vehicles, jobs)
	}
	return offspring
}

// constructOffspring applies the two-segment ordered crossover. The offspring
// inherits vehicle r's route from parent2 verbatim, keeps the remaining jobs
// in parent1's relative order around it, and redraws all other route lengths
// over the jobs left outside the inherited block.
func constructOffspring(rng *rand.Rand, parent1, parent2 Chromosome, r, vehicles, jobs int) Chromosome {
	segStart, segEnd := parent2.routeSpan(r)
	seg := parent2.JobSegment()[segStart:segEnd]
	inSeg := make(map[int]bool, len(seg))
	for _, id := range seg {
		inSeg[id] = true
	}

	// Jobs of parent1 that are not in the inherited block, relative order kept.
	skeleton := make([]int, 0, jobs-len(seg))
	for _, id := range parent1.JobSegment() {
		if !inSeg[id] {
			skeleton = append(skeleton, id)
		}
	}

	genes := make([]int, 0, jobs+vehicles)
	genes = append(genes, skeleton[:segStart]...)
	genes = append(genes, seg...)
	genes = append(genes, skeleton[segStart:]...)

	// Fresh random lengths for every vehicle except r, which keeps parent2's.
	rest := randomVehicleSegment(rng, vehicles-1, jobs-len(seg))
	genes = append(genes, rest[:r]...)
	genes = append(genes, len(seg))
	genes = append(genes, rest[r:]...)
	return newChromosome(genes, jobs)
}

// mutate perturbs offspring in place with an adaptive rate. Offspring whose
// fitness is at or above the population average get rate 0.9, better ones
// get 0.1; a chromosome then mutates only when a fresh uniform draw exceeds
// its rate, so the 0.9 rate mutates about 10% of the time and the 0.1 rate
// about 90%. The mutation is a single swap of two distinct job genes, taken
// inside one random vehicle's route when that route has more than one job,
// and from the whole job segment otherwise.
func mutate(rng *rand.Rand, eval *Evaluator, offspring []Chromosome, popFitness []float64, vehicles, jobs int) {
	avg := 0.0
	for _, f := range popFitness {
		avg += f
	}
	avg /= float64(len(popFitness))

	for i := range offspring {
		rate := 0.1
		if eval.Fitness(offspring[i]) >= avg {
			rate = 0.9
		}
		if rng.Float64() <= rate {
			continue
		}
		r := rng.Intn(vehicles)
		start, end := 0, jobs
		if offspring[i].VehicleSegment()[r] > 1 {
			start, end = offspring[i].routeSpan(r)
		}
		if end-start < 2 {
			continue
		}
		a := start + rng.Intn(end-start)
		b := start + rng.Intn(end-start-1)
		if b >= a {
			b++
		}
		js := offspring[i].JobSegment()
		js[a], js[b] = js[b], js[a]
	}
}
