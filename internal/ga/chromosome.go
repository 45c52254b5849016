package ga

import "math/rand"

// Chromosome encodes one candidate assignment of jobs to vehicles as a
// fixed-length gene array of J+V ints. The first J genes are a permutation
// of all job ids (the job segment); the last V genes are non-negative route
// lengths summing to exactly J (the vehicle segment). Route v is the
// contiguous block of the job segment starting at the cumulative sum of the
// vehicle-segment entries before v.
type Chromosome struct {
	genes []int
	jobs  int
}

func newChromosome(genes []int, jobs int) Chromosome {
	return Chromosome{genes: genes, jobs: jobs}
}

// JobSegment returns the permutation part of the gene array as a live view.
func (c Chromosome) JobSegment() []int { return c.genes[:c.jobs] }

// VehicleSegment returns the route-length part of the gene array as a live view.
func (c Chromosome) VehicleSegment() []int { return c.genes[c.jobs:] }

// Clone returns a deep copy.
func (c Chromosome) Clone() Chromosome {
	g := make([]int, len(c.genes))
	copy(g, c.genes)
	return Chromosome{genes: g, jobs: c.jobs}
}

// Routes decodes the chromosome into one ordered job-id route per vehicle.
// Every operator that needs route boundaries goes through this (or the same
// cumulative-sum rule) so the gene array has a single interpretation.
// The returned slices are views into the job segment.
func (c Chromosome) Routes() [][]int {
	seg := c.VehicleSegment()
	js := c.JobSegment()
	routes := make([][]int, len(seg))
	start := 0
	for v, n := range seg {
		routes[v] = js[start : start+n]
		start += n
	}
	return routes
}

// routeSpan returns the [start,end) gene positions of vehicle v's route.
func (c Chromosome) routeSpan(v int) (int, int) {
	seg := c.VehicleSegment()
	start := 0
	for i := 0; i < v; i++ {
		start += seg[i]
	}
	return start, start + seg[v]
}

// randomVehicleSegment draws n non-negative route lengths summing to total.
// Slots 0..n-2 each take a uniform draw from [0, remaining] and shrink the
// remainder; the last slot absorbs whatever is left. Later slots therefore
// tend to receive the leftover mass when early draws are small; that skew is
// part of how initial solutions are distributed and is kept on purpose.
func randomVehicleSegment(rng *rand.Rand, n, total int) []int {
	out := make([]int, n)
	remaining := total
	for i := 0; i < n; i++ {
		if i == n-1 {
			out[i] = remaining
			break
		}
		g := rng.Intn(remaining + 1)
		out[i] = g
		remaining -= g
	}
	return out
}
