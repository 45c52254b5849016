package ga

import (
	"math/rand"
	"sort"
	"testing"
)

func eightJobProblem(t *testing.T) *Problem {
	t.Helper()
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{ID: 100 + i, LocationIndex: 1 + i, Delivery: 2, Service: 1}
	}
	n := 9
	matrix := make([][]float64, n)
	for a := range matrix {
		matrix[a] = make([]float64, n)
		for b := range matrix[a] {
			d := a - b
			if d < 0 {
				d = -d
			}
			matrix[a][b] = float64(d)
		}
	}
	p, err := NewProblem(
		[]Vehicle{
			{ID: 1, StartIndex: 0, Capacity: 6},
			{ID: 2, StartIndex: 0, Capacity: 6},
			{ID: 3, StartIndex: 0, Capacity: 6},
		},
		jobs, matrix,
	)
	if err != nil {
		t.Fatalf("NewProblem: %v", err)
	}
	return p
}

func checkInvariants(t *testing.T, p *Problem, c Chromosome, where string) {
	t.Helper()
	js := append([]int(nil), c.JobSegment()...)
	sort.Ints(js)
	want := append([]int(nil), p.JobIDs()...)
	sort.Ints(want)
	if len(js) != len(want) {
		t.Fatalf("%s: job segment has %d genes, want %d", where, len(js), len(want))
	}
	for i := range want {
		if js[i] != want[i] {
			t.Fatalf("%s: job segment is not a permutation of all job ids: %v", where, c.JobSegment())
		}
	}
	sum := 0
	for _, v := range c.VehicleSegment() {
		if v < 0 {
			t.Fatalf("%s: negative route length in %v", where, c.VehicleSegment())
		}
		sum += v
	}
	if sum != len(p.Jobs) {
		t.Fatalf("%s: vehicle segment %v sums to %d, want %d", where, c.VehicleSegment(), sum, len(p.Jobs))
	}
}

func TestInitialPopulationInvariants(t *testing.T) {
	p := eightJobProblem(t)
	rng := rand.New(rand.NewSource(3))
	pop := initialPopulation(rng, p, 10)
	if len(pop) != 10 {
		t.Fatalf("population size: got %d", len(pop))
	}
	for _, c := range pop {
		checkInvariants(t, p, c, "init")
	}
}

func TestSelectParentsOrdering(t *testing.T) {
	p := eightJobProblem(t)
	rng := rand.New(rand.NewSource(5))
	eval := NewEvaluator(p)
	pop := initialPopulation(rng, p, 10)
	fit := eval.FitnessAll(pop)
	parents := selectParents(pop, fit, 6)
	if len(parents) != 6 {
		t.Fatalf("pool size: got %d, want 6", len(parents))
	}
	prev := eval.Fitness(parents[0])
	for k := 1; k < len(parents); k++ {
		f := eval.Fitness(parents[k])
		if f < prev {
			t.Fatalf("parent[%d] fitness %v < parent[%d] fitness %v", k, f, k-1, prev)
		}
		prev = f
	}
}

func TestCrossoverInheritsChosenRoute(t *testing.T) {
	p := eightJobProblem(t)
	rng := rand.New(rand.NewSource(11))
	parent1 := newChromosome([]int{100, 101, 102, 103, 104, 105, 106, 107, 3, 3, 2}, 8)
	parent2 := newChromosome([]int{107, 106, 105, 104, 103, 102, 101, 100, 2, 4, 2}, 8)
	for r := 0; r < 3; r++ {
		child := constructOffspring(rng, parent1, parent2, r, 3, 8)
		checkInvariants(t, p, child, "crossover")
		if child.VehicleSegment()[r] != parent2.VehicleSegment()[r] {
			t.Fatalf("r=%d: route length %d, want parent2's %d",
				r, child.VehicleSegment()[r], parent2.VehicleSegment()[r])
		}
		got := child.Routes()[r]
		want := parent2.Routes()[r]
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("r=%d: inherited route %v, want %v", r, got, want)
			}
		}
	}
}

func TestCrossoverKeepsSkeletonOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	parent1 := newChromosome([]int{100, 101, 102, 103, 104, 105, 106, 107, 3, 3, 2}, 8)
	// Vehicle 0 of parent2 covers 104,105: those two move as a block, the
	// rest must keep parent1's relative order 100,101,102,103,106,107.
	parent2 := newChromosome([]int{104, 105, 100, 101, 102, 103, 106, 107, 2, 4, 2}, 8)
	child := constructOffspring(rng, parent1, parent2, 0, 3, 8)
	js := child.JobSegment()
	if js[0] != 104 || js[1] != 105 {
		t.Fatalf("inherited block not at parent2's offset: %v", js)
	}
	rest := js[2:]
	want := []int{100, 101, 102, 103, 106, 107}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("skeleton order broken: got %v, want %v", rest, want)
		}
	}
}

func TestMutatePreservesInvariants(t *testing.T) {
	p := eightJobProblem(t)
	rng := rand.New(rand.NewSource(9))
	eval := NewEvaluator(p)
	pop := initialPopulation(rng, p, 10)
	fit := eval.FitnessAll(pop)
	offspring := make([]Chromosome, 4)
	for i := range offspring {
		offspring[i] = pop[i].Clone()
	}
	for round := 0; round < 50; round++ {
		mutate(rng, eval, offspring, fit, 3, 8)
		for _, c := range offspring {
			checkInvariants(t, p, c, "mutate")
		}
	}
}

func TestMutateNeverTouchesVehicleSegment(t *testing.T) {
	p := eightJobProblem(t)
	rng := rand.New(rand.NewSource(13))
	eval := NewEvaluator(p)
	pop := initialPopulation(rng, p, 6)
	fit := eval.FitnessAll(pop)
	before := make([][]int, len(pop))
	for i, c := range pop {
		before[i] = append([]int(nil), c.VehicleSegment()...)
	}
	for round := 0; round < 30; round++ {
		mutate(rng, eval, pop, fit, 3, 8)
	}
	for i, c := range pop {
		for v := range before[i] {
			if c.VehicleSegment()[v] != before[i][v] {
				t.Fatalf("mutation changed vehicle segment of chromosome %d", i)
			}
		}
	}
}
