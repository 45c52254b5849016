// Package ga implements a genetic-algorithm solver for the capacitated
// vehicle routing problem. A chromosome packs every vehicle's
// variable-length route into one fixed-size gene array: a permutation of all
// job ids followed by per-vehicle route lengths. Capacity violations are
// penalized, not forbidden, so the search may return an infeasible answer on
// over-constrained instances.
package ga

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Observer receives the state of each generation before selection: the
// generation number, the current population, and the matching fitness
// vector. The slices are live engine state; copy anything retained. A nil
// observer disables reporting.
type Observer func(generation int, population []Chromosome, fitness []float64)

// Config carries the search parameters. Zero values fall back to the
// defaults (100 generations, population 10, mating pool 6).
type Config struct {
	Generations int
	Population  int
	MatingPool  int
	Seed        int64
	Observer    Observer `json:"-" yaml:"-"`
}

const (
	DefaultGenerations = 100
	DefaultPopulation  = 10
	DefaultMatingPool  = 6
)

func (c Config) withDefaults() Config {
	if c.Generations == 0 {
		c.Generations = DefaultGenerations
	}
	if c.Population == 0 {
		c.Population = DefaultPopulation
	}
	if c.MatingPool == 0 {
		c.MatingPool = DefaultMatingPool
	}
	return c
}

// Validate rejects parameter combinations the operators cannot work with.
// The mating pool must exceed half the population: crossover pairs
// parents[i] with parents[i+1] for i in [0, P-M), which indexes up to
// parents[P-M], so M > P-M must hold.
func (c Config) Validate() error {
	if c.Generations < 1 {
		return fmt.Errorf("generations must be >= 1")
	}
	if c.Population < 2 {
		return fmt.Errorf("population must be >= 2")
	}
	if c.MatingPool < 1 || c.MatingPool >= c.Population {
		return fmt.Errorf("mating pool must be in [1, population)")
	}
	if 2*c.MatingPool <= c.Population {
		return fmt.Errorf("mating pool (%d) must exceed half the population (%d)", c.MatingPool, c.Population)
	}
	return nil
}

// Route is one vehicle's share of a Solution.
type Route struct {
	VehicleID int
	Jobs      []int
	Cost      float64
}

// Solution is the decoded best chromosome: one route per vehicle in fleet
// order, each with its final (penalty-applied) cost.
type Solution struct {
	Routes []Route
	Total  float64
}

// Metrics summarizes one run.
type Metrics struct {
	Generations int
	Evaluations int
	Seed        int64
	BestCost    float64
	Trace       []float64 // best fitness observed at each generation
	Duration    time.Duration
}

// Solve runs the generational loop against p: evaluate, select, cross over,
// mutate, replace, for a fixed generation count. The answer is population
// slot 0 after the last replacement, i.e. the best parent of the final
// selection; offspring of the last generation are never re-ranked against
// it. A zero seed picks one from the clock; pass an explicit seed for
// reproducible runs.
func Solve(p *Problem, cfg Config) (Solution, Metrics, error) {
	start := time.Now()
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Solution{}, Metrics{}, err
	}
	if len(p.Jobs) < 2 {
		return Solution{}, Metrics{}, fmt.Errorf("need at least 2 jobs, have %d", len(p.Jobs))
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	eval := NewEvaluator(p)
	vehicles := len(p.Vehicles)
	jobs := len(p.Jobs)

	pop := initialPopulation(rng, p, cfg.Population)
	m := Metrics{Generations: cfg.Generations, Seed: seed, Trace: make([]float64, 0, cfg.Generations)}

	for gen := 0; gen < cfg.Generations; gen++ {
		fitness := eval.FitnessAll(pop)
		if cfg.Observer != nil {
			cfg.Observer(gen, pop, fitness)
		}
		best := math.Inf(1)
		for _, f := range fitness {
			if f < best {
				best = f
			}
		}
		m.Trace = append(m.Trace, best)

		parents := selectParents(pop, fitness, cfg.MatingPool)
		offspring := crossover(rng, parents, vehicles, jobs, cfg.Population-cfg.MatingPool)
		mutate(rng, eval, offspring, fitness, vehicles, jobs)

		next := make([]Chromosome, 0, cfg.Population)
		next = append(next, parents...)
		next = append(next, offspring...)
		pop = next
	}

	sol := decodeSolution(p, eval, pop[0])
	m.Evaluations = eval.Evaluations()
	m.BestCost = sol.Total
	m.Duration = time.Since(start)
	return sol, m, nil
}

// decodeSolution maps a chromosome to per-vehicle routes with final costs.
// Routes are matched to vehicles positionally, in fleet insertion order.
func decodeSolution(p *Problem, eval *Evaluator, c Chromosome) Solution {
	routes := c.Routes()
	sol := Solution{Routes: make([]Route, len(p.Vehicles))}
	for i, v := range p.Vehicles {
		cost := eval.RouteCost(v, routes[i])
		sol.Routes[i] = Route{VehicleID: v.ID, Jobs: append([]int(nil), routes[i]...), Cost: cost}
		sol.Total += cost
	}
	return sol
}
