// Command solver reads a CVRP problem document from one input path, runs
// the genetic-algorithm search, and writes the best solution document to
// one output path.
//
// Usage: solver [input.json [output.json]]
//
// SEED pins the random stream for reproducible runs; SOLVER_VERBOSE=1
// logs per-generation progress; CONFIG_PATH points at an optional YAML
// file with search parameters.
package main

import (
	"log"
	"math"
	"os"
	"strconv"

	"vrpsolve/internal/config"
	"vrpsolve/internal/ga"
	"vrpsolve/internal/parser"
)

func main() {
	in, out := "input.json", "output.json"
	if args := os.Args[1:]; len(args) > 0 {
		in = args[0]
		if len(args) > 1 {
			out = args[1]
		}
	}

	if ok, msg := parser.Validate(in); !ok {
		log.Fatalf("invalid input %s: %s", in, msg)
	}
	doc, err := parser.Load(in)
	if err != nil {
		log.Fatalf("read %s: %v", in, err)
	}
	p, err := parser.BuildProblem(doc)
	if err != nil {
		log.Fatalf("build problem: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	engineCfg := ga.Config{
		Generations: cfg.GA.Generations,
		Population:  cfg.GA.Population,
		MatingPool:  cfg.GA.MatingPool,
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			log.Fatalf("SEED: %v", err)
		}
		engineCfg.Seed = seed
	}
	if os.Getenv("SOLVER_VERBOSE") == "1" {
		engineCfg.Observer = func(gen int, _ []ga.Chromosome, fitness []float64) {
			best := math.Inf(1)
			for _, f := range fitness {
				if f < best {
					best = f
				}
			}
			log.Printf("generation %d: best fitness %g", gen+1, best)
		}
	}

	sol, m, err := ga.Solve(p, engineCfg)
	if err != nil {
		log.Fatalf("solve: %v", err)
	}
	if err := parser.WriteSolution(out, parser.SolutionDoc(sol)); err != nil {
		log.Fatalf("write %s: %v", out, err)
	}
	log.Printf("solved %d jobs over %d vehicles in %s: total %g (seed %d) -> %s",
		len(p.Jobs), len(p.Vehicles), m.Duration, sol.Total, m.Seed, out)
}
