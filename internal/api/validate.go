package api

import (
	"fmt"

	"vrpsolve/internal/ga"
	"vrpsolve/internal/model"
	"vrpsolve/internal/parser"
)

func validateSolveRequest(req *model.SolveRequest) error {
	if err := parser.ValidateDoc(&req.ProblemDoc); err != nil {
		return err
	}
	p := req.Params
	if p.Generations < 0 {
		return fmt.Errorf("params.generations must be >= 0")
	}
	if p.Population < 0 {
		return fmt.Errorf("params.population must be >= 0")
	}
	if p.MatingPool < 0 {
		return fmt.Errorf("params.matingPool must be >= 0")
	}
	if p.Population > 0 || p.MatingPool > 0 {
		pop, pool := p.Population, p.MatingPool
		if pop == 0 {
			pop = ga.DefaultPopulation
		}
		if pool == 0 {
			pool = ga.DefaultMatingPool
		}
		if 2*pool <= pop {
			return fmt.Errorf("params.matingPool must exceed half of params.population")
		}
		if pool >= pop {
			return fmt.Errorf("params.matingPool must be smaller than params.population")
		}
	}
	return nil
}
