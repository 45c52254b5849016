package ga

// capacityPenalty is added to a route's penalty counter for every job whose
// cumulative demand sits above the vehicle's capacity.
const capacityPenalty = 1000

// Evaluator scores chromosomes against one Problem. Lower is better.
// It also counts how many fitness evaluations were performed.
type Evaluator struct {
	p     *Problem
	evals int
}

func NewEvaluator(p *Problem) *Evaluator { return &Evaluator{p: p} }

// Evaluations returns the number of chromosome evaluations so far.
func (e *Evaluator) Evaluations() int { return e.evals }

// plainRouteCost is the travel cost along start→job1→…→jobN plus the service
// duration of every job in the route. No capacity penalty.
func (e *Evaluator) plainRouteCost(v Vehicle, route []int) float64 {
	if len(route) == 0 {
		return 0
	}
	cost := 0.0
	loc := v.StartIndex
	for _, id := range route {
		j := e.p.Job(id)
		cost += e.p.Matrix[loc][j.LocationIndex] + j.Service
		loc = j.LocationIndex
	}
	return cost
}

// routePenalty walks the route accumulating demand and bumps the counter by
// capacityPenalty on every job where the running total exceeds capacity.
// A route that keeps climbing past the limit is counted once per job, not
// once per route.
func (e *Evaluator) routePenalty(v Vehicle, route []int) int {
	penalty := 0
	total := 0.0
	for _, id := range route {
		total += e.p.Job(id).Delivery
		if total > v.Capacity {
			penalty += capacityPenalty
		}
	}
	return penalty
}

// RouteCost is the final cost of one route: plain cost scaled by
// (1 + penalty). The blow-up is multiplicative, not a flat fee.
func (e *Evaluator) RouteCost(v Vehicle, route []int) float64 {
	cost := e.plainRouteCost(v, route)
	return cost + float64(e.routePenalty(v, route))*cost
}

// Fitness is the sum of final route costs over all vehicles. Vehicles with
// an empty route contribute zero.
func (e *Evaluator) Fitness(c Chromosome) float64 {
	e.evals++
	total := 0.0
	routes := c.Routes()
	for i, v := range e.p.Vehicles {
		if len(routes[i]) == 0 {
			continue
		}
		total += e.RouteCost(v, routes[i])
	}
	return total
}

// FitnessAll scores a whole population, one slot per chromosome in order.
// Scores are recomputed from scratch every generation; nothing is cached.
func (e *Evaluator) FitnessAll(pop []Chromosome) []float64 {
	out := make([]float64, len(pop))
	for i, c := range pop {
		out[i] = e.Fitness(c)
	}
	return out
}
