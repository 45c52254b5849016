// Package model holds the wire-level document types: the CVRP problem
// instance read from JSON, the solution document written back out, and the
// records the solve service stores and serves.
package model

import "time"

// VehicleIn mirrors one entry of the input "vehicles" array. Only
// Capacity[0] is used by the solver.
type VehicleIn struct {
	ID         int       `json:"id"`
	StartIndex int       `json:"start_index"`
	Capacity   []float64 `json:"capacity"`
}

// JobIn mirrors one entry of the input "jobs" array. Only Delivery[0] is
// used by the solver.
type JobIn struct {
	ID            int       `json:"id"`
	LocationIndex int       `json:"location_index"`
	Delivery      []float64 `json:"delivery"`
	Service       float64   `json:"service"`
}

// ProblemDoc is the full input document.
type ProblemDoc struct {
	Vehicles []VehicleIn `json:"vehicles"`
	Jobs     []JobIn     `json:"jobs"`
	Matrix   [][]float64 `json:"matrix"`
}

// RouteOut is one vehicle's routes entry in the output document.
type RouteOut struct {
	Jobs             []int   `json:"jobs"`
	DeliveryDuration float64 `json:"delivery_duration"`
}

// SolutionDoc is the output document. Route keys are vehicle ids, assigned
// positionally against the fleet's insertion order.
type SolutionDoc struct {
	TotalDeliveryDuration float64             `json:"total_delivery_duration"`
	Routes                map[string]RouteOut `json:"routes"`
}

// SolveParams are the optional search-parameter overrides a caller may send
// with a problem document. Zero values fall back to engine defaults.
type SolveParams struct {
	Generations int   `json:"generations,omitempty"`
	Population  int   `json:"population,omitempty"`
	MatingPool  int   `json:"matingPool,omitempty"`
	Seed        int64 `json:"seed,omitempty"`
}

// SolveRequest is the POST /v1/solves body: a problem document plus
// parameters. Async requests return immediately and stream progress.
type SolveRequest struct {
	ProblemDoc
	Params SolveParams `json:"params"`
	Async  bool        `json:"async,omitempty"`
}

// Solve statuses.
const (
	SolveRunning   = "running"
	SolveCompleted = "completed"
	SolveFailed    = "failed"
)

// SolveMetrics is the run summary persisted with a solve.
type SolveMetrics struct {
	Generations int     `json:"generations"`
	Evaluations int     `json:"evaluations"`
	Seed        int64   `json:"seed"`
	BestCost    float64 `json:"bestCost"`
	DurationMs  int64   `json:"durationMs"`
}

// SolveRecord is one stored solve run.
type SolveRecord struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	Params    SolveParams   `json:"params"`
	Solution  *SolutionDoc  `json:"solution,omitempty"`
	Metrics   *SolveMetrics `json:"metrics,omitempty"`
	Error     string        `json:"error,omitempty"`
}
