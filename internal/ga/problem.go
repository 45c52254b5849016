package ga

import "fmt"

// Vehicle is one capacity-constrained vehicle of the fleet.
type Vehicle struct {
	ID         int
	StartIndex int
	Capacity   float64
}

// Job is one delivery with a demand and an on-site service duration.
type Job struct {
	ID            int
	LocationIndex int
	Delivery      float64
	Service       float64
}

// Problem is the immutable view of one CVRP instance: vehicles and jobs in
// their input order plus the pairwise location travel-cost matrix.
// Matrix[a][b] is the cost of traveling from location a to location b.
type Problem struct {
	Vehicles []Vehicle
	Jobs     []Job
	Matrix   [][]float64

	jobByID map[int]Job
}

// NewProblem builds a Problem and checks the cross-field consistency the
// pre-flight input validation cannot see (matrix shape, location bounds,
// duplicate ids). The returned Problem is never mutated after this.
func NewProblem(vehicles []Vehicle, jobs []Job, matrix [][]float64) (*Problem, error) {
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("problem has no vehicles")
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("problem has no jobs")
	}
	n := len(matrix)
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("matrix[%d][%d] is negative", i, j)
			}
		}
	}
	for _, v := range vehicles {
		if v.StartIndex < 0 || v.StartIndex >= n {
			return nil, fmt.Errorf("vehicle %d start index %d out of matrix range", v.ID, v.StartIndex)
		}
	}
	byID := make(map[int]Job, len(jobs))
	for _, j := range jobs {
		if j.LocationIndex < 0 || j.LocationIndex >= n {
			return nil, fmt.Errorf("job %d location index %d out of matrix range", j.ID, j.LocationIndex)
		}
		if _, dup := byID[j.ID]; dup {
			return nil, fmt.Errorf("duplicate job id %d", j.ID)
		}
		byID[j.ID] = j
	}
	return &Problem{Vehicles: vehicles, Jobs: jobs, Matrix: matrix, jobByID: byID}, nil
}

// Job returns the job with the given id. Ids are validated at construction,
// so a miss indicates a corrupted chromosome and is a fatal condition.
func (p *Problem) Job(id int) Job {
	j, ok := p.jobByID[id]
	if !ok {
		panic(fmt.Sprintf("ga: unknown job id %d in chromosome", id))
	}
	return j
}

// JobIDs returns the job identifiers in input order.
func (p *Problem) JobIDs() []int {
	ids := make([]int, len(p.Jobs))
	for i, j := range p.Jobs {
		ids[i] = j.ID
	}
	return ids
}
