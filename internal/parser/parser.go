// Package parser reads and validates CVRP problem documents and serializes
// solution documents. It is the only place that touches the wire format;
// the engine never sees JSON.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"vrpsolve/internal/ga"
	"vrpsolve/internal/model"
)

// Decode parses a problem document from r.
func Decode(r io.Reader) (*model.ProblemDoc, error) {
	var doc model.ProblemDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode problem document: %w", err)
	}
	return &doc, nil
}

// Load reads a problem document from a file.
func Load(path string) (*model.ProblemDoc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// ValidateDoc attempts the same field extraction the solver will later
// perform: every vehicle needs a capacity entry, every job a delivery
// entry, and the matrix must be present and square.
func ValidateDoc(doc *model.ProblemDoc) error {
	if len(doc.Vehicles) == 0 {
		return fmt.Errorf("missing or empty vehicles")
	}
	if len(doc.Jobs) == 0 {
		return fmt.Errorf("missing or empty jobs")
	}
	if len(doc.Matrix) == 0 {
		return fmt.Errorf("missing or empty matrix")
	}
	for i, v := range doc.Vehicles {
		if len(v.Capacity) == 0 {
			return fmt.Errorf("vehicle %d (id %d) has no capacity entry", i, v.ID)
		}
	}
	for i, j := range doc.Jobs {
		if len(j.Delivery) == 0 {
			return fmt.Errorf("job %d (id %d) has no delivery entry", i, j.ID)
		}
	}
	n := len(doc.Matrix)
	for i, row := range doc.Matrix {
		if len(row) != n {
			return fmt.Errorf("matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}
	return nil
}

// Validate is the pre-flight check for a file path: best effort, a boolean
// plus a diagnostic message. When it reports false the solver must not run.
func Validate(path string) (bool, string) {
	doc, err := Load(path)
	if err != nil {
		return false, fmt.Sprintf("input file is not a valid problem document: %v", err)
	}
	if err := ValidateDoc(doc); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// BuildProblem maps a validated document into the engine's data model,
// taking capacity[0] and delivery[0] as the scalar quantities.
func BuildProblem(doc *model.ProblemDoc) (*ga.Problem, error) {
	if err := ValidateDoc(doc); err != nil {
		return nil, err
	}
	vehicles := make([]ga.Vehicle, len(doc.Vehicles))
	for i, v := range doc.Vehicles {
		vehicles[i] = ga.Vehicle{ID: v.ID, StartIndex: v.StartIndex, Capacity: v.Capacity[0]}
	}
	jobs := make([]ga.Job, len(doc.Jobs))
	for i, j := range doc.Jobs {
		jobs[i] = ga.Job{ID: j.ID, LocationIndex: j.LocationIndex, Delivery: j.Delivery[0], Service: j.Service}
	}
	return ga.NewProblem(vehicles, jobs, doc.Matrix)
}

// SolutionDoc formats an engine solution as the output document. Every
// vehicle gets an entry, idle ones with an empty jobs list; keys are the
// vehicle ids matched positionally against the decoded route list.
func SolutionDoc(sol ga.Solution) model.SolutionDoc {
	out := model.SolutionDoc{
		TotalDeliveryDuration: sol.Total,
		Routes:                make(map[string]model.RouteOut, len(sol.Routes)),
	}
	for _, r := range sol.Routes {
		jobs := r.Jobs
		if jobs == nil {
			jobs = []int{}
		}
		out.Routes[strconv.Itoa(r.VehicleID)] = model.RouteOut{Jobs: jobs, DeliveryDuration: r.Cost}
	}
	return out
}

// EncodeSolution writes the output document with 4-space indentation.
// Output bytes are deterministic for a given solution.
func EncodeSolution(w io.Writer, doc model.SolutionDoc) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}

// WriteSolution writes the output document to a file.
func WriteSolution(path string, doc model.SolutionDoc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeSolution(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
