package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vrpsolve/internal/buildinfo"
	"vrpsolve/internal/ga"
	"vrpsolve/internal/metrics"
	"vrpsolve/internal/model"
	"vrpsolve/internal/parser"
	"vrpsolve/internal/store"
)

// SolvesHandler handles POST/GET /v1/solves
func (s *Server) SolvesHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Verify(r); err != nil {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error(), r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodPost:
		if !s.Limiter.Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "retry later", r.URL.Path)
			return
		}
		var req model.SolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateSolveRequest(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
			return
		}
		rec, err := s.Store.CreateSolve(r.Context(), model.SolveRecord{
			Status: model.SolveRunning,
			Params: req.Params,
		})
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create solve failed", err.Error(), r.URL.Path)
			return
		}
		if req.Async {
			go s.runSolve(context.Background(), rec, &req)
			writeJSON(w, http.StatusAccepted, rec)
			return
		}
		s.runSolve(r.Context(), rec, &req)
		rec, err = s.Store.GetSolve(r.Context(), rec.ID)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Load solve failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListSolves(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List solves failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SolveByIDHandler handles /v1/solves/{id} and /v1/solves/{id}/events/stream
func (s *Server) SolveByIDHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Verify(r); err != nil {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error(), r.URL.Path)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/v1/solves/")
	if rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
		s.streamSolveEvents(w, r, id)
		return
	}
	if len(parts) > 1 {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rec, err := s.Store.GetSolve(r.Context(), id)
	if err == store.ErrNotFound {
		writeProblem(w, http.StatusNotFound, "Solve not found", "", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Load solve failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// streamSolveEvents serves progress over SSE until the client disconnects
// or the solve reaches a terminal event.
func (s *Server) streamSolveEvents(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, err := s.Store.GetSolve(r.Context(), id); err != nil {
		writeProblem(w, http.StatusNotFound, "Solve not found", "", r.URL.Path)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)
	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"solveId\":%q,\"ts\":%q}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()
	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			b, _ := json.Marshal(evt)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
			if evt.Type == "solve.completed" || evt.Type == "solve.failed" {
				return
			}
		}
	}
}

// runSolve executes the search, persists the outcome, and fans progress out
// to the broker, metrics and webhooks.
func (s *Server) runSolve(ctx context.Context, rec model.SolveRecord, req *model.SolveRequest) {
	problem, err := parser.BuildProblem(&req.ProblemDoc)
	if err != nil {
		s.failSolve(ctx, rec, err)
		return
	}
	cfg := ga.Config{
		Generations: req.Params.Generations,
		Population:  req.Params.Population,
		MatingPool:  req.Params.MatingPool,
		Seed:        req.Params.Seed,
	}
	if cfg.Generations == 0 {
		cfg.Generations = s.Cfg.GA.Generations
	}
	if cfg.Population == 0 {
		cfg.Population = s.Cfg.GA.Population
	}
	if cfg.MatingPool == 0 {
		cfg.MatingPool = s.Cfg.GA.MatingPool
	}
	cfg.Observer = func(generation int, population []ga.Chromosome, fitness []float64) {
		metrics.Generations.Inc()
		best, sum := fitness[0], 0.0
		for _, f := range fitness {
			if f < best {
				best = f
			}
			sum += f
		}
		s.Broker.Publish(rec.ID, ProgressEvent{
			SolveID:    rec.ID,
			Type:       "solve.progress",
			Generation: generation,
			BestCost:   best,
			AvgCost:    sum / float64(len(fitness)),
		})
	}

	sol, m, err := ga.Solve(problem, cfg)
	if err != nil {
		s.failSolve(ctx, rec, err)
		return
	}
	doc := parser.SolutionDoc(sol)
	rec.Status = model.SolveCompleted
	rec.Solution = &doc
	rec.Metrics = &model.SolveMetrics{
		Generations: m.Generations,
		Evaluations: m.Evaluations,
		Seed:        m.Seed,
		BestCost:    m.BestCost,
		DurationMs:  m.Duration.Milliseconds(),
	}
	if err := s.Store.UpdateSolve(ctx, rec); err != nil {
		s.failSolve(ctx, rec, err)
		return
	}
	metrics.Solves.WithLabelValues(model.SolveCompleted).Inc()
	metrics.SolveDuration.Observe(m.Duration.Seconds())
	metrics.BestCost.Set(m.BestCost)
	s.Broker.Publish(rec.ID, ProgressEvent{SolveID: rec.ID, Type: "solve.completed", BestCost: m.BestCost})
	s.Pub.Emit(ctx, "solve.completed", map[string]any{
		"solveId":  rec.ID,
		"bestCost": m.BestCost,
		"metrics":  rec.Metrics,
	})
}

func (s *Server) failSolve(ctx context.Context, rec model.SolveRecord, cause error) {
	rec.Status = model.SolveFailed
	rec.Error = cause.Error()
	_ = s.Store.UpdateSolve(ctx, rec)
	metrics.Solves.WithLabelValues(model.SolveFailed).Inc()
	s.Broker.Publish(rec.ID, ProgressEvent{SolveID: rec.ID, Type: "solve.failed"})
	s.Pub.Emit(ctx, "solve.failed", map[string]any{"solveId": rec.ID, "error": rec.Error})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Info()
	info["status"] = "ok"
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
