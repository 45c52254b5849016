package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vrpsolve/internal/config"
	"vrpsolve/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("AUTH_MODE", "")
	s, err := NewServer(config.Default())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

const solveBody = `{
    "vehicles": [{"id": 1, "start_index": 0, "capacity": [10]}],
    "jobs": [
        {"id": 101, "location_index": 1, "delivery": [4], "service": 0},
        {"id": 102, "location_index": 2, "delivery": [4], "service": 0}
    ],
    "matrix": [[0, 1, 2], [1, 0, 1], [2, 1, 0]],
    "params": {"seed": 7}
}`

func postSolve(t *testing.T, s *Server, body string) (*httptest.ResponseRecorder, model.SolveRecord) {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solves", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	s.SolvesHandler(rr, req)
	var rec model.SolveRecord
	if rr.Code < 300 {
		if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
			t.Fatalf("decode solve record: %v", err)
		}
	}
	return rr, rec
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestSolveSync(t *testing.T) {
	s := newTestServer(t)
	rr, rec := postSolve(t, s, solveBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("solve: got %d, body %s", rr.Code, rr.Body.String())
	}
	if rec.Status != model.SolveCompleted {
		t.Fatalf("status = %s, want %s", rec.Status, model.SolveCompleted)
	}
	if rec.Solution == nil || rec.Metrics == nil {
		t.Fatalf("completed solve missing solution or metrics: %+v", rec)
	}
	total := rec.Solution.TotalDeliveryDuration
	if total != 2 && total != 3 {
		t.Fatalf("total = %v, want 2 or 3", total)
	}
	route, ok := rec.Solution.Routes["1"]
	if !ok {
		t.Fatalf("routes missing vehicle 1: %+v", rec.Solution.Routes)
	}
	if len(route.Jobs) != 2 {
		t.Fatalf("route jobs = %v, want both jobs assigned", route.Jobs)
	}
	if rec.Metrics.Generations != 100 || rec.Metrics.Seed != 7 {
		t.Fatalf("metrics = %+v", rec.Metrics)
	}
}

func TestSolveAsync(t *testing.T) {
	s := newTestServer(t)
	body := `{
        "vehicles": [{"id": 1, "start_index": 0, "capacity": [10]}],
        "jobs": [
            {"id": 101, "location_index": 1, "delivery": [4], "service": 0},
            {"id": 102, "location_index": 2, "delivery": [4], "service": 0}
        ],
        "matrix": [[0, 1, 2], [1, 0, 1], [2, 1, 0]],
        "params": {"seed": 7},
        "async": true
    }`
	rr, rec := postSolve(t, s, body)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("async solve: got %d", rr.Code)
	}
	if rec.Status != model.SolveRunning {
		t.Fatalf("status = %s, want %s", rec.Status, model.SolveRunning)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		rr := httptest.NewRecorder()
		s.SolveByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves/"+rec.ID, nil))
		if rr.Code != 200 {
			t.Fatalf("get solve: %d", rr.Code)
		}
		var got model.SolveRecord
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Status == model.SolveCompleted {
			if got.Solution == nil {
				t.Fatalf("completed without solution")
			}
			break
		}
		if got.Status == model.SolveFailed {
			t.Fatalf("solve failed: %s", got.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("solve still %s after deadline", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSolveValidation(t *testing.T) {
	s := newTestServer(t)
	cases := []string{
		`{`,
		`{"vehicles": [], "jobs": [], "matrix": []}`,
		`{"vehicles": [{"id":1,"start_index":0,"capacity":[10]}],
          "jobs": [{"id":101,"location_index":1,"delivery":[4],"service":0}],
          "matrix": [[0,1],[1,0],[2,1]]}`,
		`{"vehicles": [{"id":1,"start_index":0,"capacity":[10]}],
          "jobs": [{"id":101,"location_index":1,"delivery":[4],"service":0},
                   {"id":102,"location_index":2,"delivery":[4],"service":0}],
          "matrix": [[0,1,2],[1,0,1],[2,1,0]],
          "params": {"population": 10, "matingPool": 5}}`,
	}
	for i, body := range cases {
		rr, _ := postSolve(t, s, body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("case %d: got %d, want 400", i, rr.Code)
		}
	}
}

func TestSolveNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.SolveByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rr.Code)
	}
}

func TestListSolves(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		if rr, _ := postSolve(t, s, solveBody); rr.Code != http.StatusCreated {
			t.Fatalf("seed solve %d: %d", i, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	s.SolvesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves?limit=2", nil))
	if rr.Code != 200 {
		t.Fatalf("list: %d", rr.Code)
	}
	var page struct {
		Items      []model.SolveRecord `json:"items"`
		NextCursor string              `json:"nextCursor"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("page = %d items, cursor %q", len(page.Items), page.NextCursor)
	}
	rr = httptest.NewRecorder()
	s.SolvesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves?limit=2&cursor="+page.NextCursor, nil))
	if rr.Code != 200 {
		t.Fatalf("second page: %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode second page: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("second page = %d items, want 1", len(page.Items))
	}
}

func TestSolveAuth(t *testing.T) {
	t.Setenv("AUTH_MODE", "")
	cfg := config.Default()
	cfg.Server.AuthToken = "s3cret"
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rr := httptest.NewRecorder()
	s.SolvesHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solves", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/solves", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	s.SolvesHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("with token: got %d", rr.Code)
	}
}

func TestSolveRateLimit(t *testing.T) {
	t.Setenv("AUTH_MODE", "")
	cfg := config.Default()
	cfg.Server.RatePerSec = 0.001
	cfg.Server.RateBurst = 1
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	if rr, _ := postSolve(t, s, solveBody); rr.Code != http.StatusCreated {
		t.Fatalf("first solve: %d", rr.Code)
	}
	if rr, _ := postSolve(t, s, solveBody); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second solve: got %d, want 429", rr.Code)
	}
}
