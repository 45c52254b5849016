package store

import (
	"context"
	"testing"
	"time"

	"vrpsolve/internal/model"
)

func TestMemorySolveLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	rec, err := m.CreateSolve(ctx, model.SolveRecord{Status: model.SolveRunning})
	if err != nil {
		t.Fatalf("CreateSolve: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("id/createdAt not assigned: %+v", rec)
	}

	rec.Status = model.SolveCompleted
	rec.Solution = &model.SolutionDoc{TotalDeliveryDuration: 2, Routes: map[string]model.RouteOut{}}
	if err := m.UpdateSolve(ctx, rec); err != nil {
		t.Fatalf("UpdateSolve: %v", err)
	}

	got, err := m.GetSolve(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetSolve: %v", err)
	}
	if got.Status != model.SolveCompleted || got.Solution == nil {
		t.Fatalf("updated record not returned: %+v", got)
	}

	if _, err := m.GetSolve(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("GetSolve missing: got %v, want ErrNotFound", err)
	}
	if err := m.UpdateSolve(ctx, model.SolveRecord{ID: "missing"}); err != ErrNotFound {
		t.Fatalf("UpdateSolve missing: got %v, want ErrNotFound", err)
	}
}

func TestMemoryListSolvesPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.CreateSolve(ctx, model.SolveRecord{Status: model.SolveCompleted}); err != nil {
			t.Fatalf("CreateSolve: %v", err)
		}
	}
	page1, next, err := m.ListSolves(ctx, "", 2)
	if err != nil {
		t.Fatalf("ListSolves: %v", err)
	}
	if len(page1) != 2 || next == "" {
		t.Fatalf("page1: %d items, cursor %q", len(page1), next)
	}
	page2, next2, err := m.ListSolves(ctx, next, 2)
	if err != nil {
		t.Fatalf("ListSolves page2: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("page2: %d items", len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Fatal("pages overlap")
	}
	page3, next3, err := m.ListSolves(ctx, next2, 2)
	if err != nil {
		t.Fatalf("ListSolves page3: %v", err)
	}
	if len(page3) != 1 || next3 != "" {
		t.Fatalf("page3: %d items, cursor %q", len(page3), next3)
	}
}

func TestMemoryWebhookQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.EnqueueWebhook(ctx, "solve.completed", "http://example.com", "s", []byte(`{}`))
	if err != nil {
		t.Fatalf("EnqueueWebhook: %v", err)
	}

	due, err := m.FetchDueWebhooks(ctx, 10)
	if err != nil || len(due) != 1 {
		t.Fatalf("FetchDueWebhooks: %v, %d items", err, len(due))
	}
	if due[0].ID != id || due[0].Status != "pending" {
		t.Fatalf("unexpected delivery: %+v", due[0])
	}

	// Retry pushes the next attempt into the future; the item drops out of
	// the due set.
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhook(ctx, id, false, &next, "boom", 500); err != nil {
		t.Fatalf("MarkWebhook retry: %v", err)
	}
	due, _ = m.FetchDueWebhooks(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("retried delivery still due: %+v", due)
	}

	if err := m.MarkWebhook(ctx, id, true, nil, "", 200); err != nil {
		t.Fatalf("MarkWebhook success: %v", err)
	}
	if m.deliveries[id].Status != "delivered" || m.deliveries[id].Attempts != 2 {
		t.Fatalf("final state: %+v", m.deliveries[id])
	}

	if err := m.MarkWebhook(ctx, "missing", true, nil, "", 0); err != ErrNotFound {
		t.Fatalf("MarkWebhook missing: got %v", err)
	}
}
