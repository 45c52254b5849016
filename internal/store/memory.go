package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"vrpsolve/internal/model"
)

// Memory is the in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	solves     map[string]model.SolveRecord
	solveOrder []string // newest first

	deliveries map[string]*WebhookDelivery
	queue      []string
}

func NewMemory() *Memory {
	return &Memory{
		solves:     map[string]model.SolveRecord{},
		deliveries: map[string]*WebhookDelivery{},
	}
}

func (m *Memory) CreateSolve(_ context.Context, rec model.SolveRecord) (model.SolveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.solves[rec.ID] = rec
	m.solveOrder = append([]string{rec.ID}, m.solveOrder...)
	return rec, nil
}

func (m *Memory) UpdateSolve(_ context.Context, rec model.SolveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.solves[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = old.CreatedAt
	}
	m.solves[rec.ID] = rec
	return nil
}

func (m *Memory) GetSolve(_ context.Context, id string) (model.SolveRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.solves[id]
	if !ok {
		return model.SolveRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) ListSolves(_ context.Context, cursor string, limit int) ([]model.SolveRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	start := 0
	if cursor != "" {
		for i, id := range m.solveOrder {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []model.SolveRecord{}
	next := ""
	for i := start; i < len(m.solveOrder) && len(out) < limit; i++ {
		out = append(out, m.solves[m.solveOrder[i]])
	}
	if start+len(out) < len(m.solveOrder) && len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (m *Memory) EnqueueWebhook(_ context.Context, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &WebhookDelivery{
		ID:            id,
		EventType:     eventType,
		URL:           url,
		Secret:        secret,
		Payload:       payload,
		Status:        "pending",
		NextAttemptAt: time.Now().UTC(),
	}
	m.queue = append(m.queue, id)
	return id, nil
}

func (m *Memory) FetchDueWebhooks(_ context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	now := time.Now().UTC()
	out := []WebhookDelivery{}
	for _, id := range m.queue {
		d := m.deliveries[id]
		if d.Status != "pending" || d.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, *d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhook(_ context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	switch {
	case success:
		d.Status = "delivered"
	case nextAttemptAt != nil:
		d.NextAttemptAt = *nextAttemptAt
	default:
		d.Status = "failed"
	}
	return nil
}
