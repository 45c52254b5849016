// Package store persists solve runs and the webhook delivery queue.
package store

import (
	"context"
	"errors"
	"time"

	"vrpsolve/internal/model"
)

// Store is the persistence interface used by the solve service. The memory
// implementation backs tests and single-node runs; Postgres is selected
// when DATABASE_URL is set.
type Store interface {
	// Solves
	CreateSolve(ctx context.Context, rec model.SolveRecord) (model.SolveRecord, error)
	UpdateSolve(ctx context.Context, rec model.SolveRecord) error
	GetSolve(ctx context.Context, id string) (model.SolveRecord, error)
	ListSolves(ctx context.Context, cursor string, limit int) ([]model.SolveRecord, string, error)

	// Webhook delivery queue
	EnqueueWebhook(ctx context.Context, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhooks(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhook(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error
}

// WebhookDelivery is one queued outbound notification.
type WebhookDelivery struct {
	ID            string
	EventType     string
	URL           string
	Secret        string
	Payload       []byte
	Status        string // pending, delivered, failed
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
}

var ErrNotFound = errors.New("not found")
