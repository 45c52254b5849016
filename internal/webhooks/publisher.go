// Package webhooks delivers signed solve-lifecycle notifications to
// configured endpoints through a store-backed retry queue.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vrpsolve/internal/config"
	"vrpsolve/internal/store"
)

// Publisher enqueues one delivery per configured endpoint for each event.
type Publisher struct {
	Store     store.Store
	Endpoints []config.Webhook
}

func NewPublisher(s store.Store, endpoints []config.Webhook) *Publisher {
	return &Publisher{Store: s, Endpoints: endpoints}
}

// Emit queues eventType with the given data for every endpoint. Delivery
// happens asynchronously in the Worker; enqueue failures are dropped and
// delivery stays best effort.
func (p *Publisher) Emit(ctx context.Context, eventType string, data any) {
	if len(p.Endpoints) == 0 {
		return
	}
	payload := map[string]any{
		"id":   fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, ep := range p.Endpoints {
		_, _ = p.Store.EnqueueWebhook(ctx, eventType, ep.URL, ep.Secret, body)
	}
}
