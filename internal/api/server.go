// Package api implements the HTTP surface of the solve service: solve
// submission and retrieval, progress streaming over SSE and WebSocket, and
// the health and readiness probes.
package api

import (
	"context"
	"os"
	"strings"

	"golang.org/x/time/rate"

	"vrpsolve/internal/auth"
	"vrpsolve/internal/config"
	"vrpsolve/internal/store"
	"vrpsolve/internal/webhooks"
)

type Server struct {
	Cfg     config.Config
	Store   store.Store
	Pub     *webhooks.Publisher
	Auth    *auth.Verifier
	Broker  EventBroker
	Limiter *rate.Limiter
}

// NewServer wires the service from its configuration. Without a database
// URL the in-memory store is used; without a Redis URL progress events fan
// out in process only.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.Server.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(cfg.Server.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := pg.Migrate(context.Background()); err != nil {
				return nil, err
			}
		}
		s = pg
	}
	var broker EventBroker
	if cfg.Server.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.Server.RedisURL)
		if err != nil {
			return nil, err
		}
		broker = rb
	} else {
		broker = NewBroker()
	}
	limit := rate.Inf
	if cfg.Server.RatePerSec > 0 {
		limit = rate.Limit(cfg.Server.RatePerSec)
	}
	return &Server{
		Cfg:     cfg,
		Store:   s,
		Pub:     webhooks.NewPublisher(s, cfg.Webhooks),
		Auth:    auth.NewVerifier(cfg.Server.AuthToken),
		Broker:  broker,
		Limiter: rate.NewLimiter(limit, cfg.Server.RateBurst),
	}, nil
}

// NewWebhookWorker creates the background worker draining the delivery queue.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}
