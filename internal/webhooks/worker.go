package webhooks

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"vrpsolve/internal/metrics"
	"vrpsolve/internal/store"
)

// Worker drains the webhook delivery queue on a fixed tick, posting each
// payload with an HMAC signature and exponential backoff on failure.
type Worker struct {
	Store       store.Store
	HTTP        *http.Client
	Stop        chan struct{}
	MaxAttempts int
	Tick        time.Duration
}

func NewWorker(s store.Store) *Worker {
	return &Worker{
		Store:       s,
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		Stop:        make(chan struct{}),
		MaxAttempts: 10,
		Tick:        time.Second,
	}
}

func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(w.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	items, err := w.Store.FetchDueWebhooks(ctx, 50)
	if err != nil || len(items) == 0 {
		return
	}
	for _, it := range items {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
		if err != nil {
			_ = w.Store.MarkWebhook(ctx, it.ID, false, nil, err.Error(), 0)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Event-Type", it.EventType)
		if it.Secret != "" {
			req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
		}
		resp, err := w.HTTP.Do(req)
		success := false
		code := 0
		if err == nil && resp != nil {
			code = resp.StatusCode
			if resp.Body != nil {
				_ = resp.Body.Close()
			}
			success = code >= 200 && code < 300
		}
		lastErr := ""
		if !success && err != nil {
			lastErr = err.Error()
		}
		switch {
		case success:
			metrics.WebhookDeliveries("delivered")
			_ = w.Store.MarkWebhook(ctx, it.ID, true, nil, "", code)
		case it.Attempts+1 >= w.MaxAttempts:
			metrics.WebhookDeliveries("failed")
			_ = w.Store.MarkWebhook(ctx, it.ID, false, nil, lastErr, code)
		default:
			next := time.Now().Add(nextBackoff(it.Attempts))
			_ = w.Store.MarkWebhook(ctx, it.ID, false, &next, lastErr, code)
		}
	}
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
