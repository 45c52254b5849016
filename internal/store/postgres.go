package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/google/uuid"

	"vrpsolve/internal/model"
)

// Postgres persists solves and the webhook queue via the pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Migrate creates the schema if it does not exist yet (dev helper, same as
// running the statements by hand in production).
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS solves (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			params JSONB NOT NULL DEFAULT '{}',
			solution JSONB,
			metrics JSONB,
			error TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS solves_created_idx ON solves (created_at DESC, id)`,
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT NOT NULL DEFAULT '',
			payload BYTEA NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			next_attempt_at TIMESTAMPTZ NOT NULL,
			last_error TEXT NOT NULL DEFAULT '',
			response_code INT NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS webhook_due_idx ON webhook_deliveries (status, next_attempt_at)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (p *Postgres) CreateSolve(ctx context.Context, rec model.SolveRecord) (model.SolveRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	params, solution, metrics, err := marshalSolveFields(rec)
	if err != nil {
		return model.SolveRecord{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO solves (id, status, created_at, params, solution, metrics, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Status, rec.CreatedAt, params, solution, metrics, rec.Error)
	if err != nil {
		return model.SolveRecord{}, err
	}
	return rec, nil
}

func (p *Postgres) UpdateSolve(ctx context.Context, rec model.SolveRecord) error {
	params, solution, metrics, err := marshalSolveFields(rec)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE solves SET status = $2, params = $3, solution = $4, metrics = $5, error = $6 WHERE id = $1`,
		rec.ID, rec.Status, params, solution, metrics, rec.Error)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetSolve(ctx context.Context, id string) (model.SolveRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, status, created_at, params, solution, metrics, error FROM solves WHERE id = $1`, id)
	rec, err := scanSolve(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveRecord{}, ErrNotFound
	}
	return rec, err
}

func (p *Postgres) ListSolves(ctx context.Context, cursor string, limit int) ([]model.SolveRecord, string, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT id, status, created_at, params, solution, metrics, error FROM solves`
	args := []any{}
	if cursor != "" {
		query += ` WHERE (created_at, id) < (SELECT created_at, id FROM solves WHERE id = $1)`
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT %d`, limit)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = rows.Close() }()
	out := []model.SolveRecord{}
	for rows.Next() {
		rec, err := scanSolve(rows)
		if err != nil {
			return nil, "", err
		}
		out = append(out, rec)
	}
	next := ""
	if len(out) == limit {
		next = out[len(out)-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, event_type, url, secret, payload, next_attempt_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		id, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhooks(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, event_type, url, secret, payload, status, attempts, next_attempt_at, last_error, response_code
		 FROM webhook_deliveries
		 WHERE status = 'pending' AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []WebhookDelivery{}
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status,
			&d.Attempts, &d.NextAttemptAt, &d.LastError, &d.ResponseCode); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhook(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
	status := "pending"
	if success {
		status = "delivered"
	} else if nextAttemptAt == nil {
		status = "failed"
	}
	var next any
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status = $2, attempts = attempts + 1, last_error = $3, response_code = $4,
		     next_attempt_at = COALESCE($5, next_attempt_at)
		 WHERE id = $1`,
		id, status, lastError, responseCode, next)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanSolve(r rowScanner) (model.SolveRecord, error) {
	var rec model.SolveRecord
	var params, solution, metrics []byte
	if err := r.Scan(&rec.ID, &rec.Status, &rec.CreatedAt, &params, &solution, &metrics, &rec.Error); err != nil {
		return model.SolveRecord{}, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &rec.Params); err != nil {
			return model.SolveRecord{}, err
		}
	}
	if len(solution) > 0 {
		rec.Solution = &model.SolutionDoc{}
		if err := json.Unmarshal(solution, rec.Solution); err != nil {
			return model.SolveRecord{}, err
		}
	}
	if len(metrics) > 0 {
		rec.Metrics = &model.SolveMetrics{}
		if err := json.Unmarshal(metrics, rec.Metrics); err != nil {
			return model.SolveRecord{}, err
		}
	}
	return rec, nil
}

func marshalSolveFields(rec model.SolveRecord) (params, solution, metrics []byte, err error) {
	if params, err = json.Marshal(rec.Params); err != nil {
		return
	}
	if rec.Solution != nil {
		if solution, err = json.Marshal(rec.Solution); err != nil {
			return
		}
	}
	if rec.Metrics != nil {
		metrics, err = json.Marshal(rec.Metrics)
	}
	return
}
