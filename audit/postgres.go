package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the table the postgres sink writes to. Migrations live with the
// platform's other DDL; the statement is exported so deployments can apply it.
const Schema = `
CREATE TABLE IF NOT EXISTS gateway_audit_log (
    id          BIGSERIAL PRIMARY KEY,
    occurred_at TIMESTAMPTZ NOT NULL,
    outcome     TEXT        NOT NULL,
    request_id  TEXT        NOT NULL,
    method      TEXT        NOT NULL,
    path        TEXT        NOT NULL,
    user_id     TEXT        NOT NULL DEFAULT '',
    code        TEXT        NOT NULL DEFAULT '',
    status      INT         NOT NULL DEFAULT 0
)`

// PostgresSink persists audit events to the gateway_audit_log table. It sits
// behind a Dispatcher, so insert latency never touches the response path.
type PostgresSink struct {
	pool *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) (*PostgresSink, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres audit sink requires a connection pool")
	}
	return &PostgresSink{pool: pool}, nil
}

func (s *PostgresSink) Record(ctx context.Context, event Event) error {
	query := `
		INSERT INTO gateway_audit_log (occurred_at, outcome, request_id, method, path, user_id, code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		event.Time, string(event.Outcome), event.RequestID,
		event.Method, event.Path, event.UserID, event.Code, event.Status,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
