package repository

import (
	"context"
	"time"

	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/pkg/logger"
	"github.com/jmoiron/sqlx"
)

// PostgresIdempotencyStore keeps idempotency keys in Postgres; rows are
// removed by Cleanup once older than the retention window.
type PostgresIdempotencyStore struct {
	db      *sqlx.DB
	timeout time.Duration
}

type idempotencyRow struct {
	Status     int       `db:"status_code"`
	Body       []byte    `db:"response_body"`
	CreatedAt  time.Time `db:"created_at"`
	Processing bool      `db:"processing"`
}

func NewPostgresIdempotencyStore(db *sqlx.DB) *PostgresIdempotencyStore {
	store := &PostgresIdempotencyStore{db: db, timeout: 2 * time.Second}
	_ = store.ensureSchema(context.Background())
	return store
}

func (s *PostgresIdempotencyStore) GetOrLock(key string) (*middleware.IdempotencyRecord, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, processing, created_at)
		VALUES ($1, true, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, time.Now().UTC())
	if err != nil {
		logger.Warn("idempotency lock failed", "error", err)
		return nil, false
	}
	if rows, _ := result.RowsAffected(); rows > 0 {
		return nil, false
	}

	var row idempotencyRow
	err = s.db.GetContext(ctx, &row, `
		SELECT status_code, response_body, created_at, processing
		FROM idempotency_keys
		WHERE key = $1
	`, key)
	if err != nil {
		return nil, false
	}
	return &middleware.IdempotencyRecord{
		Status:     row.Status,
		Body:       row.Body,
		CreatedAt:  row.CreatedAt,
		Processing: row.Processing,
	}, true
}

func (s *PostgresIdempotencyStore) Save(key string, status int, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, `
		UPDATE idempotency_keys
		SET status_code = $2, response_body = $3, processing = false
		WHERE key = $1
	`, key, status, body)
	if err != nil {
		logger.Warn("idempotency save failed", "error", err)
	}
}

func (s *PostgresIdempotencyStore) Unlock(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, _ = s.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
}

func (s *PostgresIdempotencyStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS idempotency_keys (
			key TEXT PRIMARY KEY,
			status_code INTEGER NOT NULL DEFAULT 0,
			response_body BYTEA,
			processing BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return err
	}
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_idempotency_keys_created ON idempotency_keys(created_at)`)
	return nil
}

func (s *PostgresIdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	_, err := s.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	return err
}
