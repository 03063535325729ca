package eventstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freelancing-solutions/jobfinders-mvp-sub006/pkg/event"
)

// PostgresStore implements Store on a pgx connection pool. The backing
// table is created by the realtime_events goose migration.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed event store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(ctx context.Context, rec Record) error {
	// ON CONFLICT DO NOTHING keeps duplicate admission idempotent.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO realtime_events (id, kind, user_id, payload, priority, created_at, processed)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, string(rec.Kind), rec.UserID, []byte(rec.Payload), string(rec.Priority), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresStore) FindUnprocessed(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, kind, user_id, payload, priority, created_at, processed, processed_at
		FROM realtime_events
		WHERE processed = false
		ORDER BY created_at ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var kind, priority string
		if err := rows.Scan(&r.ID, &kind, &r.UserID, &r.Payload, &priority, &r.CreatedAt, &r.Processed, &r.ProcessedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		r.Kind = event.Kind(kind)
		r.Priority = event.Priority(priority)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return out, nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE realtime_events
		SET processed = true, processed_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// PostgresDeadLetterStore implements DeadLetterStore on a pgx pool.
type PostgresDeadLetterStore struct {
	pool *pgxpool.Pool
}

// NewPostgresDeadLetterStore creates a Postgres-backed dead-letter store.
func NewPostgresDeadLetterStore(pool *pgxpool.Pool) (*PostgresDeadLetterStore, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	return &PostgresDeadLetterStore{pool: pool}, nil
}

func (s *PostgresDeadLetterStore) Create(ctx context.Context, dl DeadLetter) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO realtime_dead_letters (event_id, kind, user_id, payload, error, retry_count, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING`,
		dl.EventID, string(dl.Kind), dl.UserID, []byte(dl.Payload), dl.Error, dl.RetryCount, dl.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	return nil
}

func (s *PostgresDeadLetterStore) List(ctx context.Context, limit, offset int) ([]DeadLetter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, kind, user_id, payload, error, retry_count, failed_at
		FROM realtime_dead_letters
		ORDER BY failed_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []DeadLetter
	for rows.Next() {
		var dl DeadLetter
		var kind string
		if err := rows.Scan(&dl.EventID, &kind, &dl.UserID, &dl.Payload, &dl.Error, &dl.RetryCount, &dl.FailedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
		dl.Kind = event.Kind(kind)
		out = append(out, dl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return out, nil
}
