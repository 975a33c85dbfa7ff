package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
	txcontext "beacon/pkg/platform/tx"
)

// PostgresStore implements Store against the safety_statuses table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Upsert(ctx context.Context, status *SafetyStatus) error {
	query := `
		INSERT INTO safety_statuses (kid_id, is_safe, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (kid_id) DO UPDATE SET is_safe = EXCLUDED.is_safe, updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(status.KidID),
		status.IsSafe,
		status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert safety status: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByKid(ctx context.Context, kidID id.UserID) (*SafetyStatus, error) {
	query := `SELECT kid_id, is_safe, updated_at FROM safety_statuses WHERE kid_id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(kidID))

	var (
		status SafetyStatus
		rawID  uuid.UUID
	)
	if err := row.Scan(&rawID, &status.IsSafe, &status.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find safety status: %w", err)
	}
	status.KidID = id.UserID(rawID)
	return &status, nil
}

func (s *PostgresStore) ListByKids(ctx context.Context, kidIDs []id.UserID) ([]*SafetyStatus, error) {
	if len(kidIDs) == 0 {
		return nil, nil
	}

	raw := make([]string, len(kidIDs))
	for i, kidID := range kidIDs {
		raw[i] = kidID.String()
	}

	query := `SELECT kid_id, is_safe, updated_at FROM safety_statuses WHERE kid_id = ANY($1::uuid[]) ORDER BY updated_at DESC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("list safety statuses: %w", err)
	}
	defer rows.Close()

	var out []*SafetyStatus
	for rows.Next() {
		var (
			status SafetyStatus
			rawID  uuid.UUID
		)
		if err := rows.Scan(&rawID, &status.IsSafe, &status.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan safety status: %w", err)
		}
		status.KidID = id.UserID(rawID)
		out = append(out, &status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate safety statuses: %w", err)
	}
	return out, nil
}
