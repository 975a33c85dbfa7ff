package alerts

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

// PostgresStore implements Store against the alerts table.
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

const alertColumns = `id, kid_id, message, created_at`

func (s *PostgresStore) Create(ctx context.Context, alert *Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(alert.ID),
		uuid.UUID(alert.KidID),
		alert.Message,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByKids(ctx context.Context, kidIDs []id.UserID) ([]*Alert, error) {
	if len(kidIDs) == 0 {
		return nil, nil
	}

	raw := make([]string, len(kidIDs))
	for i, kidID := range kidIDs {
		raw[i] = kidID.String()
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE kid_id = ANY($1::uuid[]) ORDER BY created_at DESC, id DESC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var out []*Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alerts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LatestByKid(ctx context.Context, kidID id.UserID) (*Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE kid_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(kidID))
	if err != nil {
		return nil, fmt.Errorf("latest alert: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("latest alert: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	return scanAlert(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (*Alert, error) {
	var (
		alert   Alert
		alertID uuid.UUID
		kidID   uuid.UUID
	)
	if err := row.Scan(&alertID, &kidID, &alert.Message, &alert.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan alert: %w", err)
	}
	alert.ID = id.AlertID(alertID)
	alert.KidID = id.UserID(kidID)
	return &alert, nil
}
