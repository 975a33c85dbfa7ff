package zones

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "beacon/pkg/domain"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
	txcontext "beacon/pkg/platform/tx"
)

// PostgresStore implements Store against the safe_zones table.
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

const zoneColumns = `id, parent_id, name, latitude, longitude, radius_meters, created_at`

func (s *PostgresStore) Create(ctx context.Context, zone *SafeZone) error {
	query := `
		INSERT INTO safe_zones (` + zoneColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(zone.ID),
		uuid.UUID(zone.ParentID),
		zone.Name,
		zone.Center.Latitude,
		zone.Center.Longitude,
		zone.RadiusMeters,
		zone.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert zone: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByParent(ctx context.Context, parentID id.UserID) ([]*SafeZone, error) {
	query := `SELECT ` + zoneColumns + ` FROM safe_zones WHERE parent_id = $1 ORDER BY created_at ASC`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(parentID))
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var out []*SafeZone
	for rows.Next() {
		var (
			zone     SafeZone
			zoneID   uuid.UUID
			ownerID  uuid.UUID
			lat, lon float64
		)
		if err := rows.Scan(&zoneID, &ownerID, &zone.Name, &lat, &lon, &zone.RadiusMeters, &zone.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan zone: %w", err)
		}
		zone.ID = id.ZoneID(zoneID)
		zone.ParentID = id.UserID(ownerID)
		zone.Center = geo.Point{Latitude: lat, Longitude: lon}
		out = append(out, &zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate zones: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, zoneID id.ZoneID, parentID id.UserID) error {
	query := `DELETE FROM safe_zones WHERE id = $1 AND parent_id = $2`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(zoneID), uuid.UUID(parentID))
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete zone rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
