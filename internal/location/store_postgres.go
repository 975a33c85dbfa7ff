package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "beacon/pkg/domain"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
	txcontext "beacon/pkg/platform/tx"
)

// PostgresStore implements Store against the location_reports table.
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

const reportColumns = `id, kid_id, latitude, longitude, created_at`

func (s *PostgresStore) Create(ctx context.Context, report *LocationReport) error {
	query := `
		INSERT INTO location_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(report.ID),
		uuid.UUID(report.KidID),
		report.Point.Latitude,
		report.Point.Longitude,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert location report: %w", err)
	}
	return nil
}

func (s *PostgresStore) LatestByKid(ctx context.Context, kidID id.UserID) (*LocationReport, error) {
	// id is the tie-break so equal timestamps resolve deterministically.
	query := `SELECT ` + reportColumns + ` FROM location_reports WHERE kid_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(kidID))

	var (
		report   LocationReport
		reportID uuid.UUID
		rawKidID uuid.UUID
		lat, lon float64
	)
	if err := row.Scan(&reportID, &rawKidID, &lat, &lon, &report.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest location report: %w", err)
	}
	report.ID = id.LocationID(reportID)
	report.KidID = id.UserID(rawKidID)
	report.Point = geo.Point{Latitude: lat, Longitude: lon}
	return &report, nil
}
