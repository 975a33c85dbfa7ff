package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	id "beacon/pkg/domain"
	"beacon/pkg/platform/sentinel"
	txcontext "beacon/pkg/platform/tx"
)

// PostgresStore implements Store against the users table.
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

const userColumns = `id, full_name, role, phone_number, password_hash, parent_id, setup_token, device_platform, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.FullName,
		string(user.Role),
		nullString(user.PhoneNumber),
		nullString(user.PasswordHash),
		nullUserID(user.ParentID),
		user.SetupToken,
		nullString(user.DevicePlatform),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(phone_number) = lower($1)`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, phone))
}

func (s *PostgresStore) FindBySetupToken(ctx context.Context, token string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE setup_token = $1 AND role = $2`
	return s.scanOne(s.execer(ctx).QueryRowContext(ctx, query, token, string(RoleKid)))
}

func (s *PostgresStore) ListKids(ctx context.Context, parentID id.UserID) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE parent_id = $1 ORDER BY created_at`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(parentID))
	if err != nil {
		return nil, fmt.Errorf("list kids: %w", err)
	}
	defer rows.Close()

	var kids []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		kids = append(kids, user)
	}
	return kids, rows.Err()
}

func (s *PostgresStore) ClearSetupToken(ctx context.Context, kidID id.UserID, devicePlatform string, now time.Time) error {
	query := `
		UPDATE users
		SET setup_token = NULL, device_platform = $2, updated_at = $3
		WHERE id = $1 AND setup_token IS NOT NULL
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(kidID), nullString(devicePlatform), now)
	if err != nil {
		return fmt.Errorf("clear setup token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("clear setup token: %w", err)
	}
	if affected == 0 {
		// Either the kid does not exist or the token was already consumed.
		if _, err := s.FindByID(ctx, kidID); err != nil {
			return err
		}
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row *sql.Row) (*User, error) {
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return user, err
}

func scanUser(row rowScanner) (*User, error) {
	var (
		user           User
		rawID          uuid.UUID
		role           string
		phone          sql.NullString
		passwordHash   sql.NullString
		parentID       uuid.NullUUID
		setupToken     sql.NullString
		devicePlatform sql.NullString
	)
	err := row.Scan(
		&rawID,
		&user.FullName,
		&role,
		&phone,
		&passwordHash,
		&parentID,
		&setupToken,
		&devicePlatform,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	user.ID = id.UserID(rawID)
	user.Role = Role(role)
	user.PhoneNumber = phone.String
	user.PasswordHash = passwordHash.String
	user.DevicePlatform = devicePlatform.String
	if parentID.Valid {
		pid := id.UserID(parentID.UUID)
		user.ParentID = &pid
	}
	if setupToken.Valid {
		token := setupToken.String
		user.SetupToken = &token
	}
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUserID(userID *id.UserID) uuid.NullUUID {
	if userID == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*userID), Valid: true}
}
