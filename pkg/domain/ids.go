// Package domain holds typed identifiers shared across features. Distinct ID
// types make cross-entity mixups a compile error rather than a data bug.
package domain

import (
	"github.com/google/uuid"

	dErrors "beacon/pkg/domain-errors"
)

type (
	// UserID identifies a guardian or a kid (single users table, role column).
	UserID uuid.UUID
	// ZoneID identifies a safe zone.
	ZoneID uuid.UUID
	// LocationID identifies one location report.
	LocationID uuid.UUID
	// AlertID identifies a persisted alert.
	AlertID uuid.UUID
)

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id ZoneID) String() string     { return uuid.UUID(id).String() }
func (id LocationID) String() string { return uuid.UUID(id).String() }
func (id AlertID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id ZoneID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id LocationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// NewUserID mints a random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewZoneID mints a random zone ID.
func NewZoneID() ZoneID { return ZoneID(uuid.New()) }

// NewLocationID mints a random location report ID.
func NewLocationID() LocationID { return LocationID(uuid.New()) }

// NewAlertID mints a random alert ID.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

func parse(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be nil")
	}
	return parsed, nil
}

// ParseUserID validates raw as a non-nil UUID and returns it typed.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseZoneID validates raw as a non-nil UUID and returns it typed.
func ParseZoneID(raw string) (ZoneID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return ZoneID{}, err
	}
	return ZoneID(parsed), nil
}

// ParseLocationID validates raw as a non-nil UUID and returns it typed.
func ParseLocationID(raw string) (LocationID, error) {
	parsed, err := parse(raw)
	if err != nil {
		return LocationID{}, err
	}
	return LocationID(parsed), nil
}
