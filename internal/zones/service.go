package zones

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"beacon/internal/audit"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
	"beacon/pkg/requestcontext"
)

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns safe zone management and the geofence evaluation that location
// ingestion calls into.
type Service struct {
	zones  Store
	audit  AuditPublisher
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func New(zones Store, opts ...Option) *Service {
	s := &Service{
		zones:  zones,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new zone for the guardian.
func (s *Service) Create(ctx context.Context, parentID id.UserID, req CreateRequest) (*SafeZone, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "zone name is required")
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "longitude must be between -180 and 180")
	}
	if req.RadiusMeters < MinRadiusMeters || req.RadiusMeters > MaxRadiusMeters {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "radius must be between 10 and 10000 meters")
	}

	zone := &SafeZone{
		ID:           id.NewZoneID(),
		ParentID:     parentID,
		Name:         name,
		Center:       geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		RadiusMeters: req.RadiusMeters,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create zone")
	}

	s.emit(ctx, audit.Event{
		UserID: parentID,
		Action: string(audit.EventZoneCreated),
		Detail: zone.Name,
	})
	return zone, nil
}

// ListForGuardian returns the guardian's zones, oldest first.
func (s *Service) ListForGuardian(ctx context.Context, parentID id.UserID) ([]*SafeZone, error) {
	zones, err := s.zones.ListByParent(ctx, parentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	return zones, nil
}

// Remove deletes a zone the guardian owns. Someone else's zone looks exactly
// like a missing one, so ownership cannot be probed through this endpoint.
func (s *Service) Remove(ctx context.Context, zoneID id.ZoneID, parentID id.UserID) error {
	if err := s.zones.Delete(ctx, zoneID, parentID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "zone not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete zone")
	}

	s.emit(ctx, audit.Event{
		UserID: parentID,
		Action: string(audit.EventZoneDeleted),
		Detail: zoneID.String(),
	})
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
