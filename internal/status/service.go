package status

import (
	"context"
	"log/slog"

	"beacon/internal/audit"
	"beacon/internal/platform/metrics"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/requestcontext"
)

// KidDirectory is the slice of the users service this service needs.
type KidDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*users.User, error)
	Kids(ctx context.Context, parentID id.UserID) ([]*users.User, error)
}

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the kid safety self-report flow.
type Service struct {
	statuses Store
	kids     KidDirectory
	audit    AuditPublisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(statuses Store, kids KidDirectory, opts ...Option) *Service {
	s := &Service{
		statuses: statuses,
		kids:     kids,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkSafe records that the kid reported themselves safe. Idempotent: the
// single status row just gets a fresh timestamp.
func (s *Service) MarkSafe(ctx context.Context, kidID id.UserID) (*SafetyStatus, error) {
	kid, err := s.kids.FindByID(ctx, kidID)
	if err != nil {
		return nil, err
	}
	if kid.Role != users.RoleKid {
		return nil, dErrors.New(dErrors.CodeForbidden, "only kids can mark themselves safe")
	}

	status := &SafetyStatus{
		KidID:     kidID,
		IsSafe:    true,
		UpdatedAt: requestcontext.Now(ctx),
	}
	if err := s.statuses.Upsert(ctx, status); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record safety status")
	}

	s.metrics.RecordSafetyReport()
	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			UserID: kidID,
			Action: string(audit.EventKidMarkedSafe),
		}); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", audit.EventKidMarkedSafe, "error", err)
		}
	}
	return status, nil
}

// ListForGuardian returns safety statuses across the guardian's kids. Kids
// that never reported are absent.
func (s *Service) ListForGuardian(ctx context.Context, parentID id.UserID) ([]Response, error) {
	kids, err := s.kids.Kids(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(kids) == 0 {
		return []Response{}, nil
	}

	kidIDs := make([]id.UserID, len(kids))
	names := make(map[id.UserID]string, len(kids))
	for i, kid := range kids {
		kidIDs[i] = kid.ID
		names[kid.ID] = kid.FullName
	}

	list, err := s.statuses.ListByKids(ctx, kidIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list safety statuses")
	}

	out := make([]Response, 0, len(list))
	for _, status := range list {
		resp := ToResponse(status)
		resp.KidName = names[status.KidID]
		out = append(out, resp)
	}
	return out, nil
}
