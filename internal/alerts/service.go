package alerts

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
	Kids(ctx context.Context, parentID id.UserID) ([]*users.User, error)
}

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the alert trail: location ingestion appends to it, guardians
// read it.
type Service struct {
	alerts  Store
	kids    KidDirectory
	audit   AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
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

func New(alerts Store, kids KidDirectory, opts ...Option) *Service {
	s := &Service{
		alerts: alerts,
		kids:   kids,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Emit appends an alert for the kid and publishes it to the event trail.
func (s *Service) Emit(ctx context.Context, kidID id.UserID, message string) (*Alert, error) {
	alert := &Alert{
		ID:        id.NewAlertID(),
		KidID:     kidID,
		Message:   message,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create alert")
	}

	s.metrics.RecordAlert()
	if s.audit != nil {
		if err := s.audit.Emit(ctx, audit.Event{
			UserID: kidID,
			Action: string(audit.EventAlertRaised),
			Detail: message,
		}); err != nil {
			s.logger.WarnContext(ctx, "audit emit failed", "action", audit.EventAlertRaised, "error", err)
		}
	}
	return alert, nil
}

// ListForGuardian returns every alert across the guardian's kids, newest
// first, joined with kid names.
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

	list, err := s.alerts.ListByKids(ctx, kidIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list alerts")
	}

	out := make([]Response, 0, len(list))
	for _, alert := range list {
		resp := ToResponse(alert)
		resp.KidName = names[alert.KidID]
		out = append(out, resp)
	}
	return out, nil
}
