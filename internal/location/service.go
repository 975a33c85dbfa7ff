package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"beacon/internal/alerts"
	"beacon/internal/platform/metrics"
	"beacon/internal/users"
	"beacon/internal/zones"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/geo"
	"beacon/pkg/platform/sentinel"
	"beacon/pkg/requestcontext"
)

var tracer = otel.Tracer("beacon/internal/location")

// Geofence evaluation outcomes, used as metric labels.
const (
	outcomeInside  = "inside"
	outcomeOutside = "outside"
	outcomeNoZones = "no_zones"
)

// KidDirectory is the slice of the users service this service needs.
type KidDirectory interface {
	FindByID(ctx context.Context, userID id.UserID) (*users.User, error)
	Kids(ctx context.Context, parentID id.UserID) ([]*users.User, error)
}

// ZoneLister provides a guardian's zones for geofence evaluation.
type ZoneLister interface {
	ListForGuardian(ctx context.Context, parentID id.UserID) ([]*zones.SafeZone, error)
}

// AlertEmitter raises out-of-zone alerts.
type AlertEmitter interface {
	Emit(ctx context.Context, kidID id.UserID, message string) (*alerts.Alert, error)
}

// Service owns the location ingestion hot path and the guardian read paths.
type Service struct {
	reports Store
	kids    KidDirectory
	zones   ZoneLister
	alerts  AlertEmitter
	cache   *Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithCache enables the Redis latest-location cache.
func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(reports Store, kids KidDirectory, zones ZoneLister, alerts AlertEmitter, opts ...Option) *Service {
	s := &Service{
		reports: reports,
		kids:    kids,
		zones:   zones,
		alerts:  alerts,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record ingests one GPS fix from a kid's device: persist the report, check
// it against the guardian's zones, and raise an alert when the kid has just
// left all of them.
//
// Nothing is persisted for a kid with no guardian. An alert fires only on
// the inside-to-outside transition (or on a first-ever report that lands
// outside), so a kid staying outside does not flood the guardian.
func (s *Service) Record(ctx context.Context, kidID id.UserID, req ReportRequest) (*LocationReport, error) {
	ctx, span := tracer.Start(ctx, "location.Record",
		trace.WithAttributes(attribute.String("kid_id", kidID.String())))
	defer span.End()

	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "latitude must be between -90 and 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "longitude must be between -180 and 180")
	}

	kid, err := s.kids.FindByID(ctx, kidID)
	if err != nil {
		return nil, err
	}
	if kid.Role != users.RoleKid {
		return nil, dErrors.New(dErrors.CodeForbidden, "only kids report locations")
	}
	if kid.ParentID == nil {
		return nil, dErrors.New(dErrors.CodeInvalidState, "kid has no guardian")
	}

	previous, err := s.reports.LatestByKid(ctx, kidID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load previous report")
	}

	report := &LocationReport{
		ID:        id.NewLocationID(),
		KidID:     kidID,
		Point:     geo.Point{Latitude: req.Latitude, Longitude: req.Longitude},
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist report")
	}

	s.metrics.RecordLocation()
	s.cacheLatest(ctx, report)

	zoneList, err := s.zones.ListForGuardian(ctx, *kid.ParentID)
	if err != nil {
		return nil, err
	}
	if len(zoneList) == 0 {
		s.metrics.ObserveEvaluation(outcomeNoZones)
		return report, nil
	}

	eval := zones.Evaluate(report.Point, zoneList)
	if eval.Inside {
		s.metrics.ObserveEvaluation(outcomeInside)
		span.SetAttributes(attribute.String("zone", eval.Zone.Name))
		return report, nil
	}
	s.metrics.ObserveEvaluation(outcomeOutside)

	if previous != nil && !zones.Evaluate(previous.Point, zoneList).Inside {
		// Still outside, already alerted on the transition.
		return report, nil
	}

	message := fmt.Sprintf("%s left all safe zones", kid.FullName)
	if _, err := s.alerts.Emit(ctx, kidID, message); err != nil {
		// The report is already persisted; losing the alert is worth a log,
		// not a failed ingestion.
		s.logger.ErrorContext(ctx, "failed to emit alert",
			"kid_id", kidID,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return report, nil
}

// Latest returns the kid's most recent report for their guardian.
func (s *Service) Latest(ctx context.Context, parentID, kidID id.UserID) (*LocationReport, error) {
	kid, err := s.kids.FindByID(ctx, kidID)
	if err != nil {
		return nil, err
	}
	if kid.ParentID == nil || *kid.ParentID != parentID {
		return nil, dErrors.New(dErrors.CodeNotFound, "kid not found")
	}
	return s.latestFor(ctx, kidID)
}

// LatestForGuardian returns the most recent report for each of the
// guardian's kids, fetched in parallel. Kids that never reported are
// skipped.
func (s *Service) LatestForGuardian(ctx context.Context, parentID id.UserID) ([]KidLatest, error) {
	kids, err := s.kids.Kids(ctx, parentID)
	if err != nil {
		return nil, err
	}

	results := make([]*KidLatest, len(kids))
	g, gctx := errgroup.WithContext(ctx)
	for i, kid := range kids {
		g.Go(func() error {
			report, err := s.latestFor(gctx, kid.ID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					return nil
				}
				return err
			}
			results[i] = &KidLatest{
				KidID:     kid.ID.String(),
				KidName:   kid.FullName,
				Latitude:  report.Point.Latitude,
				Longitude: report.Point.Longitude,
				CreatedAt: report.CreatedAt,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]KidLatest, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].KidName < out[j].KidName })
	return out, nil
}

func (s *Service) latestFor(ctx context.Context, kidID id.UserID) (*LocationReport, error) {
	if s.cache != nil {
		if report, err := s.cache.Get(ctx, kidID); err == nil {
			return report, nil
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "latest-location cache read failed", "kid_id", kidID, "error", err)
		}
	}

	report, err := s.reports.LatestByKid(ctx, kidID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no location reported yet")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest report")
	}
	s.cacheLatest(ctx, report)
	return report, nil
}

// cacheLatest is best effort: a dead Redis degrades reads to the store.
func (s *Service) cacheLatest(ctx context.Context, report *LocationReport) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, report); err != nil {
		s.logger.WarnContext(ctx, "latest-location cache write failed", "kid_id", report.KidID, "error", err)
	}
}
