package users

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"beacon/internal/audit"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/platform/sentinel"
	"beacon/pkg/requestcontext"
)

// phonePattern accepts E.164-ish numbers: optional +, 7 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// AuditPublisher is the slice of the audit publisher this service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns the user directory: guardian accounts and the kids that
// reference them.
type Service struct {
	users  Store
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

func New(users Store, opts ...Option) *Service {
	s := &Service{
		users:  users,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParent registers a guardian account. The caller (auth service) hashes
// the password; this layer never sees the plaintext.
func (s *Service) CreateParent(ctx context.Context, fullName, phone, passwordHash string) (*User, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)

	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if !phonePattern.MatchString(phone) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "phone number must be 7-15 digits")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password hash is required")
	}

	now := requestcontext.Now(ctx)
	parent := &User{
		ID:           id.NewUserID(),
		FullName:     fullName,
		Role:         RoleParent,
		PhoneNumber:  phone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, parent); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "phone number already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create parent")
	}

	s.emit(ctx, audit.Event{
		UserID: parent.ID,
		Action: string(audit.EventParentRegistered),
	})
	return parent, nil
}

// CreateKid registers a kid under the given parent and mints its one-time
// setup token for device pairing.
func (s *Service) CreateKid(ctx context.Context, parentID id.UserID, fullName string) (*User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}

	parent, err := s.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Role != RoleParent {
		return nil, dErrors.New(dErrors.CodeForbidden, "only parents can register kids")
	}

	now := requestcontext.Now(ctx)
	token := uuid.NewString()
	kid := &User{
		ID:         id.NewUserID(),
		FullName:   fullName,
		Role:       RoleKid,
		ParentID:   &parentID,
		SetupToken: &token,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, kid); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create kid")
	}

	s.emit(ctx, audit.Event{
		UserID:  kid.ID,
		Action:  string(audit.EventKidRegistered),
		ActorID: parentID.String(),
	})
	return kid, nil
}

// Kids lists all kids registered under the given parent.
func (s *Service) Kids(ctx context.Context, parentID id.UserID) ([]*User, error) {
	kids, err := s.users.ListKids(ctx, parentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list kids")
	}
	return kids, nil
}

// FindByID resolves any user by ID.
func (s *Service) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find user")
	}
	return user, nil
}

// FindByPhone resolves a guardian by phone number.
func (s *Service) FindByPhone(ctx context.Context, phone string) (*User, error) {
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find user")
	}
	return user, nil
}

// FindBySetupToken resolves an unclaimed kid by its pairing token.
func (s *Service) FindBySetupToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "setup token is required")
	}
	kid, err := s.users.FindBySetupToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "setup token not recognized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve setup token")
	}
	return kid, nil
}

// ClaimDevice consumes a kid's setup token, making it single use, and records
// which device platform paired. The description ends up as the audit detail
// line ("Chrome on Android 14"); the platform is what the user row stores.
func (s *Service) ClaimDevice(ctx context.Context, kidID id.UserID, devicePlatform, deviceDescription string) error {
	now := requestcontext.Now(ctx)
	if err := s.users.ClearSetupToken(ctx, kidID, devicePlatform, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "kid not found")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return dErrors.New(dErrors.CodeConflict, "setup token already claimed")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim device")
		}
	}

	if deviceDescription == "" {
		deviceDescription = devicePlatform
	}
	s.emit(ctx, audit.Event{
		UserID: kidID,
		Action: string(audit.EventDeviceClaimed),
		Detail: deviceDescription,
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
