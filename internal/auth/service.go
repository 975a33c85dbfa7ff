package auth

import (
	"context"
	"log/slog"
	"time"

	"beacon/internal/auth/device"
	"beacon/internal/auth/secrets"
	"beacon/internal/users"
	id "beacon/pkg/domain"
	dErrors "beacon/pkg/domain-errors"
	"beacon/pkg/requestcontext"
)

const minPasswordLength = 8

// UserDirectory is the slice of the users service the auth flows need.
type UserDirectory interface {
	CreateParent(ctx context.Context, fullName, phone, passwordHash string) (*users.User, error)
	FindByPhone(ctx context.Context, phone string) (*users.User, error)
	FindBySetupToken(ctx context.Context, token string) (*users.User, error)
	ClaimDevice(ctx context.Context, kidID id.UserID, devicePlatform, deviceDescription string) error
}

// TokenGenerator mints signed access tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID id.UserID, role string, expiresIn time.Duration) (string, error)
}

// Service implements the registration and login flows for both roles.
type Service struct {
	users    UserDirectory
	tokens   TokenGenerator
	tokenTTL time.Duration
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(users UserDirectory, tokens TokenGenerator, tokenTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterParent creates a guardian account and logs it straight in.
func (s *Service) RegisterParent(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	if len(req.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}

	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	parent, err := s.users.CreateParent(ctx, req.FullName, req.PhoneNumber, hash)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "parent registered",
		"user_id", parent.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.tokenResponse(parent)
}

// Login authenticates a guardian by phone number and password. Unknown phone
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	parent, err := s.users.FindByPhone(ctx, req.PhoneNumber)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid phone number or password")
		}
		return nil, err
	}
	if parent.Role != users.RoleParent {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid phone number or password")
	}
	if err := secrets.Verify(req.Password, parent.PasswordHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid phone number or password")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "parent logged in",
		"user_id", parent.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.tokenResponse(parent)
}

// LoginKid exchanges a one-time setup token for a kid access token, consuming
// the token and recording the claiming device's platform.
func (s *Service) LoginKid(ctx context.Context, req KidLoginRequest) (*TokenResponse, error) {
	kid, err := s.users.FindBySetupToken(ctx, req.SetupToken)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "setup token is invalid or already used")
		}
		return nil, err
	}

	rawUA := requestcontext.UserAgent(ctx)
	platform := device.Platform(rawUA)
	if err := s.users.ClaimDevice(ctx, kid.ID, platform, device.Description(rawUA)); err != nil {
		// A concurrent claim can consume the token between lookup and claim.
		if dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "setup token is invalid or already used")
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "kid device paired",
		"user_id", kid.ID,
		"platform", platform,
		"request_id", requestcontext.RequestID(ctx),
	)
	return s.tokenResponse(kid)
}

func (s *Service) tokenResponse(user *users.User) (*TokenResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role), s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint access token")
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        users.ToResponse(user),
	}, nil
}
