// Package service implements the identity operations: registration, password
// authentication, and provisioning of federated accounts.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	identitymetrics "pantry/internal/identity/metrics"
	"pantry/internal/identity/models"
	"pantry/internal/identity/secrets"
	"pantry/internal/identity/store"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/email"
	"pantry/pkg/platform/sentinel"
	"pantry/pkg/requestcontext"
)

// provisionAttempts bounds how many derived usernames are tried before a
// federated provisioning conflict is reported.
const provisionAttempts = 4

// invalidCredentialsMsg is shared by every authentication failure path so the
// response never reveals whether the username or the password was wrong.
const invalidCredentialsMsg = "invalid username or password"

// Service orchestrates user lifecycle operations over a UserStore.
type Service struct {
	users   store.UserStore
	logger  *slog.Logger
	metrics *identitymetrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the identity metrics.
func WithMetrics(m *identitymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(users store.UserStore, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a password-backed account. The raw credential is hashed
// before it reaches the store; a taken username reports a conflict.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := models.NewUser(id.NewUserID(), username, hash, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.users.CreateIfAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username is already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.IncRegistered()
	return user, nil
}

// Authenticate verifies a username/password pair and returns the account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.IncLoginFailure()
		return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentialsMsg)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncLoginFailure()
			return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentialsMsg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if user.PasswordHash == "" {
		// Federated account without a local credential.
		s.metrics.IncLoginFailure()
		return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentialsMsg)
	}

	if err := secrets.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, secrets.ErrMismatch) {
			s.metrics.IncLoginFailure()
			return nil, dErrors.New(dErrors.CodeUnauthorized, invalidCredentialsMsg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credential")
	}

	return user, nil
}

// ResolveOrCreateByEmail returns the account bound to a verified email,
// provisioning one on first login. The default username is the email local
// part; collisions retry with a short random suffix before giving up.
func (s *Service) ResolveOrCreateByEmail(ctx context.Context, address string) (*models.User, error) {
	if !email.IsValid(address) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "email address is malformed")
	}

	existing, err := s.users.FindByEmail(ctx, address)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	base := email.LocalPart(address)
	now := requestcontext.Now(ctx)

	for attempt := 0; attempt < provisionAttempts; attempt++ {
		username := base
		if attempt > 0 {
			username = base + "-" + id.NewUserID().String()[:8]
		}

		user, err := models.NewFederatedUser(id.NewUserID(), username, address, now)
		if err != nil {
			return nil, err
		}

		err = s.users.CreateIfAvailable(ctx, user)
		if err == nil {
			s.metrics.IncFederated()
			s.logger.InfoContext(ctx, "provisioned federated user",
				"username", username,
				"attempt", attempt,
			)
			return user, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}

		// The conflict may be the email itself if a concurrent login
		// provisioned the same identity; resolve to that account.
		if existing, lookupErr := s.users.FindByEmail(ctx, address); lookupErr == nil {
			return existing, nil
		}
	}

	return nil, dErrors.New(dErrors.CodeConflict, "could not derive an available username for this account")
}

// FindByUsername resolves a user by exact username.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return user, nil
}
