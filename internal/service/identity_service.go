package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/auth"
	"github.com/tahsin/salamilink/internal/metrics"
	"github.com/tahsin/salamilink/internal/models"
	"github.com/tahsin/salamilink/internal/storage"
)

// anonymousDisplayName is what anonymous identities show as until sign-up.
const anonymousDisplayName = "Guest"

// Session is the result of an identity operation that (re)establishes a
// session: the identity plus a fresh credential for it.
type Session struct {
	Identity *models.Identity
	Token    string
}

// IdentityService establishes caller identities and reconciles ownership
// when an anonymous identity upgrades to a permanent account.
type IdentityService struct {
	store         storage.Store
	authenticator *auth.PasswordAuthenticator
	jwtManager    *auth.JWTManager
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(store storage.Store, authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, m *metrics.Metrics, logger *slog.Logger) *IdentityService {
	return &IdentityService{
		store:         store,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		metrics:       m,
		logger:        logger,
	}
}

// Resolve maps a session credential's identity id to the stored identity.
// Returns nil, nil when the id no longer resolves (e.g. a wiped database);
// callers treat that as no session.
func (s *IdentityService) Resolve(ctx context.Context, identityID string) (*models.Identity, error) {
	if identityID == "" {
		return nil, nil
	}
	return s.store.GetIdentity(ctx, identityID)
}

// CreateAnonymous mints a disposable anonymous identity for a first-time
// visitor. Called with an existing session it is tolerant: an anonymous
// caller gets its current identity back (two tabs racing the bootstrap both
// succeed), a permanent caller fails with already_authenticated and must
// reuse what it has.
func (s *IdentityService) CreateAnonymous(ctx context.Context, current *models.Identity) (*Session, error) {
	if current != nil {
		if !current.Anonymous() {
			return nil, apperrors.New(apperrors.CodeAlreadyAuthenticated, "already signed in with a permanent account")
		}
		token, err := s.jwtManager.Generate(current)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue session token")
		}
		return &Session{Identity: current, Token: token}, nil
	}

	identity := &models.Identity{
		Kind:        models.KindAnonymous,
		DisplayName: anonymousDisplayName,
	}
	if err := s.store.CreateIdentity(ctx, identity); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue session token")
	}

	s.metrics.IdentitiesCreated.WithLabelValues(string(models.KindAnonymous)).Inc()
	s.logger.Info("anonymous identity created", "identity_id", identity.ID)
	return &Session{Identity: identity, Token: token}, nil
}

// Register signs up a permanent identity. When the current session is
// anonymous, the new account takes over its invoices.
func (s *IdentityService) Register(ctx context.Context, current *models.Identity, email, displayName, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if email == "" {
		return nil, apperrors.Invalid("email", "email is required")
	}
	if displayName == "" {
		return nil, apperrors.Invalid("displayName", "display name is required")
	}

	identity, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, apperrors.Invalid("password", err.Error())
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperrors.New(apperrors.CodeConflict, err.Error())
		}
		return nil, err
	}

	s.metrics.IdentitiesCreated.WithLabelValues(string(models.KindPermanent)).Inc()
	s.logger.Info("identity registered", "identity_id", identity.ID)

	if err := s.linkInvoices(ctx, current, identity); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue session token")
	}
	return &Session{Identity: identity, Token: token}, nil
}

// Login signs in an existing permanent identity. When the current session is
// anonymous, its invoices move to the signed-in account.
func (s *IdentityService) Login(ctx context.Context, current *models.Identity, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	identity, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.metrics.AuthFailures.Inc()
		s.logger.Warn("login failed", "email", email)
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	if err := s.linkInvoices(ctx, current, identity); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to issue session token")
	}

	s.logger.Info("identity logged in", "identity_id", identity.ID)
	return &Session{Identity: identity, Token: token}, nil
}

// linkInvoices is the identity-linking reconciler: when an anonymous session
// upgrades, every invoice owned by the anonymous identity is reassigned to
// the permanent one in a single atomic bulk update. Replays match zero rows
// and are no-ops, so a retry after a transient failure is safe.
func (s *IdentityService) linkInvoices(ctx context.Context, anonymous, permanent *models.Identity) error {
	if anonymous == nil || !anonymous.Anonymous() {
		return nil
	}

	moved, err := s.store.ReassignInvoices(ctx, anonymous.ID, permanent.ID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "failed to move invoices to the new account")
	}

	if moved > 0 {
		s.metrics.InvoicesReassigned.Add(float64(moved))
	}
	s.logger.Info("anonymous identity linked",
		"anonymous_id", anonymous.ID,
		"permanent_id", permanent.ID,
		"invoices_moved", moved,
	)
	return nil
}
