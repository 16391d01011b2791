package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tahsin/salamilink/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// IdentityStorage defines the persistence operations the authenticator needs.
// This keeps it independent of the storage implementation.
type IdentityStorage interface {
	CreateIdentity(ctx context.Context, identity *models.Identity) error
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
}

// PasswordAuthenticator implements password-based sign-up and sign-in for
// permanent identities using bcrypt.
type PasswordAuthenticator struct {
	storage IdentityStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage IdentityStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new permanent identity with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.Identity, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetIdentityByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		Kind:         models.KindPermanent,
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hashedPassword),
	}

	if err := a.storage.CreateIdentity(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	return identity, nil
}

// Authenticate verifies the email and password, returning the identity if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Identity, error) {
	identity, err := a.storage.GetIdentityByEmail(ctx, email)
	if err != nil || identity == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identity, nil
}
