package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/models"
)

// CreateIdentity inserts a new identity, generating ID and CreatedAt if unset.
func (s *SQLiteStore) CreateIdentity(ctx context.Context, identity *models.Identity) error {
	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt == 0 {
		identity.CreatedAt = time.Now().Unix()
	}

	var email, passwordHash interface{}
	if identity.Email != "" {
		email = identity.Email
	}
	if identity.PasswordHash != "" {
		passwordHash = identity.PasswordHash
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (id, kind, email, display_name, password_hash, superseded_by, created_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?)`,
		identity.ID, string(identity.Kind), email, identity.DisplayName,
		passwordHash, identity.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.Wrap(err, apperrors.CodeConflict, "email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	return nil
}

// GetIdentity retrieves an identity by ID. Returns nil, nil if not found.
func (s *SQLiteStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return s.getIdentity(ctx,
		`SELECT id, kind, email, display_name, password_hash, superseded_by, created_at
		 FROM identities WHERE id = ?`,
		id,
	)
}

// GetIdentityByEmail retrieves an identity by email. Returns nil, nil if not found.
func (s *SQLiteStore) GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return s.getIdentity(ctx,
		`SELECT id, kind, email, display_name, password_hash, superseded_by, created_at
		 FROM identities WHERE email = ?`,
		email,
	)
}

func (s *SQLiteStore) getIdentity(ctx context.Context, query string, arg interface{}) (*models.Identity, error) {
	identity := &models.Identity{}
	var kind string
	var email, passwordHash, supersededBy sql.NullString

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID,
		&kind,
		&email,
		&identity.DisplayName,
		&passwordHash,
		&supersededBy,
		&identity.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Identity not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	identity.Kind = models.IdentityKind(kind)
	if email.Valid {
		identity.Email = email.String
	}
	if passwordHash.Valid {
		identity.PasswordHash = passwordHash.String
	}
	if supersededBy.Valid {
		identity.SupersededBy = supersededBy.String
	}

	return identity, nil
}
