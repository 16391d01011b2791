// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/tahsin/salamilink/internal/models"
)

// Store defines the interface for invoice and identity persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateInvoice persists a new invoice. The caller supplies the public
	// ID; a duplicate ID fails with apperrors.CodeConflict and no write.
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error

	// GetInvoice retrieves an invoice by its public ID.
	// Fails with apperrors.CodeNotFound if absent.
	GetInvoice(ctx context.Context, id string) (*models.Invoice, error)

	// MarkInvoicePaid flips an unpaid invoice to paid and records the
	// transaction ID. The first transition wins: an already-paid invoice is
	// returned unchanged with transitioned = false. Fails with
	// apperrors.CodeNotFound if absent.
	MarkInvoicePaid(ctx context.Context, id, transactionID string) (invoice *models.Invoice, transitioned bool, err error)

	// ListInvoicesByOwner returns all invoices owned by the identity,
	// newest first. Ownerless invoices never appear in any listing.
	ListInvoicesByOwner(ctx context.Context, ownerID string) ([]*models.Invoice, error)

	// ReassignInvoices moves every invoice owned by fromID to toID as one
	// atomic bulk update and marks fromID as superseded. Re-running for the
	// same pair matches zero rows and is a no-op. Returns the number of
	// invoices moved.
	ReassignInvoices(ctx context.Context, fromID, toID string) (int64, error)

	// CreateIdentity persists a new identity, generating ID and CreatedAt
	// if unset. A duplicate email fails with apperrors.CodeConflict.
	CreateIdentity(ctx context.Context, identity *models.Identity) error

	// GetIdentity retrieves an identity by ID. Returns nil, nil if absent.
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)

	// GetIdentityByEmail retrieves an identity by email. Returns nil, nil
	// if absent.
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
