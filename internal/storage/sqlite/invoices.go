package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/models"
)

// CreateInvoice persists a new invoice. The public ID is supplied by the
// caller; the PRIMARY KEY constraint enforces global uniqueness and a
// collision surfaces as apperrors.CodeConflict so the caller can retry with
// a fresh ID.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.CreatedAt == 0 {
		invoice.CreatedAt = time.Now().Unix()
	}
	if invoice.Status == "" {
		invoice.Status = models.StatusUnpaid
	}

	var owner interface{}
	if invoice.OwnerID != "" {
		owner = invoice.OwnerID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, target_name, amount, payment_account, message, status, transaction_id, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		invoice.ID, invoice.TargetName, invoice.Amount, invoice.PaymentAccount,
		invoice.Message, string(invoice.Status), owner, invoice.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.Wrap(err, apperrors.CodeConflict, fmt.Sprintf("invoice id already exists: %s", invoice.ID))
	}
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	return nil
}

// GetInvoice retrieves an invoice by its public ID.
func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, target_name, amount, payment_account, message, status, transaction_id, owner_id, created_at
		 FROM invoices WHERE id = ?`,
		id,
	)

	invoice, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("invoice not found: %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return invoice, nil
}

// MarkInvoicePaid performs the one-way unpaid -> paid transition. The
// conditional UPDATE makes the first transition the only write: a second
// call matches zero rows and the stored invoice is returned unchanged.
func (s *SQLiteStore) MarkInvoicePaid(ctx context.Context, id, transactionID string) (*models.Invoice, bool, error) {
	var txID interface{}
	if transactionID != "" {
		txID = transactionID
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, transaction_id = ?
		 WHERE id = ? AND status = ?`,
		string(models.StatusPaid), txID, id, string(models.StatusUnpaid),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to count updated rows: %w", err)
	}

	// Zero rows matched means either already paid (idempotent no-op) or
	// missing; the read distinguishes the two.
	invoice, err := s.GetInvoice(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return invoice, rows > 0, nil
}

// ListInvoicesByOwner returns all invoices owned by the identity, newest first.
func (s *SQLiteStore) ListInvoicesByOwner(ctx context.Context, ownerID string) ([]*models.Invoice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target_name, amount, payment_account, message, status, transaction_id, owner_id, created_at
		 FROM invoices WHERE owner_id = ? ORDER BY created_at DESC, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, nil
}

// ReassignInvoices rewrites ownership in bulk and marks the anonymous
// identity as superseded, in one transaction. The single UPDATE over the
// owner filter is the atomicity the reconciler contract requires: either
// every matching invoice moves or none does.
func (s *SQLiteStore) ReassignInvoices(ctx context.Context, fromID, toID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE invoices SET owner_id = ? WHERE owner_id = ?",
		toID, fromID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign invoices: %w", err)
	}

	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count reassigned invoices: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE identities SET superseded_by = ? WHERE id = ? AND kind = ?",
		toID, fromID, string(models.KindAnonymous),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark identity superseded: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return moved, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	var status string
	var txID, owner sql.NullString

	err := row.Scan(
		&invoice.ID,
		&invoice.TargetName,
		&invoice.Amount,
		&invoice.PaymentAccount,
		&invoice.Message,
		&status,
		&txID,
		&owner,
		&invoice.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Status = models.InvoiceStatus(status)
	if txID.Valid {
		invoice.TransactionID = txID.String
	}
	if owner.Valid {
		invoice.OwnerID = owner.String
	}

	return invoice, nil
}
