package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/metrics"
	"github.com/tahsin/salamilink/internal/models"
	"github.com/tahsin/salamilink/internal/storage"
)

const (
	// minAmount is the policy floor for invoice amounts.
	minAmount = 10

	// maxMessageLen caps the free-text message so share links stay short.
	maxMessageLen = 100

	// paymentAccountDigits is the exact length of a mobile-payment number.
	paymentAccountDigits = 11

	// createRetries bounds the transparent retry on a public-id collision.
	createRetries = 3
)

// InvoiceDraft is the validated-on-create input for a new invoice. Amount
// arrives as text and is coerced, mirroring form submission.
type InvoiceDraft struct {
	TargetName     string
	Amount         string
	PaymentAccount string
	Message        string
}

// InvoiceService governs the invoice lifecycle: validated creation, public
// reads, the one-way paid transition, and owner listings.
type InvoiceService struct {
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewInvoiceService creates a new InvoiceService with the given storage backend.
func NewInvoiceService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{store: store, metrics: m, logger: logger}
}

// CreateInvoice validates the draft, attributes the invoice to ownerID (may
// be empty for a ghost invoice), and persists it with a fresh public id.
// A public-id collision is retried transparently a bounded number of times.
func (s *InvoiceService) CreateInvoice(ctx context.Context, draft InvoiceDraft, ownerID string) (*models.Invoice, error) {
	amount, err := validateDraft(&draft)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		id, err := newPublicID()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to generate invoice id")
		}

		invoice := &models.Invoice{
			ID:             id,
			TargetName:     draft.TargetName,
			Amount:         amount,
			PaymentAccount: draft.PaymentAccount,
			Message:        draft.Message,
			Status:         models.StatusUnpaid,
			OwnerID:        ownerID,
		}

		err = s.store.CreateInvoice(ctx, invoice)
		if err == nil {
			s.metrics.InvoicesCreated.Inc()
			s.logger.Info("invoice created",
				"invoice_id", invoice.ID,
				"amount", invoice.Amount,
				"has_owner", ownerID != "",
			)
			return invoice, nil
		}
		if !apperrors.HasCode(err, apperrors.CodeConflict) {
			return nil, err
		}

		lastErr = err
		s.logger.Warn("invoice id collision, retrying", "invoice_id", id, "attempt", attempt+1)
	}

	return nil, apperrors.Wrap(lastErr, apperrors.CodeConflict, "could not allocate a unique invoice id")
}

// GetInvoice is a pure read by public id with no ownership check: the
// payment page must render for anyone holding the link.
func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

// MarkPaid records the client-attested payment confirmation. The first
// transition wins: re-applying returns the already-paid invoice unchanged,
// so a double submit cannot overwrite a legitimate transaction id.
//
// There is no external verification of actual money movement. That trust
// boundary is the product contract, not a gap to fix here.
func (s *InvoiceService) MarkPaid(ctx context.Context, id, transactionID string) (*models.Invoice, error) {
	invoice, transitioned, err := s.store.MarkInvoicePaid(ctx, id, transactionID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.metrics.InvoicesPaid.Inc()
		s.logger.Info("invoice paid", "invoice_id", invoice.ID, "transaction_id", invoice.TransactionID)
	} else {
		s.logger.Debug("invoice already paid, no-op", "invoice_id", invoice.ID)
	}
	return invoice, nil
}

// DashboardStats are the derived aggregates shown above the invoice listing.
type DashboardStats struct {
	// TotalCollected is the sum of paid invoice amounts.
	TotalCollected float64

	// ActiveLinks is the number of unpaid invoices.
	ActiveLinks int

	// PendingAmount is the sum of unpaid invoice amounts.
	PendingAmount float64
}

// ListInvoices returns the identity's invoices, newest first, with the
// dashboard aggregates. Purely derived; recomputed per request.
func (s *InvoiceService) ListInvoices(ctx context.Context, ownerID string) ([]*models.Invoice, DashboardStats, error) {
	invoices, err := s.store.ListInvoicesByOwner(ctx, ownerID)
	if err != nil {
		return nil, DashboardStats{}, err
	}

	var stats DashboardStats
	for _, invoice := range invoices {
		if invoice.Paid() {
			stats.TotalCollected += invoice.Amount
		} else {
			stats.ActiveLinks++
			stats.PendingAmount += invoice.Amount
		}
	}

	return invoices, stats, nil
}

// validateDraft normalizes and validates the draft in place, returning the
// coerced amount. The first failing field is reported; there are no partial
// writes on failure.
func validateDraft(draft *InvoiceDraft) (float64, error) {
	draft.TargetName = strings.TrimSpace(draft.TargetName)
	if draft.TargetName == "" {
		return 0, apperrors.Invalid("targetName", "name is required")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(draft.Amount), 64)
	if err != nil {
		return 0, apperrors.Invalid("amount", "amount must be a number")
	}
	if amount < minAmount {
		return 0, apperrors.Invalid("amount", "don't be cheap, ask for at least 10")
	}

	if !isElevenDigits(draft.PaymentAccount) {
		return 0, apperrors.Invalid("paymentAccount", "payment number must be exactly 11 digits")
	}

	if len(draft.Message) > maxMessageLen {
		return 0, apperrors.Invalid("message", "keep the message under 100 characters")
	}

	return amount, nil
}

func isElevenDigits(s string) bool {
	if len(s) != paymentAccountDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
