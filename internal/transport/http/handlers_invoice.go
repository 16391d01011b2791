package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/middleware"
	"github.com/tahsin/salamilink/internal/models"
	"github.com/tahsin/salamilink/internal/service"
	"github.com/tahsin/salamilink/internal/sharelink"
)

// textNumber accepts a JSON number or a numeric string, preserving the raw
// text. Amounts come from form inputs, so both shapes arrive in practice and
// the service does the coercion.
type textNumber string

func (n *textNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = textNumber(s)
		return nil
	}
	*n = textNumber(data)
	return nil
}

type createInvoiceRequest struct {
	TargetName     string     `json:"targetName"`
	Amount         textNumber `json:"amount"`
	PaymentAccount string     `json:"paymentAccount"`
	Message        string     `json:"message"`
}

type markPaidRequest struct {
	TransactionID string `json:"transactionId"`
}

// invoiceResponse is the public invoice record.
type invoiceResponse struct {
	ID             string  `json:"id"`
	TargetName     string  `json:"targetName"`
	Amount         float64 `json:"amount"`
	PaymentAccount string  `json:"paymentAccount"`
	Message        string  `json:"message"`
	Status         string  `json:"status"`
	TransactionID  string  `json:"transactionId,omitempty"`
	CreatedAt      int64   `json:"createdAt"`
}

func toInvoiceResponse(invoice *models.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:             invoice.ID,
		TargetName:     invoice.TargetName,
		Amount:         invoice.Amount,
		PaymentAccount: invoice.PaymentAccount,
		Message:        invoice.Message,
		Status:         string(invoice.Status),
		TransactionID:  invoice.TransactionID,
		CreatedAt:      invoice.CreatedAt,
	}
}

type createInvoiceResponse struct {
	ID string `json:"id"`
	sharelink.Links
}

// handleCreateInvoice validates and persists a new invoice, owned by the
// session identity if one resolved (ghost invoice otherwise).
func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[createInvoiceRequest](w, r)
	if !ok {
		return
	}

	draft := service.InvoiceDraft{
		TargetName:     req.TargetName,
		Amount:         string(req.Amount),
		PaymentAccount: req.PaymentAccount,
		Message:        req.Message,
	}

	invoice, err := h.invoices.CreateInvoice(r.Context(), draft, middleware.GetIdentityID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createInvoiceResponse{
		ID:    invoice.ID,
		Links: h.links.For(invoice.ID, ""),
	})
}

// handleGetInvoice serves the public payment page data. No ownership check.
func (h *Handler) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

// handleMarkPaid records the client-attested payment confirmation.
// Idempotent: the first transition wins.
func (h *Handler) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var transactionID string
	if r.ContentLength != 0 {
		req, ok := decodeJSON[markPaidRequest](w, r)
		if !ok {
			return
		}
		transactionID = req.TransactionID
	}

	invoice, err := h.invoices.MarkPaid(r.Context(), chi.URLParam(r, "id"), transactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(invoice))
}

type dashboardInvoice struct {
	invoiceResponse
	sharelink.Links
}

type dashboardResponse struct {
	DisplayName    string             `json:"displayName"`
	Invoices       []dashboardInvoice `json:"invoices"`
	TotalCollected float64            `json:"totalCollected"`
	ActiveLinks    int                `json:"activeLinks"`
	PendingAmount  float64            `json:"pendingAmount"`
}

// handleDashboard lists the signed-in identity's invoices, newest first,
// with derived aggregates. Anonymous sessions are denied: the dashboard is
// the one surface that requires a real account.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identities.Resolve(r.Context(), middleware.GetIdentityID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if identity == nil {
		writeError(w, apperrors.New(apperrors.CodeUnauthorized, "session no longer valid"))
		return
	}
	if identity.Anonymous() {
		writeError(w, apperrors.New(apperrors.CodeForbidden, "sign in to see your dashboard"))
		return
	}

	invoices, stats, err := h.invoices.ListInvoices(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]dashboardInvoice, len(invoices))
	for i, invoice := range invoices {
		rows[i] = dashboardInvoice{
			invoiceResponse: toInvoiceResponse(invoice),
			Links:           h.links.For(invoice.ID, identity.DisplayName),
		}
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		DisplayName:    identity.DisplayName,
		Invoices:       rows,
		TotalCollected: stats.TotalCollected,
		ActiveLinks:    stats.ActiveLinks,
		PendingAmount:  stats.PendingAmount,
	})
}
