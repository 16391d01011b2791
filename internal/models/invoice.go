package models

// InvoiceStatus is the payment state of an invoice. The only transition is
// StatusUnpaid -> StatusPaid; there is no reverse and no other state.
type InvoiceStatus string

const (
	StatusUnpaid InvoiceStatus = "unpaid"
	StatusPaid   InvoiceStatus = "paid"
)

// Invoice represents a shareable payment request.
type Invoice struct {
	// ID is the short public token (8 chars) used as the sole external
	// locator. Generated at creation, immutable.
	ID string

	// TargetName is the person being asked to pay (uncle, boss, friend).
	TargetName string

	// Amount is the requested amount. Currency-less; interpreted in one
	// fixed local currency. Policy floor is 10.
	Amount float64

	// PaymentAccount is the 11-digit mobile-payment number (bKash/Nagad)
	// money should be sent to.
	PaymentAccount string

	// Message is the free-text pitch, at most 100 characters.
	Message string

	// Status is the payment state.
	Status InvoiceStatus

	// TransactionID is the opaque client-generated token recorded on the
	// paid transition. It is self-reported, not settlement-verified.
	// Empty until paid, and possibly empty after.
	TransactionID string

	// OwnerID references the owning Identity. Empty for ghost invoices
	// created without a resolved session.
	OwnerID string

	// CreatedAt is the Unix timestamp when the invoice was created.
	CreatedAt int64
}

// Paid reports whether the invoice has completed its one-way transition.
func (i *Invoice) Paid() bool {
	return i.Status == StatusPaid
}
