// Package sharelink builds outbound share URLs for invoices. Pure URL
// construction; no protocol logic.
package sharelink

import (
	"fmt"
	"net/url"
	"strings"
)

// Links holds the share targets for one invoice.
type Links struct {
	// PayURL is the public payment page for the invoice.
	PayURL string `json:"shareUrl"`

	// WhatsApp is a wa.me deep link pre-filled with the pitch and PayURL.
	WhatsApp string `json:"whatsappUrl"`

	// Messenger is an fb-messenger share deep link (works best on mobile).
	Messenger string `json:"messengerUrl"`
}

// Builder constructs share links against a fixed public base URL.
type Builder struct {
	baseURL string
}

// NewBuilder creates a Builder. baseURL is the public origin,
// e.g. "https://salamilink.app"; a trailing slash is tolerated.
func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// For builds the share links for an invoice id. senderName personalizes the
// WhatsApp message; empty is fine for ghost invoices.
func (b *Builder) For(invoiceID, senderName string) Links {
	payURL := fmt.Sprintf("%s/pay/%s", b.baseURL, invoiceID)

	text := fmt.Sprintf("Assalamu Alaikum! Salami invoice: %s", payURL)
	if senderName != "" {
		text = fmt.Sprintf("Assalamu Alaikum! Salami invoice from %s: %s", senderName, payURL)
	}

	return Links{
		PayURL:    payURL,
		WhatsApp:  "https://wa.me/?text=" + url.QueryEscape(text),
		Messenger: "fb-messenger://share/?link=" + url.QueryEscape(payURL),
	}
}
