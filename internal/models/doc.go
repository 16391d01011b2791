// Package models defines the core domain models for Salamilink.
//
// # Models
//
//   - Invoice: a shareable payment request. Created once, mutated only to
//     flip its status to paid, never deleted.
//   - Identity: who owns invoices. Two kinds share one type: anonymous
//     identities are minted implicitly for first-time visitors, permanent
//     identities come from a real sign-up.
//
// # Ownership
//
// An invoice has at most one owning identity at a time, referenced by ID
// string. OwnerID may be empty: invoices created without a resolved session
// are valid but never appear in any dashboard listing. When an anonymous
// identity upgrades to a permanent account, every invoice it owns is
// reassigned in one bulk update and the anonymous row is kept as an orphaned
// historical record.
//
// # Design Principles
//
// 1. **ID strings over pointers**: relationships reference IDs to avoid
// circular references.
// 2. **Public vs internal keys**: the invoice ID is the only external
// locator; identity IDs never appear in share links.
package models
