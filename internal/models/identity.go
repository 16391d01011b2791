package models

// IdentityKind distinguishes the two identity variants. Both kinds play the
// same role as invoice owners.
type IdentityKind string

const (
	KindAnonymous IdentityKind = "anonymous"
	KindPermanent IdentityKind = "permanent"
)

// Identity represents an invoice owner: either a disposable anonymous
// account minted on first visit, or a durable signed-up account.
type Identity struct {
	// ID is the unique identifier (UUID format). Internal only; never used
	// in share links.
	ID string

	// Kind is anonymous or permanent.
	Kind IdentityKind

	// Email is the sign-in address (unique). Empty for anonymous identities.
	Email string

	// DisplayName is shown on the dashboard greeting. "Guest" for anonymous
	// identities.
	DisplayName string

	// PasswordHash is the bcrypt hash of the sign-in password. Empty for
	// anonymous identities.
	PasswordHash string

	// SupersededBy is set on an anonymous identity once its holder signs
	// up or in: it points at the permanent identity that took over its
	// invoices. The row is kept as a historical record.
	SupersededBy string

	// CreatedAt is the Unix timestamp when the identity was created.
	CreatedAt int64
}

// Anonymous reports whether this identity is the disposable variant.
func (id *Identity) Anonymous() bool {
	return id.Kind == KindAnonymous
}
