package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin/salamilink/internal/apperrors"
	"github.com/tahsin/salamilink/internal/auth"
	"github.com/tahsin/salamilink/internal/models"
	"github.com/tahsin/salamilink/internal/storage"
)

func newIdentityService(t *testing.T) (*IdentityService, storage.Store) {
	t.Helper()
	store := newTestStore(t)
	authenticator := auth.NewPasswordAuthenticator(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewIdentityService(store, authenticator, jwtManager, testMetrics(), testLogger()), store
}

func TestCreateAnonymous(t *testing.T) {
	svc, _ := newIdentityService(t)
	ctx := context.Background()

	t.Run("first visit mints a fresh identity", func(t *testing.T) {
		session, err := svc.CreateAnonymous(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, models.KindAnonymous, session.Identity.Kind)
		assert.Equal(t, "Guest", session.Identity.DisplayName)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("anonymous caller gets its identity back", func(t *testing.T) {
		first, err := svc.CreateAnonymous(ctx, nil)
		require.NoError(t, err)

		// Two tabs racing the bootstrap: second call is a success, not an error.
		second, err := svc.CreateAnonymous(ctx, first.Identity)
		require.NoError(t, err)
		assert.Equal(t, first.Identity.ID, second.Identity.ID)
	})

	t.Run("permanent caller fails with already_authenticated", func(t *testing.T) {
		session, err := svc.Register(ctx, nil, "sadia@example.com", "Sadia", "hunter2pass")
		require.NoError(t, err)

		_, err = svc.CreateAnonymous(ctx, session.Identity)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyAuthenticated))
	})
}

func TestResolve(t *testing.T) {
	svc, _ := newIdentityService(t)
	ctx := context.Background()

	t.Run("empty id resolves to nil", func(t *testing.T) {
		identity, err := svc.Resolve(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("unknown id resolves to nil", func(t *testing.T) {
		identity, err := svc.Resolve(ctx, "stale-id")
		require.NoError(t, err)
		assert.Nil(t, identity)
	})

	t.Run("known id resolves", func(t *testing.T) {
		session, err := svc.CreateAnonymous(ctx, nil)
		require.NoError(t, err)

		identity, err := svc.Resolve(ctx, session.Identity.ID)
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, session.Identity.ID, identity.ID)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("weak password is a field error", func(t *testing.T) {
		svc, _ := newIdentityService(t)
		_, err := svc.Register(ctx, nil, "a@example.com", "A", "short")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
		assert.Equal(t, "password", apperrors.FieldOf(err))
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		svc, _ := newIdentityService(t)
		_, err := svc.Register(ctx, nil, "b@example.com", "B", "hunter2pass")
		require.NoError(t, err)

		_, err = svc.Register(ctx, nil, "b@example.com", "B2", "hunter2pass")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	})

	t.Run("email is normalized", func(t *testing.T) {
		svc, _ := newIdentityService(t)
		session, err := svc.Register(ctx, nil, "  C@Example.COM ", "C", "hunter2pass")
		require.NoError(t, err)
		assert.Equal(t, "c@example.com", session.Identity.Email)
	})
}

func TestUpgradeMovesInvoices(t *testing.T) {
	identitySvc, store := newIdentityService(t)
	invoiceSvc := NewInvoiceService(store, testMetrics(), testLogger())
	ctx := context.Background()

	// Create invoices while anonymous.
	anonSession, err := identitySvc.CreateAnonymous(ctx, nil)
	require.NoError(t, err)
	anon := anonSession.Identity

	var ids []string
	for i := 0; i < 3; i++ {
		invoice, err := invoiceSvc.CreateInvoice(ctx, validDraft(), anon.ID)
		require.NoError(t, err)
		ids = append(ids, invoice.ID)
	}

	before, _, err := invoiceSvc.ListInvoices(ctx, anon.ID)
	require.NoError(t, err)
	require.Len(t, before, 3)

	// Sign up: the permanent account takes over.
	permSession, err := identitySvc.Register(ctx, anon, "rafi@example.com", "Rafi", "hunter2pass")
	require.NoError(t, err)
	perm := permSession.Identity

	after, _, err := invoiceSvc.ListInvoices(ctx, perm.ID)
	require.NoError(t, err)
	assert.Len(t, after, 3)
	gotIDs := make(map[string]bool)
	for _, invoice := range after {
		gotIDs[invoice.ID] = true
	}
	for _, id := range ids {
		assert.True(t, gotIDs[id], "invoice %s missing after upgrade", id)
	}

	// Nothing left under the anonymous identity, which is now superseded.
	orphaned, _, err := invoiceSvc.ListInvoices(ctx, anon.ID)
	require.NoError(t, err)
	assert.Empty(t, orphaned)

	oldIdentity, err := identitySvc.Resolve(ctx, anon.ID)
	require.NoError(t, err)
	require.NotNil(t, oldIdentity)
	assert.Equal(t, perm.ID, oldIdentity.SupersededBy)
}

func TestLoginMovesInvoicesAndIsIdempotent(t *testing.T) {
	identitySvc, store := newIdentityService(t)
	invoiceSvc := NewInvoiceService(store, testMetrics(), testLogger())
	ctx := context.Background()

	// Existing permanent account.
	_, err := identitySvc.Register(ctx, nil, "mina@example.com", "Mina", "hunter2pass")
	require.NoError(t, err)

	// New anonymous session creates an invoice, then signs in.
	anonSession, err := identitySvc.CreateAnonymous(ctx, nil)
	require.NoError(t, err)
	anon := anonSession.Identity

	invoice, err := invoiceSvc.CreateInvoice(ctx, validDraft(), anon.ID)
	require.NoError(t, err)

	loginSession, err := identitySvc.Login(ctx, anon, "mina@example.com", "hunter2pass")
	require.NoError(t, err)

	moved, _, err := invoiceSvc.ListInvoices(ctx, loginSession.Identity.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, invoice.ID, moved[0].ID)

	// Retried link (e.g. after a transient failure) is a no-op, not an error.
	retry, err := identitySvc.Login(ctx, anon, "mina@example.com", "hunter2pass")
	require.NoError(t, err)

	still, _, err := invoiceSvc.ListInvoices(ctx, retry.Identity.ID)
	require.NoError(t, err)
	assert.Len(t, still, 1)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newIdentityService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, nil, "nadia@example.com", "Nadia", "hunter2pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, nil, "nadia@example.com", "wrongpassword")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, nil, "nobody@example.com", "hunter2pass")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}
