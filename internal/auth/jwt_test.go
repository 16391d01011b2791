package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahsin/salamilink/internal/models"
)

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	identity := &models.Identity{
		ID:    "identity-1",
		Kind:  models.KindPermanent,
		Email: "rafi@example.com",
	}

	t.Run("round trip", func(t *testing.T) {
		token, err := manager.Generate(identity)
		require.NoError(t, err)

		claims, err := manager.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "identity-1", claims.IdentityID)
		assert.Equal(t, string(models.KindPermanent), claims.Kind)
		assert.Equal(t, "rafi@example.com", claims.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := manager.Validate("not-a-token")
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		token, err := other.Generate(identity)
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret", -time.Minute)
		token, err := expired.Generate(identity)
		require.NoError(t, err)

		_, err = manager.Validate(token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}
