package federation

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "pantry/pkg/domain-errors"
)

const verifierKey = "shared-provider-key"

func providerToken(t *testing.T, key, issuer, email string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, providerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ext-123",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	verifier := NewJWTVerifier(verifierKey, "trusted-idp")

	t.Run("accepts a valid provider token", func(t *testing.T) {
		raw := providerToken(t, verifierKey, "trusted-idp", "dana@example.com", time.Hour)
		identity, err := verifier.Verify(ctx, raw)
		require.NoError(t, err)
		assert.Equal(t, "ext-123", identity.Subject)
		assert.Equal(t, "dana@example.com", identity.Email)
	})

	t.Run("rejects a foreign signature", func(t *testing.T) {
		raw := providerToken(t, "other-key", "trusted-idp", "dana@example.com", time.Hour)
		_, err := verifier.Verify(ctx, raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an untrusted issuer", func(t *testing.T) {
		raw := providerToken(t, verifierKey, "somebody-else", "dana@example.com", time.Hour)
		_, err := verifier.Verify(ctx, raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		raw := providerToken(t, verifierKey, "trusted-idp", "dana@example.com", -time.Minute)
		_, err := verifier.Verify(ctx, raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects tokens without a usable email", func(t *testing.T) {
		raw := providerToken(t, verifierKey, "trusted-idp", "not-an-email", time.Hour)
		_, err := verifier.Verify(ctx, raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("empty issuer config skips the issuer check", func(t *testing.T) {
		open := NewJWTVerifier(verifierKey, "")
		raw := providerToken(t, verifierKey, "whoever", "dana@example.com", time.Hour)
		_, err := open.Verify(ctx, raw)
		assert.NoError(t, err)
	})
}
