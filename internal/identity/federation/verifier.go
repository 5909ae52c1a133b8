// Package federation abstracts the external identity provider that vouches
// for email addresses. The service trusts the verifier's output and provisions
// local accounts from it; it never talks to the provider directly.
package federation

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	dErrors "pantry/pkg/domain-errors"
	"pantry/pkg/email"
)

// Identity is a verified (subject, email) pair returned by a provider.
type Identity struct {
	Subject string
	Email   string
}

// TokenVerifier verifies an externally issued identity token.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// JWTVerifier validates provider-issued HS256 tokens with a shared key.
type JWTVerifier struct {
	key    []byte
	issuer string
}

type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTVerifier constructs a verifier for the given shared key and expected
// issuer. An empty issuer disables the issuer check.
func NewJWTVerifier(key string, issuer string) *JWTVerifier {
	return &JWTVerifier{key: []byte(key), issuer: issuer}
}

func (v *JWTVerifier) Verify(_ context.Context, rawToken string) (Identity, error) {
	parsed, err := jwt.ParseWithClaims(rawToken, &providerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, dErrors.New(dErrors.CodeUnauthorized, "identity token has expired")
		}
		return Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid identity token")
	}

	claims, ok := parsed.Claims.(*providerClaims)
	if !ok || !parsed.Valid {
		return Identity{}, dErrors.New(dErrors.CodeUnauthorized, "invalid identity token")
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return Identity{}, dErrors.New(dErrors.CodeUnauthorized, "identity token issuer not trusted")
	}
	if !email.IsValid(claims.Email) {
		return Identity{}, dErrors.New(dErrors.CodeUnauthorized, "identity token carries no usable email")
	}

	return Identity{Subject: claims.Subject, Email: claims.Email}, nil
}
