package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pantry/internal/platform/middleware"
	id "pantry/pkg/domain"
	dErrors "pantry/pkg/domain-errors"
)

// Claims represents the JWT claims for access tokens issued at login.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RevocationList answers whether a token's JTI has been revoked (logout).
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service handles access token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	revoked    RevocationList
}

func NewService(signingKey string, ttl time.Duration, revoked RevocationList) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "pantry",
		ttl:        ttl,
		revoked:    revoked,
	}
}

// TTL reports the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// GenerateAccessToken mints a signed bearer token for the given user.
func (s *Service) GenerateAccessToken(userID id.UserID, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID.String(),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, expiry and revocation state, returning the
// claims the middleware injects into the request context.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*middleware.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "revocation check failed")
		}
		if revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		}
	}

	return &middleware.TokenClaims{
		UserID:   userID,
		Username: claims.Username,
		JTI:      claims.ID,
	}, nil
}

// RevokeToken adds the given JTI to the revocation list for the remaining
// token lifetime. Called by logout.
func (s *Service) RevokeToken(ctx context.Context, jti string) error {
	if s.revoked == nil || jti == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, jti, s.ttl)
}
