package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by a Flowgrid-issued bearer token. The
// scope claim is the opaque scope ID the gate hands downstream on allow.
type TokenClaims struct {
	jwt.RegisteredClaims
	ScopeID string `json:"scope"`
}

// JWTValidator validates HS256-signed bearer tokens. It is the stateless
// alternative to APIKeyValidator for deployments that mint their own tokens.
type JWTValidator struct {
	secret string
}

// NewJWTValidator returns a validator for tokens signed with the given secret.
func NewJWTValidator(secret string) *JWTValidator {
	return &JWTValidator{secret: secret}
}

func (v *JWTValidator) Validate(_ context.Context, token string) (string, bool) {
	if v.secret == "" {
		return "", false
	}
	var claims TokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(v.secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", false
	}
	return claims.ScopeID, true
}

// IssueToken returns a signed bearer token bound to the given scope.
func IssueToken(secret, scopeID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   scopeID,
		},
		ScopeID: scopeID,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}
