// Package auth holds token validation and request throttling used by the
// HTTP middleware.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors.
var (
	ErrExpiredToken     = errors.New("token expired")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Claims are the JWT claims issued to dashboard users.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTValidator verifies HMAC-signed tokens from the identity provider.
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a validator for tokens signed with the shared
// secret and issued by issuer.
func NewJWTValidator(secret, issuer string) *JWTValidator {
	return &JWTValidator{secret: []byte(secret), issuer: issuer}
}

// Validate parses and verifies the token, returning its claims.
func (v *JWTValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return v.secret, nil
	},
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issue signs a token for the given identity. Used by tests and local
// development; production tokens come from the identity provider.
func (v *JWTValidator) Issue(userID, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
