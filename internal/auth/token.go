package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenCodec issues and verifies HMAC-signed access tokens. The secret is
// process-wide configuration loaded once at startup; Verify is stateless
// beyond reading it.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue produces a signed token with absolute expiry now + ttl. The
// permission CSV is a snapshot taken at issuance.
func (c *TokenCodec) Issue(username string, userID int64, roleLabel, permissionCodesCSV string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:      userID,
		Role:        roleLabel,
		Permissions: permissionCodesCSV,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks signature and expiry. Expiry is reported as ErrTokenExpired;
// every other failure (malformed token, wrong signature, wrong algorithm)
// collapses into ErrInvalidToken so parse details never leak to callers.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject returns the username carried by a valid token.
func (c *TokenCodec) Subject(tokenString string) (string, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// UserID returns the user ID carried by a valid token.
func (c *TokenCodec) UserID(tokenString string) (int64, error) {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
