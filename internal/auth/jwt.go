package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the catalog owner a token was issued to.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenExpiry is the default token lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// Issuer is stamped into every token and required on validation.
const Issuer = "stvari"

// ErrInvalidToken is returned for tokens that fail signature, expiry or issuer checks.
var ErrInvalidToken = errors.New("invalid token")

// GenerateToken signs a token for a user with a fresh JTI.
func GenerateToken(secret string, userID int64, username, role string) (string, error) {
	jti, err := newJTI()
	if err != nil {
		return "", fmt.Errorf("generating token id: %w", err)
	}

	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token and returns its claims. Any failure wraps ErrInvalidToken.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns the token's expiry, or now plus TokenExpiry when unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Now().Add(TokenExpiry)
	}
	return c.ExpiresAt.Time
}

func newJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
