package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminTokenTTL is how long an admin panel session stays signed in.
const AdminTokenTTL = 12 * time.Hour

var (
	ErrInvalidPassphrase = errors.New("invalid passphrase")
	ErrNoPassphrase      = errors.New("admin passphrase not configured")
)

type Claims struct {
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for role that expires after ttl.
func GenerateToken(secret, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		SessionID: uuid.New(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HashPassphrase returns the bcrypt hash to put in ADMIN_PASSPHRASE_HASH.
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passphrase: %w", err)
	}
	return string(hash), nil
}

// CheckPassphrase compares input with the configured admin passphrase. The
// bcrypt hash is used when set; otherwise the plain passphrase is compared.
func CheckPassphrase(hash, plain, input string) error {
	switch {
	case hash != "":
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(input)) != nil {
			return ErrInvalidPassphrase
		}
		return nil
	case plain != "":
		if subtle.ConstantTimeCompare([]byte(plain), []byte(input)) != 1 {
			return ErrInvalidPassphrase
		}
		return nil
	}
	return ErrNoPassphrase
}
