package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const (
	issuer           = "go-stock-ledger"
	purposeSession   = "session"
	purposeReset     = "password_reset"
	sessionLifetime  = 24 * time.Hour
	ResetTokenMaxAge = 72 * time.Hour
)

// Claims represents the JWT claims structure
type Claims struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RoleCode     string    `json:"role_code"`
	Privileges   []string  `json:"privileges"`
	TokenVersion string    `json:"token_version"`
	Purpose      string    `json:"purpose"`
	jwt.RegisteredClaims
}

// GetSecretKey returns the JWT secret from environment or a default
func GetSecretKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-super-secret-key-change-in-production"
	}
	return []byte(secret)
}

// GenerateToken creates a new session token for a user
func GenerateToken(userID uuid.UUID, username, email, roleCode string, privileges []string, tokenVersion string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		Username:     username,
		Email:        email,
		RoleCode:     roleCode,
		Privileges:   privileges,
		TokenVersion: tokenVersion,
		Purpose:      purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetSecretKey())
}

// ValidateToken parses and validates a session token
func ValidateToken(tokenString string) (*Claims, error) {
	claims, err := parse(tokenString, GetSecretKey())
	if err != nil || claims.Purpose != purposeSession {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateResetToken issues a password reset token. The signing key mixes in
// the current password hash, so the token stops validating once the password changes.
func GenerateResetToken(userID uuid.UUID, passwordHash string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Purpose: purposeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenMaxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(resetKey(passwordHash))
}

// ValidateResetToken checks a reset token against the user it was issued for
func ValidateResetToken(tokenString string, userID uuid.UUID, passwordHash string) error {
	claims, err := parse(tokenString, resetKey(passwordHash))
	if err != nil || claims.Purpose != purposeReset || claims.UserID != userID {
		return ErrInvalidToken
	}
	return nil
}

func resetKey(passwordHash string) []byte {
	return append(GetSecretKey(), []byte(":"+passwordHash)...)
}

func parse(tokenString string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
