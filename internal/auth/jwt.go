// Package auth issues and validates learner access tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MaxLearnerIDLength bounds the subject claim.
const MaxLearnerIDLength = 128

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager signs and validates HS256 access tokens whose subject is the learner id.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// GenerateAccessToken creates a signed token for learnerID and returns it with its expiry.
func (m *JWTManager) GenerateAccessToken(learnerID string) (string, time.Time, error) {
	learnerID = strings.TrimSpace(learnerID)
	if learnerID == "" || len(learnerID) > MaxLearnerIDLength {
		return "", time.Time{}, fmt.Errorf("learner id must be 1-%d characters", MaxLearnerIDLength)
	}

	now := m.now()
	expires := now.Add(m.accessTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   learnerID,
		Issuer:    m.issuer,
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// ValidateAccessToken parses and validates a token and returns the learner id.
// Every failure wraps ErrInvalidToken.
func (m *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: token is empty", ErrInvalidToken)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	if claims.Subject == "" || len(claims.Subject) > MaxLearnerIDLength {
		return "", fmt.Errorf("%w: invalid subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
