// Package auth implements the stateless signing service for bearer access
// tokens: HS256 JWTs whose only custom content is the subject claim carrying
// the user id.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/psergee/authd/internal/errcode"
)

// MinSecretLen is the minimum HMAC secret length accepted at construction.
const MinSecretLen = 16

// Signer signs and verifies access tokens. It is a pure function of the
// secret and the clock and is safe for concurrent use.
type Signer struct {
	secret   []byte
	validity time.Duration
}

// NewSigner rejects secrets shorter than MinSecretLen; a short secret is a
// fatal configuration error, not a per-call condition.
func NewSigner(secret string, validity time.Duration) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}
	return &Signer{secret: []byte(secret), validity: validity}, nil
}

// Sign issues a token for the given user id with issued-at and expiry claims.
func (s *Signer) Sign(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by a valid token. Elapsed expiry maps to
// CodeTokenExpired, every other defect to CodeInvalidToken. No clock-skew
// leeway is granted.
func (s *Signer) Verify(signed string) (int64, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, errcode.Wrap(errcode.CodeTokenExpired, "access token expired", err)
		}
		return 0, errcode.Wrap(errcode.CodeInvalidToken, "invalid access token", err)
	}
	if !token.Valid {
		return 0, errcode.New(errcode.CodeInvalidToken, "invalid access token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, errcode.Wrap(errcode.CodeInvalidToken, "invalid access token", err)
	}
	return userID, nil
}
