package models

import (
	"fmt"
	"time"
)

// TokenType scopes an ephemeral token to exactly one account transition.
type TokenType string

const (
	TokenTypeRegister  TokenType = "register"
	TokenTypeForgotPwd TokenType = "forgotpwd"
	TokenTypeRefresh   TokenType = "refresh"
)

// ParseTokenType maps a stored token type string to a TokenType.
func ParseTokenType(s string) (TokenType, error) {
	switch TokenType(s) {
	case TokenTypeRegister, TokenTypeForgotPwd, TokenTypeRefresh:
		return TokenType(s), nil
	}
	return "", fmt.Errorf("unknown token type %q", s)
}

// KeyPrefix returns the key-value namespace prefix for the type. The prefixes
// are part of the stored key format and must not change.
func (t TokenType) KeyPrefix() (string, error) {
	switch t {
	case TokenTypeRegister:
		return "reg", nil
	case TokenTypeForgotPwd:
		return "fg", nil
	case TokenTypeRefresh:
		return "rf", nil
	}
	return "", fmt.Errorf("unknown token type %q", string(t))
}

// TokenRecord is the primary value stored under "{prefix}:{token}".
type TokenRecord struct {
	TokenID    int64     `json:"token_id"`
	UserID     int64     `json:"user_id"`
	CreateTime time.Time `json:"create_time"`
	ExpireTime time.Time `json:"expire_time"`
}

// TokenRef is the reverse-index value stored under "idx:token_id:{id}". It
// carries just enough to locate and delete the primary record by numeric id.
type TokenRef struct {
	Token string    `json:"token"`
	Type  TokenType `json:"type"`
}

// TokenVerification is the snapshot a successful token check hands to the
// caller: the token coordinates plus the owning user's state, so downstream
// decisions need no second lookup.
type TokenVerification struct {
	TokenID         int64
	UserID          int64
	CreateTime      time.Time
	ExpireTime      time.Time
	IsEmailVerified bool
	Active          bool
	UserUpdateTime  *time.Time
}
