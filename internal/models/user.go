// Package models holds the persistent and wire-level entities shared by
// repositories and services.
package models

import (
	"fmt"
	"time"
)

// Provider identifies the authentication origin of an account. It is stored
// as a string in the users table; use ParseProvider when reading rows so that
// unknown values fail loudly instead of becoming a silent zero value.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// ParseProvider maps a persisted provider string to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderLocal, ProviderGoogle:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// Role is the coarse authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a persisted role string to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// User is the durable account record.
//
// Invariants: (Email, Provider) is unique; PasswordHash is set for local
// accounts only; Active and IsEmailVerified are independent flags and both
// must be true for a local login to succeed.
type User struct {
	ID              int64
	AuthID          string
	Name            string
	Email           string
	Provider        Provider
	ProviderKey     string
	Role            Role
	PasswordHash    *string
	Picture         *string
	Active          bool
	IsEmailVerified bool
	CreateTime      time.Time
	UpdateTime      *time.Time
}
