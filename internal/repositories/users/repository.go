// Package users persists durable account records.
package users

import (
	"context"
	"time"

	"github.com/psergee/authd/internal/models"
)

// Repository is the relational store for users. Implementations must map an
// absent row to common ErrNoRows semantics via the returned (nil, error) pair
// using ErrNotFound from this package.
type Repository interface {
	// FindByEmail looks up the account for the (email, provider) pair, which
	// is unique by schema constraint.
	FindByEmail(ctx context.Context, email string, provider models.Provider) (*models.User, error)

	// FindByID looks up an account by primary key.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// Insert stores a new account and returns its generated id.
	Insert(ctx context.Context, user *models.User) (int64, error)

	// UpdateProfile sets name, optional picture path and update time.
	// Returns the number of affected rows.
	UpdateProfile(ctx context.Context, id int64, name string, picture *string, updateTime time.Time) (int64, error)

	// UpdatePassword replaces the password hash. Returns false when no row
	// was affected.
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updateTime time.Time) (bool, error)

	// UpdateVerification flips the account to verified and active. Returns
	// false when no row was affected.
	UpdateVerification(ctx context.Context, id int64, active, isEmailVerified bool, updateTime time.Time) (bool, error)

	// ClearPicture removes the avatar reference. Returns the number of
	// affected rows.
	ClearPicture(ctx context.Context, id int64, updateTime time.Time) (int64, error)

	// Delete removes the account row. Used by the registration compensation
	// path when the verification mail cannot be dispatched.
	Delete(ctx context.Context, id int64) error
}
