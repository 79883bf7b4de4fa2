// Package services contains the business logic of the auth service: the
// token lifecycle engine and the account orchestration flows around it.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/psergee/authd/internal/auth"
	"github.com/psergee/authd/internal/config"
	"github.com/psergee/authd/internal/dbx"
	"github.com/psergee/authd/internal/errcode"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/models"
	tokensrepo "github.com/psergee/authd/internal/repositories/tokens"
	usersrepo "github.com/psergee/authd/internal/repositories/users"
)

// TokenPair bundles a short-lived access token with a single-use refresh
// token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService owns the ephemeral token state machine: mint, validate,
// consume, rotate. All three token types share one machine; only the
// configured lifetimes differ.
type TokenService struct {
	db     *sql.DB
	tokens tokensrepo.Repository
	signer *auth.Signer
	config *config.Config
	logger logging.Logger
}

func NewTokenService(db *sql.DB, tokens tokensrepo.Repository, signer *auth.Signer, cfg *config.Config, logger logging.Logger) *TokenService {
	return &TokenService{
		db:     db,
		tokens: tokens,
		signer: signer,
		config: cfg,
		logger: logger.With("module", "token_service"),
	}
}

// makeOpaqueToken returns a 256-bit random hex string. The token is the only
// credential protecting the transition it grants, so it must not be guessable.
func makeOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("token generation: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *TokenService) validity(typ models.TokenType) time.Duration {
	switch typ {
	case models.TokenTypeRegister:
		return s.config.RegisterTokenValidityDuration
	case models.TokenTypeForgotPwd:
		return s.config.ForgotPwdTokenValidityDuration
	case models.TokenTypeRefresh:
		return s.config.RefreshTokenValidityDuration
	}
	return s.config.ForgotPwdTokenValidityDuration
}

// CreateToken mints an opaque single-use token of the given type for userID
// and stores it with its type-specific lifetime.
func (s *TokenService) CreateToken(ctx context.Context, userID int64, typ models.TokenType) (string, error) {
	token, err := makeOpaqueToken()
	if err != nil {
		return "", errcode.System(err)
	}

	now := time.Now().UTC()
	record := &models.TokenRecord{
		UserID:     userID,
		CreateTime: now,
		ExpireTime: now.Add(s.validity(typ)),
	}

	if _, err := s.tokens.Insert(ctx, token, typ, record); err != nil {
		return "", errcode.System(fmt.Errorf("storing %s token: %w", typ, err))
	}

	return token, nil
}

// CreateAccessToken issues a signed bearer token for userID.
func (s *TokenService) CreateAccessToken(userID int64) (string, error) {
	signed, err := s.signer.Sign(userID)
	if err != nil {
		return "", errcode.System(err)
	}
	return signed, nil
}

// VerifyAccessToken validates a bearer token and returns the user id.
func (s *TokenService) VerifyAccessToken(signed string) (int64, error) {
	return s.signer.Verify(signed)
}

// CheckToken validates token of the given type without consuming it and
// returns the token coordinates joined with the owning user's state.
//
// Failure codes: InvalidToken (unknown token), AlreadyVerified (register
// token for an already verified account), TokenExpired (logical expiry
// elapsed; checked explicitly on top of the store's TTL).
func (s *TokenService) CheckToken(ctx context.Context, token string, typ models.TokenType) (*models.TokenVerification, error) {
	record, err := s.tokens.Select(ctx, token, typ)
	if err != nil {
		if errors.Is(err, tokensrepo.ErrNotFound) {
			return nil, errcode.New(errcode.CodeInvalidToken, "invalid token")
		}
		return nil, errcode.System(err)
	}

	return s.verifyRecord(ctx, record, typ)
}

// verifyRecord runs the user join and the state checks shared by CheckToken
// and Rotate.
func (s *TokenService) verifyRecord(ctx context.Context, record *models.TokenRecord, typ models.TokenType) (*models.TokenVerification, error) {
	user, err := usersrepo.NewPostgresRepository(s.db).FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			// dangling token, its user is gone
			return nil, errcode.New(errcode.CodeInvalidToken, "invalid token")
		}
		return nil, errcode.System(err)
	}

	if typ == models.TokenTypeRegister && user.IsEmailVerified {
		return nil, errcode.New(errcode.CodeAlreadyVerified, "account already verified, please sign in")
	}

	if record.ExpireTime.Before(time.Now().UTC()) {
		return nil, errcode.New(errcode.CodeTokenExpired, "token expired, please request a new one")
	}

	return &models.TokenVerification{
		TokenID:         record.TokenID,
		UserID:          record.UserID,
		CreateTime:      record.CreateTime,
		ExpireTime:      record.ExpireTime,
		IsEmailVerified: user.IsEmailVerified,
		Active:          user.Active,
		UserUpdateTime:  user.UpdateTime,
	}, nil
}

// DeleteToken removes a token by its numeric id. An already absent token is
// a no-op so retries stay idempotent.
func (s *TokenService) DeleteToken(ctx context.Context, tokenID int64) error {
	if err := s.tokens.DeleteByID(ctx, tokenID); err != nil {
		return errcode.System(err)
	}
	return nil
}

// Rotate implements refresh-token rotation: the old token is consumed
// atomically at the store layer (of two concurrent rotations exactly one
// observes it), then a fresh access/refresh pair is issued for the same user.
//
// An unknown token fails with InvalidToken and deletes nothing. An expired
// token fails with TokenExpired; it is consumed in the process, which is the
// caller-visible behavior either way since it could never rotate again.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := s.tokens.Consume(ctx, refreshToken, models.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, tokensrepo.ErrNotFound) {
			return nil, errcode.New(errcode.CodeInvalidToken, "invalid token")
		}
		return nil, errcode.System(err)
	}

	if record.ExpireTime.Before(time.Now().UTC()) {
		return nil, errcode.New(errcode.CodeTokenExpired, "token expired, please sign in again")
	}

	access, err := s.CreateAccessToken(record.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.CreateToken(ctx, record.UserID, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", record.UserID, "old_token_id", record.TokenID)

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ConsumeRegistration finalizes email verification: inside one relational
// transaction the user is flipped to active and verified, and only after the
// commit is the token removed from the key-value store. If the transaction
// fails the token stays valid for a retry; if the token removal fails, the
// TTL and the AlreadyVerified guard make the stale token harmless.
func (s *TokenService) ConsumeRegistration(ctx context.Context, verification *models.TokenVerification) error {
	now := time.Now().UTC()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updated, err := usersrepo.NewPostgresRepository(tx).UpdateVerification(ctx, verification.UserID, true, true, now)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("verification update affected no rows, user %d", verification.UserID)
		}
		return nil
	})
	if err != nil {
		return errcode.System(fmt.Errorf("registration verification transaction: %w", err))
	}

	if err := s.tokens.DeleteByID(ctx, verification.TokenID); err != nil {
		s.logger.Warn(ctx, "verified but token delete failed, relying on TTL",
			"user_id", verification.UserID, "token_id", verification.TokenID, "error", err)
	}

	return nil
}
