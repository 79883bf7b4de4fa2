package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/psergee/authd/internal/config"
	"github.com/psergee/authd/internal/dbx"
	"github.com/psergee/authd/internal/errcode"
	"github.com/psergee/authd/internal/filestore"
	"github.com/psergee/authd/internal/hash"
	"github.com/psergee/authd/internal/identity"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/mail"
	"github.com/psergee/authd/internal/models"
	usersrepo "github.com/psergee/authd/internal/repositories/users"
)

// UserService orchestrates the account flows: registration with mail
// verification, login, federated login, password reset, session renewal and
// the profile surface. It owns no token state itself; everything ephemeral
// goes through TokenService.
type UserService struct {
	db     *sql.DB
	tokens *TokenService
	mailer mail.Sender
	files  filestore.Store
	config *config.Config
	logger logging.Logger
}

func NewUserService(db *sql.DB, tokens *TokenService, mailer mail.Sender, files filestore.Store, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:     db,
		tokens: tokens,
		mailer: mailer,
		files:  files,
		config: cfg,
		logger: logger.With("module", "user_service"),
	}
}

// RegisterInput carries a registration request. Avatar is optional.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	CallbackURL string
	Avatar      io.Reader
	AvatarName  string
}

// Register creates an unverified local account and dispatches the
// verification mail. If the mail cannot be sent the just-created row is
// deleted again, so no orphaned, unverifiable account remains.
func (s *UserService) Register(ctx context.Context, in RegisterInput) error {
	repo := usersrepo.NewPostgresRepository(s.db)

	_, err := repo.FindByEmail(ctx, in.Email, models.ProviderLocal)
	if err == nil {
		return errcode.New(errcode.CodeEmailAlreadyExists, "email already registered")
	}
	if !errors.Is(err, usersrepo.ErrNotFound) {
		return errcode.System(err)
	}

	passwordHash, err := hash.PasswordHashSalt(in.Password)
	if err != nil {
		return errcode.System(err)
	}

	authID := uuid.New().String()

	var picture *string
	if in.Avatar != nil {
		p, err := s.files.Save(ctx, in.Avatar, s.config.UploadFolder, authID, in.AvatarName)
		if err != nil {
			return errcode.System(fmt.Errorf("saving avatar: %w", err))
		}
		picture = &p
	}

	user := &models.User{
		AuthID:       authID,
		Name:         in.Name,
		Email:        in.Email,
		Provider:     models.ProviderLocal,
		ProviderKey:  uuid.New().String(),
		Role:         models.RoleUser,
		PasswordHash: &passwordHash,
		Picture:      picture,
		Active:       false,
		CreateTime:   time.Now().UTC(),
	}

	userID, err := repo.Insert(ctx, user)
	if err != nil {
		return errcode.System(err)
	}

	if err := s.sendConfirmMail(ctx, userID, in.CallbackURL, in.Name, in.Email, models.TokenTypeRegister); err != nil {
		s.logger.Error(ctx, "verification mail failed, rolling back registration",
			"user_id", userID, "email", in.Email, "error", err)

		if delErr := repo.Delete(ctx, userID); delErr != nil {
			s.logger.Error(ctx, "registration compensation failed", "user_id", userID, "error", delErr)
		}
		return errcode.Wrap(errcode.CodeEmailSendFailed, "could not send verification mail, please try again later", err)
	}

	return nil
}

// VerifyRegistration consumes a register token and flips the account to
// active + verified. Token failures pass through unchanged (InvalidToken,
// TokenExpired, AlreadyVerified).
func (s *UserService) VerifyRegistration(ctx context.Context, token string) error {
	verification, err := s.tokens.CheckToken(ctx, token, models.TokenTypeRegister)
	if err != nil {
		return err
	}

	if err := s.tokens.ConsumeRegistration(ctx, verification); err != nil {
		s.logger.Error(ctx, "registration verification failed",
			"user_id", verification.UserID, "token_id", verification.TokenID, "error", err)
		return err
	}

	return nil
}

// Login validates a local credential pair and issues an access/refresh pair.
//
// Absent user, absent password hash and wrong password all collapse into one
// LoginFailed code so the response does not reveal which accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := usersrepo.NewPostgresRepository(s.db)

	user, err := repo.FindByEmail(ctx, email, models.ProviderLocal)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return nil, errcode.New(errcode.CodeLoginFailed, "wrong email or password")
		}
		return nil, errcode.System(err)
	}

	if user.PasswordHash == nil || !hash.Verify(password, *user.PasswordHash) {
		return nil, errcode.New(errcode.CodeLoginFailed, "wrong email or password")
	}

	if !user.IsEmailVerified {
		return nil, errcode.New(errcode.CodeEmailNotVerified, "account exists but email is not verified")
	}
	if !user.Active {
		return nil, errcode.New(errcode.CodeAccountDisabled, "account is disabled")
	}

	return s.issueTokenPair(ctx, user.ID)
}

// LoginWithGoogle resolves (or creates) the account for an already verified
// federated identity and issues an access/refresh pair. Google accounts are
// born active and verified; there is no password path.
func (s *UserService) LoginWithGoogle(ctx context.Context, payload *identity.Payload) (*TokenPair, error) {
	repo := usersrepo.NewPostgresRepository(s.db)

	userID := int64(0)
	existing, err := repo.FindByEmail(ctx, payload.Email, models.ProviderGoogle)
	switch {
	case err == nil:
		userID = existing.ID
	case errors.Is(err, usersrepo.ErrNotFound):
		var picture *string
		if payload.Picture != "" {
			picture = &payload.Picture
		}
		user := &models.User{
			AuthID:          uuid.New().String(),
			Name:            payload.Name,
			Email:           payload.Email,
			Provider:        models.ProviderGoogle,
			ProviderKey:     payload.Subject,
			Role:            models.RoleUser,
			Picture:         picture,
			Active:          true,
			IsEmailVerified: true,
			CreateTime:      time.Now().UTC(),
		}
		if userID, err = repo.Insert(ctx, user); err != nil {
			return nil, errcode.System(err)
		}
	default:
		return nil, errcode.System(err)
	}

	return s.issueTokenPair(ctx, userID)
}

// RequestVerificationMail re-sends a register or forgot-password mail. No
// row is created, so unlike Register there is nothing to compensate.
func (s *UserService) RequestVerificationMail(ctx context.Context, email, callbackURL string, typ models.TokenType) error {
	repo := usersrepo.NewPostgresRepository(s.db)

	user, err := repo.FindByEmail(ctx, email, models.ProviderLocal)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return errcode.New(errcode.CodeUserNotFound, "user not found")
		}
		return errcode.System(err)
	}

	if typ == models.TokenTypeRegister && user.IsEmailVerified {
		return errcode.New(errcode.CodeAlreadyVerified, "account already verified, please sign in")
	}

	if err := s.sendConfirmMail(ctx, user.ID, callbackURL, user.Name, user.Email, typ); err != nil {
		s.logger.Error(ctx, "verification mail failed", "user_id", user.ID, "email", email, "error", err)
		return errcode.Wrap(errcode.CodeEmailSendFailed, "could not send verification mail, please try again later", err)
	}

	return nil
}

// ResetPassword consumes a forgot-password token and replaces the password
// hash. A new password identical to the stored one fails with PasswordReuse
// and leaves the token valid, so the user can retry before it expires.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	verification, err := s.tokens.CheckToken(ctx, token, models.TokenTypeForgotPwd)
	if err != nil {
		return err
	}

	repo := usersrepo.NewPostgresRepository(s.db)
	user, err := repo.FindByID(ctx, verification.UserID)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return errcode.New(errcode.CodeUserNotFound, "user not found")
		}
		return errcode.System(err)
	}
	if user.PasswordHash == nil {
		return errcode.New(errcode.CodeUserNotFound, "user not found")
	}

	if hash.Verify(newPassword, *user.PasswordHash) {
		return errcode.New(errcode.CodePasswordReuse, "new password must differ from the old one")
	}

	newHash, err := hash.PasswordHashSalt(newPassword)
	if err != nil {
		return errcode.System(err)
	}

	now := time.Now().UTC()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updated, err := usersrepo.NewPostgresRepository(tx).UpdatePassword(ctx, user.ID, newHash, now)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("password update affected no rows, user %d", user.ID)
		}
		return nil
	})
	if err != nil {
		return errcode.System(fmt.Errorf("password reset transaction: %w", err))
	}

	// token removal after commit; a failure here leaves a token that can only
	// trip the PasswordReuse guard until its TTL reaps it
	if err := s.tokens.DeleteToken(ctx, verification.TokenID); err != nil {
		s.logger.Warn(ctx, "password updated but token delete failed",
			"user_id", user.ID, "token_id", verification.TokenID, "error", err)
	}

	return nil
}

// Logout removes the refresh token if it is still valid. Logout never fails
// visibly: an invalid, expired or already removed token is still a
// successful logout from the caller's point of view.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	verification, err := s.tokens.CheckToken(ctx, refreshToken, models.TokenTypeRefresh)
	if err != nil {
		s.logger.Debug(ctx, "logout with dead token", "error", err)
		return nil
	}

	if err := s.tokens.DeleteToken(ctx, verification.TokenID); err != nil {
		s.logger.Warn(ctx, "logout token delete failed", "token_id", verification.TokenID, "error", err)
	}

	return nil
}

// RefreshSession rotates the refresh token and returns a fresh pair.
func (s *UserService) RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error) {
	return s.tokens.Rotate(ctx, refreshToken)
}

// UserInfo is the profile snapshot returned to authenticated clients.
type UserInfo struct {
	ID         int64
	Name       string
	Email      string
	Provider   models.Provider
	Role       models.Role
	Picture    *string
	CreateTime time.Time
	UpdateTime *time.Time
}

// GetUserInfo returns the profile for userID with the avatar resolved to an
// absolute URL.
func (s *UserService) GetUserInfo(ctx context.Context, userID int64, baseURL string) (*UserInfo, error) {
	user, err := usersrepo.NewPostgresRepository(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return nil, errcode.New(errcode.CodeUserNotFound, "user not found")
		}
		return nil, errcode.System(err)
	}

	return &UserInfo{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Provider:   user.Provider,
		Role:       user.Role,
		Picture:    resolvePictureURL(user.Picture, baseURL),
		CreateTime: user.CreateTime,
		UpdateTime: user.UpdateTime,
	}, nil
}

// EditUserInput carries a profile update. Avatar is optional.
type EditUserInput struct {
	UserID     int64
	Name       string
	Avatar     io.Reader
	AvatarName string
}

// EditUser updates the display name and, when provided, stores a new avatar.
// Returns the resolved avatar URL, if one was uploaded.
func (s *UserService) EditUser(ctx context.Context, in EditUserInput, baseURL string) (*string, error) {
	repo := usersrepo.NewPostgresRepository(s.db)

	user, err := repo.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, usersrepo.ErrNotFound) {
			return nil, errcode.New(errcode.CodeUserNotFound, "user not found")
		}
		return nil, errcode.System(err)
	}

	var picture *string
	if in.Avatar != nil {
		p, err := s.files.Save(ctx, in.Avatar, s.config.UploadFolder, user.AuthID, in.AvatarName)
		if err != nil {
			return nil, errcode.System(fmt.Errorf("saving avatar: %w", err))
		}
		picture = &p
	}

	affected, err := repo.UpdateProfile(ctx, in.UserID, in.Name, picture, time.Now().UTC())
	if err != nil {
		return nil, errcode.System(err)
	}
	if affected == 0 {
		return nil, errcode.New(errcode.CodeResourceNotFound, "user not found or already deleted")
	}

	return resolvePictureURL(picture, baseURL), nil
}

// RemoveAvatar clears the avatar reference.
func (s *UserService) RemoveAvatar(ctx context.Context, userID int64) (bool, error) {
	affected, err := usersrepo.NewPostgresRepository(s.db).ClearPicture(ctx, userID, time.Now().UTC())
	if err != nil {
		return false, errcode.System(err)
	}
	return affected > 0, nil
}

// issueTokenPair mints a signed access token and a stored refresh token.
func (s *UserService) issueTokenPair(ctx context.Context, userID int64) (*TokenPair, error) {
	access, err := s.tokens.CreateAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.CreateToken(ctx, userID, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sendConfirmMail mints a token of the given type and sends the matching
// templated mail with the callback link.
func (s *UserService) sendConfirmMail(ctx context.Context, userID int64, callbackURL, name, email string, typ models.TokenType) error {
	token, err := s.tokens.CreateToken(ctx, userID, typ)
	if err != nil {
		return err
	}

	link, err := mail.ConfirmLink(callbackURL, token, typ)
	if err != nil {
		return err
	}

	body, err := mail.RenderConfirm(typ, mail.LinkData{UserName: name, Link: link})
	if err != nil {
		return err
	}

	subject := s.config.RegisterSubject
	if typ == models.TokenTypeForgotPwd {
		subject = s.config.ForgotPwdSubject
	}

	return s.mailer.Send(ctx, mail.Message{
		From:    s.config.MailFrom,
		To:      email,
		Subject: subject,
		HTML:    body,
	})
}

// resolvePictureURL passes absolute http(s) URLs through unchanged and
// prefixes stored paths with the service base URL.
func resolvePictureURL(picture *string, baseURL string) *string {
	if picture == nil || *picture == "" {
		return nil
	}

	if u, err := url.Parse(*picture); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return picture
	}

	resolved := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*picture, "/")
	return &resolved
}
