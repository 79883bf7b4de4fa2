// Package httpapi exposes the account and profile flows over HTTP using gin.
// Handlers translate between JSON/multipart payloads and the service layer,
// and map taxonomy error codes to HTTP statuses.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psergee/authd/internal/errcode"
	"github.com/psergee/authd/internal/identity"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/models"
	"github.com/psergee/authd/internal/services"
)

// AccountHandler serves the unauthenticated account flows.
type AccountHandler struct {
	users  *services.UserService
	tokens *services.TokenService
	google identity.Provider
	logger logging.Logger
}

func NewAccountHandler(users *services.UserService, tokens *services.TokenService, google identity.Provider, logger logging.Logger) *AccountHandler {
	return &AccountHandler{
		users:  users,
		tokens: tokens,
		google: google,
		logger: logger.With("module", "account_handler"),
	}
}

type registerRequest struct {
	Name        string `form:"name" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	Password    string `form:"password" binding:"required,min=8"`
	CallbackURL string `form:"callback_url" binding:"required,url"`
}

// Register accepts a multipart form with the account fields and an optional
// "avatar" file part.
func (h *AccountHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	in := services.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		CallbackURL: req.CallbackURL,
	}

	if header, err := c.FormFile("avatar"); err == nil {
		file, err := header.Open()
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		defer file.Close()
		in.Avatar = file
		in.AvatarName = header.Filename
	}

	if err := h.users.Register(c.Request.Context(), in); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "verification mail sent"})
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *AccountHandler) VerifyRegistration(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.users.VerifyRegistration(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account verified"})
}

type checkTokenRequest struct {
	Token string `json:"token" binding:"required"`
	Type  string `json:"type" binding:"required"`
}

// CheckToken validates a token without consuming it, so the frontend can
// verify a link before showing the matching form.
func (h *AccountHandler) CheckToken(c *gin.Context) {
	var req checkTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	typ, err := models.ParseTokenType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "BadRequest",
			"message": "unknown token type",
		})
		return
	}

	if _, err := h.tokens.CheckToken(c.Request.Context(), req.Token, typ); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token is valid"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type googleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// GoogleLogin validates a Google ID token and signs the account in, creating
// it on first contact.
func (h *AccountHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	payload, err := h.google.Verify(c.Request.Context(), req.Credential)
	if err != nil {
		h.logger.Warn(c.Request.Context(), "google credential rejected", "error", err)
		respondError(c, errcode.New(errcode.CodeLoginFailed, "wrong email or password"))
		return
	}

	pair, err := h.users.LoginWithGoogle(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

type resendRequest struct {
	Email       string `json:"email" binding:"required,email"`
	CallbackURL string `json:"callback_url" binding:"required,url"`
	Type        string `json:"type" binding:"required"`
}

// RequestVerificationMail re-sends a register or forgot-password mail.
// Refresh is a valid token type elsewhere but has no mail, so it is rejected
// here.
func (h *AccountHandler) RequestVerificationMail(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	typ, err := models.ParseTokenType(req.Type)
	if err != nil || typ == models.TokenTypeRefresh {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "BadRequest",
			"message": "type must be register or forgotpwd",
		})
		return
	}

	if err := h.users.RequestVerificationMail(c.Request.Context(), req.Email, req.CallbackURL, typ); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "verification mail sent"})
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AccountHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	pair, err := h.users.RefreshSession(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
