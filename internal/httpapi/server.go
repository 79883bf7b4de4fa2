package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psergee/authd/internal/identity"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/services"
)

// Server owns the gin engine and its lifecycle.
type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
}

func NewServer(address, baseURL string, users *services.UserService, tokens *services.TokenService, google identity.Provider, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	registerRoutes(engine, baseURL, users, tokens, google, logger)

	return &Server{
		address: address,
		engine:  engine,
		logger:  logger.With("module", "http_server"),
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

func registerRoutes(engine *gin.Engine, baseURL string, users *services.UserService, tokens *services.TokenService, google identity.Provider, logger logging.Logger) {
	account := NewAccountHandler(users, tokens, google, logger)
	user := NewUserHandler(users, baseURL, logger)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	a := v1.Group("/account")
	{
		a.POST("/register", account.Register)
		a.POST("/verify-register", account.VerifyRegistration)
		a.POST("/check-token", account.CheckToken)
		a.POST("/login", account.Login)
		a.POST("/google-login", account.GoogleLogin)
		a.POST("/request-verification-mail", account.RequestVerificationMail)
		a.POST("/reset-pwd", account.ResetPassword)
		a.POST("/logout", account.Logout)
		a.POST("/refresh", account.Refresh)
	}

	u := v1.Group("/user", authRequired(tokens))
	{
		u.GET("", user.GetUserInfo)
		u.PUT("", user.EditUser)
		u.DELETE("/avatar", user.RemoveAvatar)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
