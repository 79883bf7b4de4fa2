// Package app initializes and runs the auth service: it wires the relational
// store, the key-value token store, the mail and file backends, and the HTTP
// server, and handles graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/psergee/authd/internal/auth"
	"github.com/psergee/authd/internal/config"
	"github.com/psergee/authd/internal/filestore"
	"github.com/psergee/authd/internal/httpapi"
	"github.com/psergee/authd/internal/identity"
	"github.com/psergee/authd/internal/kv"
	"github.com/psergee/authd/internal/logging"
	"github.com/psergee/authd/internal/mail"
	"github.com/psergee/authd/internal/migrations"
	tokensrepo "github.com/psergee/authd/internal/repositories/tokens"
	"github.com/psergee/authd/internal/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewJSON()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := kv.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	signer, err := auth.NewSigner(cfg.SecretKey, cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("signer init error: %w", err)
	}

	tokens := services.NewTokenService(db, tokensrepo.NewRedisRepository(store, logger), signer, cfg, logger)

	files, err := filestore.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("file store init error: %w", err)
	}

	users := services.NewUserService(db, tokens, newMailSender(cfg), files, cfg, logger)
	google := identity.NewGoogleProvider(cfg.GoogleClientID)

	server := httpapi.NewServer(cfg.EndpointAddrHTTP, cfg.PublicBaseURL, users, tokens, google, logger)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

// newMailSender picks the Resend HTTP API when a key is configured and falls
// back to plain SMTP otherwise.
func newMailSender(cfg *config.Config) mail.Sender {
	if cfg.MailResendAPIKey != "" {
		return mail.NewResendSender(cfg.MailResendAPIKey)
	}
	return mail.NewSMTPSender(cfg.MailSMTPHost, cfg.MailSMTPPort, cfg.MailSMTPPassword)
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
