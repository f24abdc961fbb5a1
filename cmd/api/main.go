// @title                       Users API
// @version                     1.0
// @description                 User management REST backend with role-based access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/99minutos/users-api/internal/api"
	"github.com/99minutos/users-api/internal/api/handler"
	"github.com/99minutos/users-api/internal/core/ports"
	"github.com/99minutos/users-api/internal/core/service"
	"github.com/99minutos/users-api/internal/infrastructure/config"
	mongostore "github.com/99minutos/users-api/internal/infrastructure/db/mongo"
	pgstore "github.com/99minutos/users-api/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/users-api/internal/infrastructure/db/redis"
	"github.com/99minutos/users-api/internal/infrastructure/mail"
	"github.com/99minutos/users-api/internal/infrastructure/queue"
	"github.com/99minutos/users-api/internal/pkg/tracking"
	"github.com/99minutos/users-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application failed: %v", err)
	}
}

// store bundles the repositories of the selected driver.
type store struct {
	accounts ports.AccountRepository
	orders   ports.OrderCounter
	ping     handler.PingFunc
	close    func(ctx context.Context)
}

func run() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	lg := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "users-api",
	})

	reporter, err := tracking.New(cfg.SentryDSN, cfg.Env)
	if err != nil {
		lg.Warn().Err(err).Msg("sentry disabled")
	}
	defer reporter.Flush(2 * time.Second)

	st, err := openStore(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	revocations := redisstore.NewRevocationStore(rdb)

	sender := mailSender(cfg.Mail, lg)
	adminSender := sender
	var mailQueue *queue.MailQueue
	if cfg.Mail.AdminAsync {
		mailQueue = queue.NewMailQueue(cfg.Mail.Workers, sender, cfg.Mail.Timeout, lg)
		mailQueue.Start()
		adminSender = mailQueue
	}
	notifier := mail.NewNotifier(sender, adminSender, cfg.Mail.AdminAddress)

	accounts := service.NewAccountService(st.accounts, st.orders, notifier, service.AccountOptions{
		MailTimeout:          cfg.Mail.Timeout,
		CaseInsensitiveEmail: cfg.EmailCaseInsensitive,
	}, lg)
	auth := service.NewAuthService(st.accounts, revocations, cfg.JWTSecret, cfg.JWTTTL, cfg.EmailCaseInsensitive, lg)

	if cfg.SeedDemoUsers {
		if _, err := service.NewSeeder(st.accounts, lg).Seed(ctx); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Accounts:    accounts,
		Auth:        auth,
		Revocations: revocations,
		JWTSecret:   cfg.JWTSecret,
		Health: map[string]handler.PingFunc{
			cfg.StoreDriver: st.ping,
			"redis":         func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Reporter: reporter,
		Log:      lg,
		Metrics:  true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Str("mail", cfg.Mail.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error().Err(err).Msg("server forced to shutdown")
	}
	if mailQueue != nil {
		if err := mailQueue.Shutdown(shutdownCtx); err != nil {
			lg.Warn().Err(err).Msg("mail queue did not drain")
		}
	}

	lg.Info().Msg("graceful shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, lg zerolog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := pgstore.Connect(ctx, pgstore.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, err
		}
		return &store{
			accounts: pgstore.NewAccountRepository(pool),
			orders:   pgstore.NewOrderRepository(pool),
			ping:     pool.Ping,
			close:    func(context.Context) { pool.Close() },
		}, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		repo := mongostore.NewAccountRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			lg.Warn().Err(err).Msg("failed to ensure account indexes")
		}
		return &store{
			accounts: repo,
			orders:   mongostore.NewOrderRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:    func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil
	}
}

func mailSender(cfg config.MailConfig, lg zerolog.Logger) ports.MailSender {
	switch cfg.Driver {
	case config.MailSMTP:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
		})
	case config.MailMailtrap:
		return mail.NewMailtrapSender(cfg.MailtrapURL, cfg.MailtrapKey, cfg.From, &http.Client{Timeout: cfg.Timeout})
	default:
		return mail.NewLogSender(lg.With().Str("component", "mail").Logger())
	}
}
