// Package sandbox assembles a wallet API server, in memory or on
// PostgreSQL, that the client is developed and tested against.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletclient/internal/infra/memory"
	"github.com/kislikjeka/walletclient/internal/infra/postgres"
	"github.com/kislikjeka/walletclient/internal/platform/transfer"
	"github.com/kislikjeka/walletclient/internal/platform/user"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletclient/pkg/config"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Options configures a sandbox server
type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	InitialBalance decimal.Decimal
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Registry       *prometheus.Registry

	// Pool, when set, stores accounts in PostgreSQL instead of memory.
	// The schema must already be applied.
	Pool *pgxpool.Pool
}

// Sandbox is a fully wired wallet API
type Sandbox struct {
	Users     *user.Service
	Transfers *transfer.Service
	Tokens    *middleware.JWTService
	Handler   http.Handler

	logger *logger.Logger
}

// New wires repositories, services, handlers and the router
func New(opts Options, log *logger.Logger) *Sandbox {
	var (
		userRepo user.Repository
		txRepo   transfer.Repository
		txm      user.TxManager
	)
	if opts.Pool != nil {
		store := postgres.NewStore(opts.Pool)
		userRepo, txRepo, txm = postgres.NewUserRepository(store), postgres.NewTransactionRepository(store), store
	} else {
		store := memory.NewStore()
		userRepo, txRepo, txm = memory.NewUserRepository(store), memory.NewTransactionRepository(store), store
	}

	userSvc := user.NewService(userRepo, txm, log, user.WithInitialBalance(opts.InitialBalance))
	transferSvc := transfer.NewService(userRepo, txRepo, txm, log)
	jwtSvc := middleware.NewJWTService(opts.JWTSecret, opts.TokenTTL)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:             log,
		AllowedOrigins:     opts.AllowedOrigins,
		RateLimitRPS:       opts.RateLimitRPS,
		RateLimitBurst:     opts.RateLimitBurst,
		AuthHandler:        handler.NewAuthHandler(userSvc, jwtSvc, log),
		UserHandler:        handler.NewUserHandler(userSvc, log),
		TransactionHandler: handler.NewTransactionHandler(transferSvc, log),
		JWTMiddleware:      middleware.JWTMiddleware(jwtSvc),
		Registry:           opts.Registry,
	})

	return &Sandbox{
		Users:     userSvc,
		Transfers: transferSvc,
		Tokens:    jwtSvc,
		Handler:   router,
		logger:    log.Component("sandbox"),
	}
}

// Seed creates the configured accounts. Accounts that already exist are skipped.
func (s *Sandbox) Seed(ctx context.Context, seed *config.SeedConfig) error {
	if seed == nil {
		return nil
	}
	for _, acc := range seed.Accounts {
		u, err := s.Users.RegisterWithBalance(ctx, acc.Email, acc.Password, acc.BalanceOf())
		if errors.Is(err, user.ErrUserAlreadyExists) {
			s.logger.Debug("seed account already exists", "email", acc.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed account %s: %w", acc.Email, err)
		}
		s.logger.Info("seed account created", "email", u.Email, "balance", u.Balance.String())
	}
	return nil
}
