package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kislikjeka/walletclient/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletclient/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletclient/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger             *logger.Logger
	AllowedOrigins     []string
	RateLimitRPS       float64
	RateLimitBurst     int
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	TransactionHandler *handler.TransactionHandler
	JWTMiddleware      func(http.Handler) http.Handler

	// Registry, when set, receives request metrics and is served on /metrics
	Registry *prometheus.Registry
}

// NewRouter creates the wallet API router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Registry != nil {
		r.Use(middleware.Metrics(cfg.Registry))
	}
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondNotFound(w)
	})

	r.Get("/health", handler.GetHealth)
	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	if cfg.AuthHandler != nil {
		r.Post("/auth/login", cfg.AuthHandler.Login)
		r.Post("/users", cfg.AuthHandler.Register)
	}

	if cfg.JWTMiddleware != nil {
		r.Group(func(r chi.Router) {
			r.Use(cfg.JWTMiddleware)

			if cfg.UserHandler != nil {
				r.Get("/users", cfg.UserHandler.List)
				r.Get("/users/profile", cfg.UserHandler.Profile)
				r.Post("/users/load-balance", cfg.UserHandler.LoadBalance)
			}

			if cfg.TransactionHandler != nil {
				r.Post("/transactions", cfg.TransactionHandler.CreateTransaction)
				r.Get("/transactions", cfg.TransactionHandler.GetTransactions)
			}
		})
	}

	return r
}

func respondNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"status":"error","message":"not found","data":null}`))
}
