package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/lasroun/collectgate/internal/config"
	"github.com/lasroun/collectgate/internal/http/dto"
	"github.com/lasroun/collectgate/internal/http/handler"
	"github.com/lasroun/collectgate/internal/http/middleware"
	"github.com/lasroun/collectgate/internal/realtime/websocket"
	redisRepo "github.com/lasroun/collectgate/internal/repository/redis"
	"github.com/lasroun/collectgate/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	config *config.Config
	cache  *redisRepo.Cache
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	collectService *service.CollectService,
	authMiddleware *middleware.Auth,
	cache *redisRepo.Cache,
	wsHandler *websocket.Handler,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()
	validate := validator.New()

	server := &Server{
		router: router,
		config: cfg,
		cache:  cache,
		logger: logger,
	}

	collectHandler := handler.NewCollectHandler(collectService, validate, logger)
	transactionHandler := handler.NewTransactionHandler(collectService, logger)
	webhookHandler := handler.NewWebhookHandler(collectService, logger)
	rateLimits := middleware.NewRateLimitMiddleware(cache, cfg.RateLimit)

	server.setupMiddleware(cfg, logger)
	server.setupRoutes(collectHandler, transactionHandler, webhookHandler, wsHandler, authMiddleware, rateLimits)

	return server
}

// setupMiddleware configures global middleware
func (s *Server) setupMiddleware(cfg *config.Config, logger *slog.Logger) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))

	s.router.Use(middleware.Logger(logger))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.CORS.AllowedOrigins
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(middleware.Security())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	collectHandler *handler.CollectHandler,
	transactionHandler *handler.TransactionHandler,
	webhookHandler *handler.WebhookHandler,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.Auth,
	rateLimits *middleware.RateLimitMiddleware,
) {
	// Health checks (no rate limit)
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ready", s.readinessCheck)

	s.router.Route("/v1", func(r chi.Router) {
		// Merchant-facing routes (bearer auth when enabled)
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Middleware())

			r.With(rateLimits.Collect()).Post("/collect", collectHandler.Create)
			r.With(rateLimits.Collect()).Post("/collect/pay", collectHandler.Pay)
			r.With(rateLimits.API()).Get("/transaction/{id}", transactionHandler.GetByID)
		})

		// Webhook route: authenticated by signature, never by bearer
		// token, and the body must reach the handler unparsed.
		r.With(rateLimits.Webhook()).Post("/webhook", webhookHandler.Handle)
	})

	// WebSocket subscription for payment updates
	s.router.Get("/ws/payments", wsHandler.HandlePayments)
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// healthCheck handles GET /health
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dto.HealthResponse{
		Status:  "ok",
		Version: s.config.App.Version,
	})
}

// readinessCheck handles GET /ready
func (s *Server) readinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.cache.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(dto.HealthResponse{Status: "degraded"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dto.HealthResponse{Status: "ready"})
}
