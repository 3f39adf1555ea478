// Package api provides the HTTP API server and handlers for the PMemo application.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pmemoapp/pmemo-server/internal/config"
	"github.com/pmemoapp/pmemo-server/internal/http/response"
	"github.com/pmemoapp/pmemo-server/internal/logger"
	"github.com/pmemoapp/pmemo-server/internal/ratelimit"
	"github.com/pmemoapp/pmemo-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService  *service.AuthService
	tagService   *service.TagService
	memoService  *service.MemoService
	loginLimiter *ratelimit.KeyedRateLimiter
	router       *chi.Mux
	logger       *logger.Logger
	corsOrigins  []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, authService *service.AuthService, tagService *service.TagService, memoService *service.MemoService, log *logger.Logger) *Server {
	s := &Server{
		authService:  authService,
		tagService:   tagService,
		memoService:  memoService,
		loginLimiter: ratelimit.New(cfg.Auth.LoginRPS, cfg.Auth.LoginBurst),
		router:       chi.NewRouter(),
		logger:       log,
		corsOrigins:  cfg.Server.CORSOrigins,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints. Register and login are public but throttled
		// per client to slow down credential guessing.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimitByClient(s.loginLimiter))
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
			})

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleGetCurrentUser)
			})
		})

		// Tags (require auth).
		r.Route("/tags", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateTag)
			r.Get("/", s.handleListTags)
			r.Get("/{id}", s.handleGetTag)
			r.Put("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		// Memos (require auth).
		r.Route("/memos", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateMemo)
			r.Get("/", s.handleListMemos)
			r.Get("/search", s.handleListMemos)
			r.Get("/tag/{tagID}", s.handleListMemosByTag)
			r.Get("/{id}", s.handleGetMemo)
			r.Put("/{id}", s.handleUpdateMemo)
			r.Delete("/{id}", s.handleDeleteMemo)
		})
	})
}

// handleHealthCheck reports server liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger.Logger)
}
