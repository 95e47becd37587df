// Package server wires the application together: configuration in,
// repositories, services, and handlers constructed in one place, routes
// registered, graceful shutdown handled.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vichithchamodya/product-catalog/internal/auth"
	"github.com/vichithchamodya/product-catalog/internal/cache"
	"github.com/vichithchamodya/product-catalog/internal/config"
	"github.com/vichithchamodya/product-catalog/internal/handler"
	"github.com/vichithchamodya/product-catalog/internal/middleware"
	sqliteRepo "github.com/vichithchamodya/product-catalog/internal/repository/sqlite"
	"github.com/vichithchamodya/product-catalog/internal/service"
	"github.com/vichithchamodya/product-catalog/internal/session"
	"github.com/vichithchamodya/product-catalog/internal/storage"
)

// Server owns the router and every resource with a lifecycle: the database
// connection and the optional Redis client are closed on shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	cache  *cache.ProductCache
}

// New assembles the whole dependency graph. The chain mirrors the layering:
// sqlite.DB implements the repository interfaces, services receive the
// interfaces, handlers receive the services.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The product list cache is optional: no Redis, no caching.
	var productCache *cache.ProductCache
	if cfg.RedisAddr != "" {
		productCache, err = cache.NewProductCache(cfg.RedisAddr, logger)
		if err != nil {
			logger.Warn("Redis unavailable, product list caching disabled",
				slog.String("error", err.Error()),
			)
			productCache = nil
		}
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		cache:  productCache,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		productCache.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes builds middleware, dependencies, and the route table.
func (s *Server) setupRoutes() error {
	cfg := s.config

	// === Shared infrastructure ===
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	sessions := session.NewManager(cfg.CookieSecure, int(auth.DefaultTokenTTL.Seconds()))
	guard := auth.NewGuard("/auth/login", "/auth/dashboard")

	store, err := storage.NewDiskStore(cfg.UploadsDir, "/uploads")
	if err != nil {
		return fmt.Errorf("creating object store: %w", err)
	}

	renderer, err := handler.NewRenderer(cfg.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	// === OAuth providers ===
	// Only providers with credentials get registered; the login screen
	// offers whatever is present.
	providers := auth.ProviderRegistry{}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		providers.Register(auth.NewGoogleProvider(
			cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.BaseURL+"/auth/google/callback",
		))
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		providers.Register(auth.NewGitHubProvider(
			cfg.GitHubClientID, cfg.GitHubClientSecret,
			cfg.BaseURL+"/auth/github/callback",
		))
	}
	if len(providers) == 0 {
		s.logger.Warn("no OAuth providers configured, social login disabled")
	}

	// === Services and handlers ===
	authSvc := service.NewAuthService(s.db, tokens, passwords, s.logger)
	productSvc := service.NewProductService(s.db, store, s.cache, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, sessions, providers, renderer, s.logger)
	dashboardHandler := handler.NewDashboardHandler(productSvc, tokens, sessions, renderer, s.logger)
	profileHandler := handler.NewProfileHandler(renderer, s.logger)
	homeHandler := handler.NewHomeHandler(renderer)
	apiHandler := handler.NewAPIHandler(authSvc, productSvc, s.logger)

	// === Global middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(auth.WithSession(sessions))

	// === Static files and uploaded banner images ===
	s.router.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(cfg.StaticDir))))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(store.Root()))))

	// === Public pages ===
	s.router.Get("/", homeHandler.HandleHome)

	// === Auth screens (logged-in users are bounced to the dashboard) ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectAuthenticated(guard))
		r.Get("/auth/login", authHandler.HandleLoginPage)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/register", authHandler.HandleRegisterPage)
		r.Post("/auth/register", authHandler.HandleRegister)
	})

	// === OAuth hops (no guard: the callback must work mid-flow) ===
	s.router.Get("/auth/{provider}/login", authHandler.HandleOAuthLogin)
	s.router.Get("/auth/{provider}/callback", authHandler.HandleOAuthCallback)

	s.router.Post("/auth/logout", authHandler.HandleLogout)

	// === Protected screens ===
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(guard))
		r.Get("/auth/dashboard", dashboardHandler.HandleDashboard)
		r.Post("/auth/dashboard/products", dashboardHandler.HandleSaveProduct)
		r.Get("/auth/dashboard/products/{id}/delete", dashboardHandler.HandleConfirmDelete)
		r.Post("/auth/dashboard/products/{id}/delete", dashboardHandler.HandleDeleteProduct)
		r.Get("/auth/profile", profileHandler.HandleProfile)
	})

	// === JSON API (token actually validated, 401 instead of redirects) ===
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireToken(tokens))
		r.Get("/me", apiHandler.HandleMe)
		r.Get("/products", apiHandler.HandleListProducts)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database and cache.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.cache.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", s.config.BaseURL),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
