// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: New opens the store and assembles
//
//	sqldb.DB → AccountService → AccountHandler
//
// then binds handlers to routes. Nothing below this package knows which
// database driver or password mode is in use.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/registration-backend/internal/auth"
	"github.com/sakif/registration-backend/internal/config"
	"github.com/sakif/registration-backend/internal/handler"
	"github.com/sakif/registration-backend/internal/middleware"
	"github.com/sakif/registration-backend/internal/repository/sqldb"
	"github.com/sakif/registration-backend/internal/service"
	"github.com/sakif/registration-backend/internal/validate"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database pool and closes it when Run returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqldb.DB
}

// New opens the store described by cfg and wires every route.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqldb.New(ctx, sqldb.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST /register        → store an account (JSON)
// POST /login           → check credentials (JSON)
// GET  /registrations   → every stored row (JSON, optionally token-gated)
// GET  /healthz         → store reachability
// GET  /                → HomePage.html
// GET  /*               → other files under STATIC_DIR
//
// Middleware runs in the order added. RequestID comes first so the
// logger can tag every line with it.
func (s *Server) setupRoutes() error {
	passwords, err := auth.NewPasswordService(auth.Mode(s.config.PasswordMode))
	if err != nil {
		return err
	}

	guard, err := s.listGuard()
	if err != nil {
		return err
	}

	pages, err := handler.NewPageHandler(s.config.StaticDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	accountService := service.NewAccountService(s.db, validate.New(), passwords, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.SecureHeaders(s.config.IsProduction()))
	s.router.Use(middleware.CORS(s.config.CORSOrigins))

	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.With(auth.Guard(guard)).Get("/registrations", accountHandler.HandleList)
	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Get("/", pages.HandleHome)
	s.router.Get("/*", pages.HandleStatic)

	return nil
}

// listGuard picks the access policy for GET /registrations.
func (s *Server) listGuard() (auth.ListGuard, error) {
	if !s.config.ListingProtected() {
		s.logger.Warn("LIST_TOKEN_SECRET not set; GET /registrations is open to anyone")
		return auth.AllowAll{}, nil
	}

	tokens, err := auth.NewTokenService(s.config.ListTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}
	return auth.NewBearerGuard(tokens), nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database pool.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start listens on the configured port and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		s.db.Close()
		return fmt.Errorf("listening on port %d: %w", s.config.Port, err)
	}
	return s.Run(ctx, ln)
}

// Run serves on ln until ctx is done, then drains in-flight requests for up
// to SHUTDOWN_TIMEOUT and closes the store.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	defer s.db.Close()

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", ln.Addr().String()),
			slog.String("driver", s.config.DBDriver),
			slog.String("password_mode", s.config.PasswordMode),
			slog.Bool("listing_protected", s.config.ListingProtected()),
		)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
