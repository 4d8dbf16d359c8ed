// Package server wires the HTTP server: router, middleware, routes, and
// graceful shutdown. It is the composition root — the store, services and
// handlers are all constructed and connected here, so main stays minimal and
// the whole stack can be assembled in tests.
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
	"github.com/go-chi/cors"

	"github.com/fahim/linkup/internal/auth"
	"github.com/fahim/linkup/internal/config"
	"github.com/fahim/linkup/internal/handler"
	"github.com/fahim/linkup/internal/middleware"
	"github.com/fahim/linkup/internal/service"
	"github.com/fahim/linkup/internal/store"
)

// Server owns the router and the store. The store document is consistent on
// disk after every Update, so shutdown only has to drain in-flight requests.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  *store.Store
}

// New assembles the full dependency chain:
// store → services → handlers → routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(cfg.DataPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  st,
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests driving the server with
// httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var verifier auth.CredentialVerifier = auth.PlainVerifier{}
	if s.config.HashSecrets {
		verifier = auth.NewBcryptVerifier()
	}

	authSvc := service.NewAuthService(s.store, verifier, s.logger)
	graphSvc := service.NewGraphService(s.store, s.logger)
	chatSvc := service.NewChatService(s.store, s.logger)
	feedSvc := service.NewFeedService(s.store, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, tokens, s.logger)
	friendsHandler := handler.NewFriendsHandler(graphSvc, s.logger)
	chatHandler := handler.NewChatHandler(chatSvc, s.logger)
	feedHandler := handler.NewFeedHandler(feedSvc, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Put("/me/avatar", authHandler.HandleUpdateAvatar)
			r.Put("/me/bio", authHandler.HandleUpdateBio)
			r.Get("/users/{userID}", authHandler.HandleGetUser)

			r.Get("/friends", friendsHandler.HandleList)
			r.Get("/friends/requests", friendsHandler.HandleListRequests)
			r.Post("/friends/requests/{userID}", friendsHandler.HandleSendRequest)
			r.Post("/friends/requests/{userID}/accept", friendsHandler.HandleAcceptRequest)
			r.Post("/friends/requests/{userID}/decline", friendsHandler.HandleDeclineRequest)

			r.Get("/chats", chatHandler.HandleListChats)
			r.Get("/chats/{userID}/messages", chatHandler.HandleListMessages)
			r.Post("/chats/{userID}/messages", chatHandler.HandleSendMessage)

			r.Get("/posts", feedHandler.HandleList)
			r.Post("/posts", feedHandler.HandleCreate)
			r.Post("/posts/{postID}/like", feedHandler.HandleToggleLike)
			r.Post("/posts/{postID}/comments", feedHandler.HandleAddComment)
		})
	})

	return nil
}

// Start starts the HTTP server and blocks until a shutdown signal or a
// server error. On SIGINT/SIGTERM, in-flight requests get 30 seconds to
// complete.
func (s *Server) Start() error {
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
			slog.String("store", s.config.DataPath),
			slog.String("environment", s.config.Environment),
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
