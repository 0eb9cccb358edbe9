// Package server sets up the HTTP server, router, and the GraphQL endpoint.
//
// This is the "composition root" — the one place where the whole dependency
// graph is wired:
//
//	mongo.DB → repositories → LibraryService / AuthService → graph.Resolver
//	                 Broadcaster ─┘                    ↘ graphql schema
//
// Each layer only receives what it needs: services get repository
// interfaces (not *mongo.DB), the resolver gets services (not repositories),
// and the router gets http.Handlers.
//
// The single /graphql endpoint serves three surfaces:
//   - POST with a JSON body → queries and mutations (relay handler)
//   - websocket upgrade    → subscriptions (graphql-transport-ws)
//   - GET /                → GraphiQL, for poking at the API in a browser
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
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"

	"github.com/sakif/library-backend/internal/auth"
	"github.com/sakif/library-backend/internal/graph"
	"github.com/sakif/library-backend/internal/middleware"
	"github.com/sakif/library-backend/internal/pubsub"
	mongoRepo "github.com/sakif/library-backend/internal/repository/mongo"
	"github.com/sakif/library-backend/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	MongoURI  string // document store connection string
	JWTSecret string // HMAC secret for token signing
}

// Server owns the router, the database connection, and the broadcaster. The
// broadcaster lives here (not as a package global) so its lifetime is the
// server's and tests can run servers side by side.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *mongoRepo.DB
	events *pubsub.Broadcaster
}

// New connects to MongoDB, wires the dependency graph, parses the GraphQL
// schema (failing fast on any schema/resolver mismatch), and sets up routes.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := mongoRepo.New(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		events: pubsub.New(),
	}

	if err := s.setupRoutes(); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authSvc := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	librarySvc := service.NewLibraryService(s.db.Authors(), s.db.Books(), s.events, s.logger)

	resolver := graph.NewResolver(librarySvc, authSvc, s.events)
	schema, err := graphql.ParseSchema(graph.Schema, resolver)
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}

	// Global middleware — every request, in order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The websocket handler serves subscriptions and falls back to the relay
	// handler for plain HTTP queries/mutations. auth.CurrentUser runs before
	// both, so resolvers see the same current-user context either way.
	graphqlHandler := graphqlws.NewHandlerFunc(schema, &relay.Handler{Schema: schema})
	s.router.Handle("/graphql", auth.CurrentUser(authSvc)(graphqlHandler))

	s.router.Get("/", s.handleGraphiQL)
	s.router.Get("/healthz", s.handleHealth)

	return nil
}

// handleHealth reports liveness plus the current subscriber count — handy
// when debugging why a client isn't receiving bookAdded events.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","subscribers":%d}`, s.events.SubscriberCount(pubsub.TopicBookAdded))
}

// handleGraphiQL serves an interactive GraphQL console against /graphql.
func (s *Server) handleGraphiQL(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(graphiqlPage))
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s, and
// disconnect from MongoDB last.
func (s *Server) Start() error {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.db.Close(ctx); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", s.config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: subscription websockets are long-lived by design
		// and a write deadline would sever them.
		IdleTimeout: 60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("graphql", fmt.Sprintf("http://localhost:%d/graphql", s.config.Port)),
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
