// Package main is the entry point for the library GraphQL server.
//
// Its job is deliberately small: read configuration from the environment,
// build a logger, hand both to the server package, and exit non-zero if
// anything fails. All actual logic lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/sakif/library-backend/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// PORT defaults to 4000; MONGODB_URI and JWT_SECRET are required — the
	// server is useless without a database and can't sign tokens without a
	// secret, so fail fast rather than limp along.
	port := 4000
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		logger.Error("MONGODB_URI not set")
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET not set")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:      port,
		MongoURI:  mongoURI,
		JWTSecret: jwtSecret,
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
