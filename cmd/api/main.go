package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fitalumni/alumni/internal/pkg/logger"
	"github.com/fitalumni/alumni/internal/server"
)

// @title Alumni Network API
// @version 1.0
// @description Alumni network backend: member profiles, feed, job board, events, connections and messaging.

// @contact.name FIT Alumni Office
// @contact.email alumni@fit.edu.vn

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token as "Bearer <token>". Browsers may rely on the session cookie instead.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server stopped with errors")
		os.Exit(1)
	}
}
