// Package server runs the HTTP API and its background workers until the process is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	pgRepos "github.com/fitalumni/alumni/internal/app/repositories/postgres"
	"github.com/fitalumni/alumni/internal/bootstrap"
	"github.com/fitalumni/alumni/internal/pkg/helpers"
)

const (
	shutdownTimeout = 15 * time.Second
	idleTimeout     = 2 * time.Minute
)

// Server owns the listener, the dependency graph and the database pool
type Server struct {
	http   *http.Server
	deps   *bootstrap.Dependencies
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// New loads the configuration and builds everything the API needs. Nothing listens until Run.
func New(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, pgRepos.NewRepositories(pool), lgr)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("build dependencies: %w", err)
	}

	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      bootstrap.SetupRouter(cfg, deps, lgr),
			ReadTimeout:  helpers.ParseDuration(cfg.Server.ReadTimeout, 15*time.Second),
			WriteTimeout: helpers.ParseDuration(cfg.Server.WriteTimeout, 30*time.Second),
			IdleTimeout:  idleTimeout,
		},
		deps:   deps,
		pool:   pool,
		logger: lgr,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	s.deps.Start(context.WithoutCancel(ctx))

	listenErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		listenErr <- s.http.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-listenErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info().Msg("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return errors.Join(runErr, s.shutdown(shutdownCtx))
}

// shutdown drains HTTP first so no handler outlives the workers or the pool
func (s *Server) shutdown(ctx context.Context) error {
	var err error
	if shutdownErr := s.http.Shutdown(ctx); shutdownErr != nil {
		s.logger.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
		err = fmt.Errorf("http shutdown: %w", shutdownErr)
	}

	s.deps.Stop(ctx)
	s.pool.Close()

	s.logger.Info().Msg("Server stopped")
	return err
}
