package main

import (
	"context"
	"fmt"
	"net/http"
	"valorant-match-scraper/internal/config"
	"valorant-match-scraper/internal/constants"
	fxmodules "valorant-match-scraper/internal/fx"
	"valorant-match-scraper/internal/middleware"
	"valorant-match-scraper/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	scraperServer *server.ScraperServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.HeaderRequestID, middleware.HeaderProcessTime},
	})

	requestIDMiddleware := middleware.RequestID(logger)

	mux.Handle(server.ScraperServicePath, requestIDMiddleware(c.Handler(scraperServer.Handler())))
	mux.Handle("/health", requestIDMiddleware(http.HandlerFunc(server.HealthHandler)))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      mux,
		WriteTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
