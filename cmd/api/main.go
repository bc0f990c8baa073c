package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"videoserver/internal/adapter/repo"
	"videoserver/internal/http/handlers"
	"videoserver/internal/http/httpapi"
	"videoserver/internal/infra"
	"videoserver/internal/infra/geoip"
	"videoserver/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	tasks := repo.NewTaskRepository(runner)
	projects := repo.NewProjectRepository(runner, tasks)
	credits := repo.NewCreditRepository(runner)
	analytics := repo.NewAnalyticsRepository(runner)

	metrics := infra.NewMetrics("api")

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip resolver unavailable")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}

	app := &handlers.App{
		Log:            logger,
		Projects:       projects,
		Tasks:          tasks,
		Credits:        credits,
		Analytics:      analytics,
		Metrics:        metrics,
		GenerationCost: cfg.GenerationCost,
		EditCost:       cfg.EditCost,
	}

	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:        logger,
		Metrics:       metrics,
		JWTSecret:     cfg.JWTSecret,
		DefaultLocale: cfg.DefaultLocale,
		CountryLookup: countryLookup,
		RateLimit:     cfg.RateLimitPerMin,
		StaticDir:     storagePath,
		CORSOrigins:   cfg.CORSOrigins,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
