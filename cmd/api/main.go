package main

import (
	"log"
	"time"

	"jamef-tracker/internal/core/cache"
	"jamef-tracker/internal/core/config"
	"jamef-tracker/internal/core/logger"
	"jamef-tracker/internal/core/proxy"
	"jamef-tracker/internal/core/server"
	authadapters "jamef-tracker/internal/features/auth/adapters"
	authservice "jamef-tracker/internal/features/auth/service"
	jobsadapters "jamef-tracker/internal/features/jobs/adapters"
	jobsservice "jamef-tracker/internal/features/jobs/service"
	trackingadapters "jamef-tracker/internal/features/tracking/adapters"
	trackinghandler "jamef-tracker/internal/features/tracking/handler"
	trackingports "jamef-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// @title Jamef Rastreamento API
// @version 1.0
// @description Asynchronous shipment tracking for Jamef invoices: submit a lookup, poll the returned job id.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("strategy", cfg.Jamef.Strategy),
	)

	// Pick the fetch strategy.
	var fetcher trackingports.Fetcher
	switch cfg.Jamef.Strategy {
	case "browser":
		fetcher = trackingadapters.NewJamefScraperAdapter(cfg.Jamef.SiteURL, proxy.Settings{
			Enabled:  cfg.Proxy.Enabled,
			Hostname: cfg.Proxy.Hostname,
			Port:     cfg.Proxy.Port,
			Username: cfg.Proxy.Username,
			Password: cfg.Proxy.Password,
		})
		l.Info("Using browser scraping strategy", zap.String("site", cfg.Jamef.SiteURL))
	default:
		tokenCache := authservice.NewTokenCache(
			authadapters.NewJamefAuthAdapter(cfg.Jamef),
			time.Duration(cfg.Jamef.TokenSafetyMarginSeconds)*time.Second,
		)
		fetcher = trackingadapters.NewJamefAPIAdapter(cfg.Jamef, tokenCache)
		l.Info("Using REST API strategy", zap.String("api", cfg.Jamef.APIURL))
	}

	// Optional Redis-backed result cache.
	var results trackingports.ResultCache
	if cfg.Cache.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Cache.RedisURL)
		if err != nil {
			l.Fatal("Failed to create Redis cache", zap.Error(err))
		}
		defer redisCache.Close()

		results = trackingadapters.NewRedisResultCache(
			redisCache,
			time.Duration(cfg.Cache.ResultTTLSeconds)*time.Second,
		)
		l.Info("Result cache enabled")
	}

	registry := jobsadapters.NewMemoryRegistry()
	jobService := jobsservice.NewJobService(
		registry,
		fetcher,
		results,
		time.Duration(cfg.Jobs.RetentionMinutes)*time.Minute,
		time.Duration(cfg.Jamef.FetchTimeoutSeconds)*time.Second,
	)

	trackingHdl := trackinghandler.NewTrackingHandler(jobService, cfg.Jamef.DefaultCNPJ)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/", trackingHdl.Health)
	srv.App.Get("/rastrear/:numero_nf", trackingHdl.Track)
	srv.App.Get("/status/:job_id", trackingHdl.Status)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
