package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"apiary-api-server/config"
	"apiary-api-server/internal/api/routes"
	"apiary-api-server/internal/apiary"
	"apiary-api-server/internal/dashboard"
	"apiary-api-server/internal/database"
	"apiary-api-server/internal/graph"
	"apiary-api-server/internal/imaging"
	"apiary-api-server/internal/logger"
	"apiary-api-server/internal/s3"
	"apiary-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("could not load config")
	}

	log, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("could not build logger")
	}
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the document store
	st, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("could not open store")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
	}()

	// 3. Wire the service
	hub := socket.NewHub(log)
	defer hub.Close()

	opts := []apiary.Option{
		apiary.WithNotifier(hub),
		apiary.WithLogger(log),
		apiary.RequireAuth(cfg.JWT.Enforce),
		apiary.WithDashboardOptions(dashboard.Options{RequireResolvedHive: cfg.Dashboard.RequireResolvedHive}),
	}
	if cfg.S3.Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("could not configure photo storage")
		}
		opts = append(opts, apiary.WithPhotoStore(uploader, imaging.Options{
			MaxBytes:  cfg.Server.MaxPhotoBytes,
			MaxPixels: cfg.Server.MaxPhotoPixels,
		}))
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("photo storage enabled")
	} else {
		log.Info().Msg("s3.bucket not set, photo uploads disabled")
	}
	svc := apiary.New(st, opts...)

	schema, err := graph.NewSchema(svc, cfg.Dashboard.AlertLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("could not build graphql schema")
	}

	// 4. Serve until interrupted
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: routes.SetupRouter(cfg, svc, schema, hub, log),
	}
	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
