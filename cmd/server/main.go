// Command server runs the call analysis HTTP API.
//
//	@title			Call Analysis API
//	@version		1.0
//	@description	Uploads sales call recordings, transcribes them and scores the conversation.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-call-analysis/docs"
	"github.com/tbourn/go-call-analysis/internal/analyze"
	"github.com/tbourn/go-call-analysis/internal/config"
	httpapi "github.com/tbourn/go-call-analysis/internal/http"
	"github.com/tbourn/go-call-analysis/internal/media"
	"github.com/tbourn/go-call-analysis/internal/observability"
	"github.com/tbourn/go-call-analysis/internal/repo"
	"github.com/tbourn/go-call-analysis/internal/sample"
	"github.com/tbourn/go-call-analysis/internal/services"
	"github.com/tbourn/go-call-analysis/internal/sysutil"
	"github.com/tbourn/go-call-analysis/internal/transcribe"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), "dev"))
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var backend repo.Backend
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		backend = repo.NewSQLiteBackend(db)
	case config.StoreBadger:
		bb, err := repo.OpenBadger(cfg.BadgerPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.BadgerPath).Msg("open badger")
		}
		defer func() { _ = bb.Close() }()
		backend = bb
	case config.StoreMemory:
		backend = repo.NewMemoryBackend()
	default:
		log.Warn().Str("backend", cfg.StoreBackend).Msg("record store disabled; records will not persist")
	}
	store := repo.NewStore(backend)

	files, err := media.New(cfg.UploadDir, "/media")
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("prepare upload dir")
	}

	analyzer, err := analyze.New(ctx, cfg.Analysis)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis provider")
	}

	var gen *sample.Generator
	if cfg.DemoSeed != 0 {
		gen = sample.NewSeeded(cfg.DemoSeed, nil, nil)
	} else {
		gen = sample.NewGenerator(nil, nil, nil)
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Deps{
		Pipeline: services.NewPipeline(store, files, transcribe.New(cfg.Transcribe), analyzer),
		Demo:     services.NewDemoService(store, gen),
		Results:  services.NewResultService(store),
		Stats:    store,
		Media:    files,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreBackend).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}
