// Command server runs the social post generation API.
//
//	@title			Social Posts API
//	@version		1.0
//	@description	Generates Instagram captions and Twitter posts from text or images.
//	@BasePath		/
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

	"github.com/tbourn/go-social-posts/internal/config"
	httpapi "github.com/tbourn/go-social-posts/internal/http"
	"github.com/tbourn/go-social-posts/internal/llm"
	"github.com/tbourn/go-social-posts/internal/logging"
	"github.com/tbourn/go-social-posts/internal/observability"
	"github.com/tbourn/go-social-posts/internal/repo"
	"github.com/tbourn/go-social-posts/internal/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownGrace = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	logging.Setup(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version, observability.ModelAttribute(cfg.GenAI.Model))
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	// A nil Generator keeps the server up and answers generation requests
	// with the configuration error.
	var gen services.Generator
	client, err := llm.NewClient(ctx, cfg.GenAI)
	switch {
	case err == nil:
		gen = client
		log.Info().Str("model", client.Model()).Msg("generation enabled")
	case errors.Is(err, llm.ErrMissingAPIKey):
		log.Warn().Msg("GEMINI_API_KEY not set; generation endpoints will report a configuration error")
	default:
		log.Fatal().Err(err).Msg("generation client setup failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, gen, cfg)

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
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Bool("user_scoped", cfg.UserScoped).
			Str("version", version).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if err := shutdownTracing(sctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}
