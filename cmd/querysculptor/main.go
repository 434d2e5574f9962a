package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/querysculptor/querysculptor/internal/api"
	"github.com/querysculptor/querysculptor/internal/config"
	"github.com/querysculptor/querysculptor/internal/executor"
	"github.com/querysculptor/querysculptor/internal/mcp"
	"github.com/querysculptor/querysculptor/internal/mcp/resources"
	"github.com/querysculptor/querysculptor/internal/mcp/tools"
	"github.com/querysculptor/querysculptor/internal/observability"
	"github.com/querysculptor/querysculptor/internal/schema"
	"github.com/querysculptor/querysculptor/internal/session"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	showVersion    = flag.Bool("version", false, "Show version information")
	validateConfig = flag.Bool("validate", false, "Validate configuration and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("QuerySculptor %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Date: %s\n", BuildDate)
		os.Exit(0)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().
		Str("version", Version).
		Str("commit", Commit).
		Msg("Starting QuerySculptor")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *validateConfig {
		log.Info().Msg("Configuration is valid")
		os.Exit(0)
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	mcp.ServerVersion = Version

	schemaCache := schema.NewCache(schema.NewClient(cfg.Upstream.RequestTimeout))
	store := session.NewFallbackStore(cfg.Session.RedisURL, cfg.Session.TTL, cfg.Session.ConnectTimeout)
	defer func() { _ = store.Close() }()

	appCtx := &tools.AppContext{
		Config:  cfg,
		Schemas: schemaCache,
		Store:   store,
		Locks:   session.NewLocks(),
		Exec:    executor.New(cfg),
		Metrics: observability.GetMetrics(),
	}

	mcpHandler := mcp.NewHandler(&cfg.MCP)
	tools.RegisterAll(mcpHandler.Server(), appCtx)
	mcpHandler.Server().ResourceRegistry().Register(resources.NewSchemaResource(schemaCache, cfg))

	server := api.NewServer(cfg, mcpHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Shutdown error")
		}
	}

	log.Info().Msg("QuerySculptor stopped")
}
