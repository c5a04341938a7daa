package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"cloudvars/internal/clock"
	"cloudvars/internal/config"
	"cloudvars/internal/server"
	"cloudvars/internal/storage"
)

func main() {
	var (
		addr       = flag.String("addr", "", "listen address (overrides config file and PORT)")
		policyName = flag.String("policy", "", "conflict policy: strict or lww")
		origins    = flag.String("origins", "", "comma-separated allowed CORS origins")
		configPath = flag.String("config", "", "path to YAML config file")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			logger.Fatal().Err(err).Msg("failed to load config")
		}
	}
	cfg.ApplyEnv()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *policyName != "" {
		policy, err := config.ParsePolicy(*policyName)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid -policy")
		}
		cfg.Policy = policy
	}
	if *origins != "" {
		cfg.AllowedOrigins = config.ParseOrigins(*origins)
	}
	if *debug {
		cfg.Debug = true
	}

	if !cfg.Debug {
		logger = logger.Level(zerolog.InfoLevel)
	}

	store := storage.New(clock.Wall{}, cfg.Policy)
	store.SetLogger(logger.With().Str("component", "store").Logger())

	srv := server.New(store, cfg.AllowedOrigins, logger.With().Str("component", "http").Logger())
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	logger.Info().
		Str("addr", cfg.ListenAddr).
		Str("policy", cfg.Policy.String()).
		Strs("origins", cfg.AllowedOrigins).
		Msg("cloud variables server starting")

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server failed")
	}
	logger.Info().Msg("server stopped")
}
