package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	router "github.com/EdJGM/ChatSala-WebSocket/internal/adapters/http"
	"github.com/EdJGM/ChatSala-WebSocket/internal/app"
	"github.com/EdJGM/ChatSala-WebSocket/internal/app/orch"
	"github.com/EdJGM/ChatSala-WebSocket/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	match, err := app.ParseDeviceMatch(cfg.DeviceMatch)
	if err != nil {
		log.Fatal().Err(err).Msg("bad device_match")
	}

	registry := app.NewRegistry()
	o := &orch.Orchestrator{
		Registry: registry,
		Relay:    app.NewRelay(registry),
		Policy:   app.SimplePolicy{},
		Resolver: net.DefaultResolver,
		Limits: orch.Limits{
			MaxParticipants: cfg.MaxParticipantsLimit,
			MaxMessageLen:   cfg.MaxMessageLen,
			LookupTimeout:   cfg.LookupTimeout,
		},
	}
	o.Rooms = app.NewStore(
		app.WithPinAllocator(app.NewPinAllocator(cfg.MaxPinAttempts)),
		app.WithAdmissionPolicy(app.OneDevicePolicy{Match: match}),
		app.WithIdleWindow(cfg.IdleWindow),
		app.WithExpiryHook(o.OnRoomExpired),
	)
	o.Admin = app.NewAdminQuery(o.Rooms)

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Str("device_match", match.String()).Dur("idle_window", cfg.IdleWindow).Msg("ChatSala server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
