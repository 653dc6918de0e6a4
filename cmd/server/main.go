// Reelmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/dataset"
	"github.com/tomtom215/reelmatch/internal/eventprocessor"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
	ws "github.com/tomtom215/reelmatch/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("dataset", cfg.Dataset.Path).
		Bool("watch", cfg.Dataset.Watch).
		Dur("poll_interval", cfg.Dataset.PollInterval).
		Msg("Starting Reelmatch with supervisor tree")
	if cfg.HasWildcardCORS() {
		logging.Warn().Msg("CORS allows any origin; websocket origin checks accept every site")
	}

	loader, err := dataset.Open(cfg.LoaderConfig(), logging.WithComponent("dataset"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open DuckDB")
	}
	defer func() {
		if err := loader.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing DuckDB")
		}
	}()

	engine, err := recommend.NewEngine(cfg.EngineConfig(), logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	// === EVENTS ===

	wsHub := ws.NewHub(0, cfg.Events.WebSocketBuffer)

	wmLogger := logging.NewWatermillAdapter(logging.WithComponent("events"))
	evCfg := eventprocessor.DefaultConfig()
	evCfg.BufferSize = cfg.Events.BufferSize

	bus := eventprocessor.NewBus(evCfg, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	publisher := eventprocessor.NewPublisher(bus, wmLogger)
	defer publisher.Close() //nolint:errcheck // Close never fails
	engine.AddListener(publisher)

	eventRouter, err := eventprocessor.NewRouter(evCfg, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}
	if _, err := eventprocessor.RegisterWebSocketRelay(eventRouter, bus, wsHub, wmLogger); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register websocket relay")
	}
	logging.Info().Strs("handlers", eventRouter.Handlers()).Msg("Event router configured")

	// === DATASET ===

	reloader := services.NewReloadService(engine, loader.Source, reloadConfig(cfg), logging.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := initialLoad(ctx, reloader); err != nil {
		// A deferred Close would not run after Fatal.
		_ = loader.Close() //nolint:errcheck // exiting
		logging.Fatal().Err(err).Msg("Dataset is unusable")
	}

	// === HTTP ===

	handler := api.NewHandler(cfg, engine, loader, reloader, wsHub)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(reloader)
	tree.AddMessagingService(eventRouter)
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("Services added to supervisor tree")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	if err := waitForTree(ctx, errCh); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
