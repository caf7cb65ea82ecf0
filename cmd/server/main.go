package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"deathbydinner-backend/internal/config"
	"deathbydinner-backend/internal/database"
	"deathbydinner-backend/internal/handlers"
	"deathbydinner-backend/internal/logging"
	"deathbydinner-backend/internal/middleware"
	"deathbydinner-backend/internal/router"
	"deathbydinner-backend/internal/services"
	"deathbydinner-backend/internal/websocket"
	"deathbydinner-backend/internal/worker"
)

const shutdownGrace = 30 * time.Second

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info().Str("env", cfg.Env).Msg("🚀 Starting Death by Dinner chat relay...")

	// ──── Step 2: Resolve Persona ────
	persona, err := services.LookupPersona(cfg.ChatPersona)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Persona lookup failed")
	}
	log.Info().Str("persona", persona.Slug).Str("route", persona.RoutePath()).Msg("✓ Persona loaded")

	// ──── Step 3: Initialize Completion Client ────
	completion, err := services.NewCompletionClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("✗ Completion client initialization failed")
	}
	defer completion.Close()
	if key, envVar := cfg.APIKey(); key == "" {
		log.Warn().Str("provider", completion.Provider()).Msgf("%s is not set; chat requests will fail until it is configured", envVar)
	} else {
		log.Info().Str("provider", completion.Provider()).Msg("✓ Completion client initialized")
	}

	// ──── Step 4: Initialize Redis (optional) ────
	var events services.EventPublisher = services.NoopEventPublisher{}
	var wsHub *websocket.Hub
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("✗ Redis connection failed")
		}
		defer redisClients.Close()
		eventPool := worker.NewPool(
			services.NewRedisEventPublisher(redisClients.Publisher),
			cfg.EventWorkers,
			cfg.EventQueueSize,
			log,
		)
		eventPool.Start()
		defer eventPool.Stop()
		events = eventPool
		log.Info().Msg("✓ Redis connected, relay events enabled")

		// ──── Step 5: Start Operator WebSocket Hub ────
		if cfg.OpsFeedEnabled() {
			wsHub = websocket.NewHub(
				redisClients.Subscriber,
				middleware.NewOpsAuth(cfg.OpsJWTSecret),
				services.EventsChannel(persona.Slug),
				log,
			)
			log.Info().Msg("✓ Operator WebSocket hub started")
		}
	}

	// ──── Step 6: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(persona, completion, events, log)
	r := router.New(log, persona, chatHandler, wsHub, cfg.FrontendURL)

	// No WriteTimeout: the upstream call runs on the transport's own default.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: time.Duration(cfg.ReadTimeoutSec) * time.Second,
		IdleTimeout: time.Duration(cfg.IdleTimeoutSec) * time.Second,
	}

	log.Info().Msgf("✓ Chat relay ready on http://localhost:%s", cfg.Port)
	log.Info().Msgf("  Chat: POST http://localhost:%s%s", cfg.Port, persona.RoutePath())
	if wsHub != nil {
		log.Info().Msgf("  Ops:  ws://localhost:%s/api/ops/ws", cfg.Port)
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	// Graceful shutdown: serve returns only after in-flight relays finish, so
	// the deferred event pool, Redis and completion client close after them.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = serve(ctx, server, ln, shutdownGrace, func() {
		log.Info().Msg("Shutting down...")
		if wsHub != nil {
			wsHub.SendToAll(map[string]string{"type": "server_shutdown"})
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Server error")
		return
	}
	log.Info().Msg("Server stopped")
}
