package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"deathbydinner-backend/internal/handlers"
	"deathbydinner-backend/internal/middleware"
	"deathbydinner-backend/internal/services"
	"deathbydinner-backend/internal/websocket"
)

// New wires the HTTP surface. wsHub may be nil when the operator feed is
// not configured.
func New(
	logger zerolog.Logger,
	persona services.Persona,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", handlers.Health)

	// ──── Persona Chat ────
	r.Route(persona.RoutePath(), func(r chi.Router) {
		r.Post("/", chatHandler.Relay)
		r.Get("/config", chatHandler.PersonaConfig)
	})

	// ──── Operator Feed ────
	if wsHub != nil {
		r.Get("/api/ops/ws", wsHub.HandleWebSocket)
	}

	return r
}
