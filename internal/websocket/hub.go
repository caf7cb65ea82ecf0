package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"deathbydinner-backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub streams a persona's relay events to connected operators. It holds a
// Redis subscription only while at least one operator is connected.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]string
	redisClient *redis.Client
	auth        *middleware.OpsAuth
	channel     string
	cancel      context.CancelFunc
	logger      zerolog.Logger
}

func NewHub(redisClient *redis.Client, auth *middleware.OpsAuth, channel string, logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]string),
		redisClient: redisClient,
		auth:        auth,
		channel:     channel,
		logger:      logger.With().Str("component", "ops_hub").Logger(),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	operator, err := h.auth.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.registerConnection(operator, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// ConnectionCount returns the number of connected operators.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

func (h *Hub) registerConnection(operator string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = operator

	// Start pub/sub subscription on the first connection
	if len(h.connections) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.subscribeToPubSub(ctx)
	}

	h.logger.Info().Str("operator", operator).Int("total", len(h.connections)).Msg("WebSocket connected")
}

func (h *Hub) unregisterConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	operator := h.connections[conn]
	delete(h.connections, conn)

	// If no more connections, cancel pub/sub
	if len(h.connections) == 0 && h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}

	h.logger.Info().Str("operator", operator).Msg("WebSocket disconnected")
}

func (h *Hub) subscribeToPubSub(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, h.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast([]byte(msg.Payload))
		}
	}
}

// Broadcast writes data to every connected operator.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Msg("WebSocket write failed")
		}
	}
}

// SendToAll encodes msg as JSON and broadcasts it, bypassing Redis.
func (h *Hub) SendToAll(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.Broadcast(data)
}
