package collaboration

import (
	"context"
	"log"
	"net/http"

	"github.com/adeebik/eraser/internal/middleware"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins once the web frontends have stable hosts
		return true
	},
}

// TokenVerifier resolves a connect-time credential to a user ID.
type TokenVerifier func(token string) (string, error)

// WebSocketHandler upgrades HTTP connections into coordinator sessions.
type WebSocketHandler struct {
	registry *RoomRegistry
	verify   TokenVerifier
}

// NewWebSocketHandler creates a websocket handler bound to a registry.
func NewWebSocketHandler(registry *RoomRegistry, verify TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{registry: registry, verify: verify}
}

// HandleConnection verifies the bearer credential passed as a query
// parameter and, on success, starts the connection's read and write
// pumps. A missing or invalid credential refuses the connection
// outright; nothing about the room directory leaks to unauthenticated
// callers.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := r.URL.Query().Get("token")
	userID, err := h.verify(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, span := middleware.StartSpan(ctx, "WebSocket.Connect",
		attribute.String("user.id", userID),
	)
	defer span.End()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		middleware.AddSpanError(ctx, err)
		return
	}

	conn := newConn(ws, userID)
	go conn.WritePump()
	// The request context dies when this handler returns; the pump
	// outlives it.
	go conn.ReadPump(context.Background(), h.registry)

	log.Printf("✓ websocket connection established (user: %s, session: %s)",
		userID, conn.session.ID)
}
