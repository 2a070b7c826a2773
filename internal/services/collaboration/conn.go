package collaboration

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/adeebik/eraser/internal/models"
	"github.com/adeebik/eraser/internal/protocol"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// Conn is one authenticated websocket connection. A connection belongs
// to at most one room at a time.
type Conn struct {
	session *models.Session
	ws      *websocket.Conn
	send    chan []byte

	mu   sync.Mutex
	room string
}

// newConn wraps an upgraded websocket for a verified user.
func newConn(ws *websocket.Conn, userID string) *Conn {
	return &Conn{
		session: models.NewSession(userID, ""),
		ws:      ws,
		send:    make(chan []byte, sendBuffer),
	}
}

// Enqueue queues an outbound frame without blocking.
func (c *Conn) Enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Conn) sendError(text string) {
	c.Enqueue(protocol.EncodeError(text))
}

func (c *Conn) setRoom(roomID string) {
	c.mu.Lock()
	c.room = roomID
	c.mu.Unlock()
}

func (c *Conn) roomID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// ReadPump reads frames until the transport closes, dispatching each
// into the registry. It runs on its own goroutine per connection.
func (c *Conn) ReadPump(ctx context.Context, registry *RoomRegistry) {
	defer func() {
		registry.Disconnect(c)
		c.ws.Close()
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error for user %s: %v", c.session.UserID, err)
			}
			return
		}
		registry.HandleMessage(ctx, c, raw)
	}
}

// WritePump drains the send buffer into the socket and keeps the
// connection alive with pings. Separate from ReadPump so a slow reader
// cannot stall writes.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
