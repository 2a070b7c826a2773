// Package client connects an edit engine to a coordination server. It
// dials the websocket, queues relayed mutations for the goroutine that
// owns the controller and sends the controller's own mutations out.
package client

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"

	"github.com/adeebik/eraser/internal/canvas"
	"github.com/adeebik/eraser/internal/protocol"

	"github.com/gorilla/websocket"
)

// inboxBuffer bounds coordinator frames queued between the read loop
// and the interaction goroutine.
const inboxBuffer = 256

// EditSession is one user's live connection to a room. It owns the
// websocket and the canvas controller; the controller's outbound
// mutations go through the session's Send.
//
// The controller is not goroutine-safe, so the session never mutates it
// from the read loop. Listen only queues decoded frames; the goroutine
// that drives the controller drains Events and passes each envelope to
// Dispatch, keeping every scene mutation on that one goroutine.
type EditSession struct {
	roomID     string
	controller *canvas.Controller

	ws      *websocket.Conn
	writeMu sync.Mutex

	onPresence func(t protocol.MessageType, p protocol.PresencePayload)
	onError    func(text string)

	inbox chan protocol.Envelope
	done  chan struct{}
}

// Dial connects to the coordination server and builds the session's
// controller. The bearer token travels as a query parameter because
// browser websocket clients cannot set headers.
func Dial(ctx context.Context, serverURL, token, roomID string) (*EditSession, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial coordinator: %w", err)
	}

	s := &EditSession{
		roomID: roomID,
		ws:     ws,
		inbox:  make(chan protocol.Envelope, inboxBuffer),
		done:   make(chan struct{}),
	}
	s.controller = canvas.NewController(roomID, s)
	return s, nil
}

// Controller returns the canvas controller driven by this session.
func (s *EditSession) Controller() *canvas.Controller { return s.controller }

// OnPresence registers a callback for roster events (user-joined,
// user-left, user-online, user-offline). It fires from Dispatch, on the
// interaction goroutine.
func (s *EditSession) OnPresence(fn func(t protocol.MessageType, p protocol.PresencePayload)) {
	s.onPresence = fn
}

// OnError registers a callback for error frames from the coordinator.
// It fires from Dispatch, on the interaction goroutine.
func (s *EditSession) OnError(fn func(text string)) {
	s.onError = fn
}

// Send implements canvas.Sender. Mutations the controller emits are
// written straight to the socket.
func (s *EditSession) Send(t protocol.MessageType, payload any) {
	msg, err := protocol.Encode(t, payload)
	if err != nil {
		log.Printf("failed to encode %s message: %v", t, err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Printf("failed to send %s message: %v", t, err)
	}
}

// Join announces the session to its room. The coordinator answers with
// a joined or reconnected frame on Events.
func (s *EditSession) Join() {
	s.Send(protocol.TypeJoin, protocol.JoinPayload{RoomID: s.roomID})
}

// Leave detaches from the room without closing the connection.
func (s *EditSession) Leave() {
	s.Send(protocol.TypeLeave, protocol.LeavePayload{RoomID: s.roomID})
}

// Listen reads coordinator frames until the connection closes and
// queues them on Events. It never touches the controller; run it on
// its own goroutine and keep draining Events until it closes.
func (s *EditSession) Listen() {
	defer func() {
		close(s.inbox)
		close(s.done)
	}()
	for {
		_, raw, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("coordinator connection lost: %v", err)
			}
			return
		}

		env, err := protocol.Decode(raw)
		if err != nil {
			log.Printf("dropping malformed frame: %v", err)
			continue
		}
		s.inbox <- env
	}
}

// Events returns the queue of coordinator envelopes. The goroutine that
// owns the controller must drain it and hand each envelope to Dispatch.
// The channel closes when the connection does.
func (s *EditSession) Events() <-chan protocol.Envelope { return s.inbox }

// Dispatch applies one coordinator envelope: mutations go into the
// controller, presence and error frames to their callbacks. Call it
// only from the goroutine that owns the controller.
func (s *EditSession) Dispatch(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeChat, protocol.TypeUpdate, protocol.TypeStateSync, protocol.TypeClearCanvas:
		if err := s.controller.ApplyRemote(env); err != nil {
			log.Printf("failed to apply remote %s: %v", env.Type, err)
		}
	case protocol.TypeUserJoined, protocol.TypeUserLeft, protocol.TypeUserOnline, protocol.TypeUserOffline:
		if s.onPresence == nil {
			return
		}
		var p protocol.PresencePayload
		if err := protocol.DecodePayload(env, &p); err != nil {
			return
		}
		s.onPresence(env.Type, p)
	case protocol.TypeError:
		if s.onError != nil {
			s.onError(env.Text)
		}
	case protocol.TypeJoined, protocol.TypeReconnected, protocol.TypeLeft:
		// Acknowledgements; nothing to apply.
	}
}

// Done is closed when the read loop exits.
func (s *EditSession) Done() <-chan struct{} { return s.done }

// Close tears down the websocket.
func (s *EditSession) Close() error {
	s.writeMu.Lock()
	s.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	return s.ws.Close()
}
