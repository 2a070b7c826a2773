package collaboration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/adeebik/eraser/internal/models"
	"github.com/adeebik/eraser/internal/protocol"
)

// HandleMessage dispatches one inbound frame from a connection. Parse
// and access failures answer with an error frame and leave the
// connection open; a persistence failure aborts the broadcast for that
// mutation.
func (r *RoomRegistry) HandleMessage(ctx context.Context, c *Conn, raw []byte) {
	env, err := protocol.Decode(raw)
	if err != nil {
		c.sendError(ErrMalformedMessage.Error())
		return
	}

	switch env.Type {
	case protocol.TypeJoin:
		err = r.handleJoin(ctx, c, env)
	case protocol.TypeLeave:
		err = r.handleLeave(c, env)
	case protocol.TypeChat:
		err = r.handleChat(ctx, c, env, raw)
	case protocol.TypeUpdate:
		err = r.handleUpdate(ctx, c, env, raw)
	case protocol.TypeStateSync:
		err = r.handleStateSync(ctx, c, env, raw)
	case protocol.TypeClearCanvas:
		err = r.handleClearCanvas(ctx, c, env, raw)
	default:
		err = ErrMalformedMessage
	}

	if err != nil {
		log.Printf("message %s from user %s failed: %v", env.Type, c.session.UserID, err)
		c.sendError(err.Error())
	}
}

func (r *RoomRegistry) handleJoin(ctx context.Context, c *Conn, env protocol.Envelope) error {
	var payload protocol.JoinPayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	if payload.RoomID == "" {
		return ErrMalformedMessage
	}

	record, err := r.store.FindByID(ctx, payload.RoomID)
	if err != nil {
		return ErrRoomNotFound
	}

	userID := c.session.UserID
	isAdmin := record.AdminID == userID
	if !isAdmin {
		ok, err := r.store.FindMembership(ctx, payload.RoomID, userID)
		if err != nil {
			return fmt.Errorf("membership lookup failed: %w", err)
		}
		if !ok {
			return ErrAccessDenied
		}
	}

	name, err := r.users.DisplayName(ctx, userID)
	if err != nil {
		name = userID
	}
	c.session.UserName = name

	role := models.RoleMember
	if isAdmin {
		role = models.RoleAdmin
	}
	reconnected := r.join(payload.RoomID, record.AdminID, userID, name, role, c)
	c.setRoom(payload.RoomID)

	presence := protocol.PresencePayload{UserID: userID, Name: name}
	if reconnected {
		if msg, err := protocol.Encode(protocol.TypeUserOnline, presence); err == nil {
			r.broadcast(payload.RoomID, userID, msg)
		}
		reply, err := protocol.Encode(protocol.TypeReconnected, protocol.ReconnectedPayload{
			RoomID:   payload.RoomID,
			UserName: name,
			IsAdmin:  isAdmin,
		})
		if err != nil {
			return err
		}
		c.Enqueue(reply)
		return nil
	}

	if msg, err := protocol.Encode(protocol.TypeUserJoined, presence); err == nil {
		r.broadcast(payload.RoomID, userID, msg)
	}
	reply, err := protocol.Encode(protocol.TypeJoined, protocol.JoinedPayload{
		RoomID:  payload.RoomID,
		IsAdmin: isAdmin,
	})
	if err != nil {
		return err
	}
	c.Enqueue(reply)
	return nil
}

func (r *RoomRegistry) handleLeave(c *Conn, env protocol.Envelope) error {
	var payload protocol.LeavePayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	if c.roomID() != payload.RoomID {
		return ErrNotJoined
	}

	userID := c.session.UserID
	r.leave(payload.RoomID, userID)
	c.setRoom("")

	if msg, err := protocol.Encode(protocol.TypeUserLeft, protocol.PresencePayload{
		UserID: userID,
		Name:   c.session.UserName,
	}); err == nil {
		r.broadcast(payload.RoomID, userID, msg)
	}

	reply, err := protocol.Encode(protocol.TypeLeft, protocol.LeftPayload{RoomID: payload.RoomID})
	if err != nil {
		return err
	}
	c.Enqueue(reply)
	return nil
}

// requireJoined checks that the connection has joined the room it is
// mutating and returns the live room.
func (r *RoomRegistry) requireJoined(c *Conn, roomID string) (*room, error) {
	if roomID == "" || c.roomID() != roomID {
		return nil, ErrNotJoined
	}
	rm, ok := r.lookupRoom(roomID)
	if !ok {
		return nil, ErrNotJoined
	}
	return rm, nil
}

func (r *RoomRegistry) handleChat(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	var payload protocol.ChatPayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	rm, err := r.requireJoined(c, payload.RoomID)
	if err != nil {
		return err
	}

	// Persist before relaying; a store failure must not become visible
	// to peers.
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if err := r.chats.Append(ctx, payload.RoomID, c.session.UserID, payload.Message); err != nil {
		return fmt.Errorf("failed to persist mutation: %w", err)
	}
	r.relayLocked(rm, c.session.UserID, raw)
	return nil
}

func (r *RoomRegistry) handleUpdate(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	var payload protocol.UpdatePayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	rm, err := r.requireJoined(c, payload.RoomID)
	if err != nil {
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if err := r.chats.ReplaceAt(ctx, payload.RoomID, payload.ShapeIndex, payload.Shape); err != nil {
		return fmt.Errorf("failed to persist update: %w", err)
	}
	r.relayLocked(rm, c.session.UserID, raw)
	return nil
}

func (r *RoomRegistry) handleStateSync(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	var payload protocol.StateSyncPayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	rm, err := r.requireJoined(c, payload.RoomID)
	if err != nil {
		return err
	}

	// The log stores one message per shape, so split the snapshot.
	var shapes []json.RawMessage
	if err := json.Unmarshal([]byte(payload.Shapes), &shapes); err != nil {
		return ErrMalformedMessage
	}
	messages := make([]string, len(shapes))
	for i, s := range shapes {
		messages[i] = string(s)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if err := r.chats.ReplaceAll(ctx, payload.RoomID, c.session.UserID, messages); err != nil {
		return fmt.Errorf("failed to persist state sync: %w", err)
	}
	r.relayLocked(rm, c.session.UserID, raw)
	return nil
}

func (r *RoomRegistry) handleClearCanvas(ctx context.Context, c *Conn, env protocol.Envelope, raw []byte) error {
	var payload protocol.ClearCanvasPayload
	if err := protocol.DecodePayload(env, &payload); err != nil {
		return ErrMalformedMessage
	}
	rm, err := r.requireJoined(c, payload.RoomID)
	if err != nil {
		return err
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if err := r.chats.DeleteAll(ctx, payload.RoomID); err != nil {
		return fmt.Errorf("failed to clear mutation log: %w", err)
	}
	r.relayLocked(rm, c.session.UserID, raw)
	return nil
}

// relayLocked forwards the original frame to every other online member.
// The caller holds rm.mu, which pins broadcast order to persist order.
func (r *RoomRegistry) relayLocked(rm *room, exceptUserID string, msg []byte) {
	for id, m := range rm.members {
		if id == exceptUserID || m.peer == nil {
			continue
		}
		if !m.peer.Enqueue(msg) {
			log.Printf("dropping relay to slow peer %s in room %s", id, rm.id)
		}
	}
}

// Disconnect marks the connection's member offline and announces it.
// The roster entry survives until the offline TTL expires.
func (r *RoomRegistry) Disconnect(c *Conn) {
	roomID := c.roomID()
	if roomID == "" {
		return
	}
	if !r.markOffline(roomID, c.session.UserID, c) {
		return
	}
	if msg, err := protocol.Encode(protocol.TypeUserOffline, protocol.PresencePayload{
		UserID: c.session.UserID,
		Name:   c.session.UserName,
	}); err == nil {
		r.broadcast(roomID, c.session.UserID, msg)
	}
}
