// Package protocol defines the JSON message envelopes exchanged between
// canvas clients and the room coordinator over a websocket connection.
//
// Shapes travel inside payloads as JSON-encoded strings rather than nested
// objects, so the coordinator can persist and relay them without knowing
// the shape schema.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the kind of message carried by an Envelope.
type MessageType string

// Client to server message types.
const (
	TypeJoin        MessageType = "join"
	TypeLeave       MessageType = "leave"
	TypeChat        MessageType = "chat"
	TypeUpdate      MessageType = "update"
	TypeStateSync   MessageType = "state_sync"
	TypeClearCanvas MessageType = "clear_canvas"
)

// Server to client message types. Chat, update, state_sync and
// clear_canvas are relayed under their original type.
const (
	TypeJoined      MessageType = "joined"
	TypeLeft        MessageType = "left"
	TypeReconnected MessageType = "reconnected"
	TypeUserJoined  MessageType = "user-joined"
	TypeUserLeft    MessageType = "user-left"
	TypeUserOnline  MessageType = "user-online"
	TypeUserOffline MessageType = "user-offline"
	TypeError       MessageType = "error"
)

// Envelope is the outer frame for every message. Error frames carry their
// description in Text and have no payload.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Text    string          `json:"text,omitempty"`
}

// JoinPayload asks the coordinator to attach this connection to a room.
type JoinPayload struct {
	RoomID string `json:"roomId"`
}

// LeavePayload detaches this connection's membership from a room.
type LeavePayload struct {
	RoomID string `json:"roomId"`
}

// ChatPayload carries a create mutation. Message is a JSON-encoded shape.
type ChatPayload struct {
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId,omitempty"`
}

// UpdatePayload carries an in-place shape replacement. Shape is a
// JSON-encoded shape; ShapeID addresses the target by its stable
// identifier, ShapeIndex remains for peers that address by position.
type UpdatePayload struct {
	ShapeIndex int    `json:"shapeIndex"`
	ShapeID    string `json:"shapeId,omitempty"`
	Shape      string `json:"shape"`
	RoomID     string `json:"roomId"`
}

// StateSyncPayload replaces the whole scene. Shapes is a JSON-encoded
// array of shapes.
type StateSyncPayload struct {
	Shapes string `json:"shapes"`
	RoomID string `json:"roomId"`
}

// ClearCanvasPayload wipes the scene and the persisted log of a room.
type ClearCanvasPayload struct {
	RoomID string `json:"roomId"`
}

// JoinedPayload acknowledges a first-time join.
type JoinedPayload struct {
	RoomID  string `json:"roomId"`
	IsAdmin bool   `json:"isAdmin"`
}

// ReconnectedPayload acknowledges a join that re-attached an existing
// member entry.
type ReconnectedPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LeftPayload acknowledges a leave.
type LeftPayload struct {
	RoomID string `json:"roomId"`
}

// PresencePayload announces a membership or liveness transition of a peer.
type PresencePayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// Encode marshals an envelope of the given type around payload.
func Encode(t MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}

// EncodeError builds an error frame with the given description.
func EncodeError(text string) []byte {
	raw, _ := json.Marshal(Envelope{Type: TypeError, Text: text})
	return raw
}

// Decode parses the outer envelope of a raw frame.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("envelope has no type")
	}
	return env, nil
}

// DecodePayload parses the payload of an envelope into dst.
func DecodePayload(env Envelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", env.Type)
	}
	if err := json.Unmarshal(env.Payload, dst); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", env.Type, err)
	}
	return nil
}
