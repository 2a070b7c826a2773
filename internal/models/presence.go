package models

import (
	"time"

	"github.com/segmentio/ksuid"
)

// Role distinguishes the room admin from ordinary members.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Presence is the liveness view of one room member as tracked by the
// coordinator. A disconnected member stays in the roster with Online
// false until the offline timeout purges it.
type Presence struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

// Session identifies one websocket connection. A user reconnecting gets
// a new session but re-attaches to the same member entry.
type Session struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// NewSession mints a session for a verified connection.
func NewSession(userID, userName string) *Session {
	return &Session{
		ID:          ksuid.New().String(),
		UserID:      userID,
		UserName:    userName,
		ConnectedAt: time.Now(),
	}
}
