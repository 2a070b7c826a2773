package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account known to the identity provider. This service never
// issues credentials; it only resolves display names and memberships.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Room is a durable collaboration session record. Shared holds the
// opaque share-link token when sharing is enabled.
type Room struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	AdminID   string    `json:"adminId" gorm:"index;not null"`
	Shared    string    `json:"shared,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRoom builds a room record owned by adminID.
func NewRoom(slug, adminID string) *Room {
	return &Room{
		ID:      uuid.NewString(),
		Slug:    slug,
		AdminID: adminID,
	}
}

// Membership links a user to a room. The admin also holds a membership
// row so the member list is complete.
type Membership struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"uniqueIndex:idx_member_user_room;not null"`
	RoomID    string    `json:"roomId" gorm:"uniqueIndex:idx_member_user_room;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is one row of a room's ordered mutation log. Message is an
// opaque JSON-encoded shape or mutation body; log order is the
// auto-increment ID.
type Chat struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RoomID    string    `json:"roomId" gorm:"index;not null"`
	UserID    string    `json:"userId" gorm:"not null"`
	Message   string    `json:"message" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}
