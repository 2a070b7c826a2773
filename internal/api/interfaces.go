package api

import (
	"context"

	"github.com/adeebik/eraser/internal/models"
)

// RoomDirectory defines what handlers need from room persistence. The
// interface lives here, with its consumer, so fakes for handler tests
// stay small.
type RoomDirectory interface {
	Create(ctx context.Context, slug, adminID string) (*models.Room, error)
	FindByID(ctx context.Context, roomID string) (*models.Room, error)
	FindByShareLink(ctx context.Context, link string) (*models.Room, error)
	SetShareLink(ctx context.Context, roomID, adminID, link string) error
	Delete(ctx context.Context, roomID, adminID string) error
	AddMember(ctx context.Context, roomID, userID string) error
	RemoveMember(ctx context.Context, roomID, userID string) error
	FindMembership(ctx context.Context, roomID, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.Room, error)
}

// ChatLog is the read side of the mutation log exposed over HTTP.
type ChatLog interface {
	Log(ctx context.Context, roomID string) ([]models.Chat, error)
}
