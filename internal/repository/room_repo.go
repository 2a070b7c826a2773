package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/adeebik/eraser/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a room, membership or user lookup
// matches nothing.
var ErrNotFound = errors.New("not found")

// RoomRepositoryImpl manages durable room records and memberships.
type RoomRepositoryImpl struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) *RoomRepositoryImpl {
	return &RoomRepositoryImpl{db: db}
}

// Create persists a room and the admin's own membership row.
func (r *RoomRepositoryImpl) Create(ctx context.Context, slug, adminID string) (*models.Room, error) {
	room := models.NewRoom(slug, adminID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		member := &models.Membership{UserID: adminID, RoomID: room.ID}
		return tx.Create(member).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return room, nil
}

// FindByID returns the room with the given ID.
func (r *RoomRepositoryImpl) FindByID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", roomID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

// FindByShareLink resolves a share-link token to its room.
func (r *RoomRepositoryImpl) FindByShareLink(ctx context.Context, link string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, "shared = ? AND shared <> ''", link).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve share link: %w", err)
	}
	return &room, nil
}

// SetShareLink stores a share-link token on a room the caller administers.
func (r *RoomRepositoryImpl) SetShareLink(ctx context.Context, roomID, adminID, link string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Room{}).
		Where("id = ? AND admin_id = ?", roomID, adminID).
		Update("shared", link)
	if result.Error != nil {
		return fmt.Errorf("failed to set share link: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a room the caller administers, along with its
// memberships and mutation log.
func (r *RoomRepositoryImpl) Delete(ctx context.Context, roomID, adminID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND admin_id = ?", roomID, adminID).Delete(&models.Room{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete room: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Membership{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships: %w", err)
		}
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Chat{}).Error; err != nil {
			return fmt.Errorf("failed to delete mutation log: %w", err)
		}
		return nil
	})
}

// AddMember records a membership. Adding an existing member is an error
// surfaced by the unique index.
func (r *RoomRepositoryImpl) AddMember(ctx context.Context, roomID, userID string) error {
	member := &models.Membership{UserID: userID, RoomID: roomID}
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (r *RoomRepositoryImpl) RemoveMember(ctx context.Context, roomID, userID string) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.Membership{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// FindMembership reports whether userID belongs to roomID.
func (r *RoomRepositoryImpl) FindMembership(ctx context.Context, roomID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// ListForUser returns every room the user belongs to.
func (r *RoomRepositoryImpl) ListForUser(ctx context.Context, userID string) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.room_id = rooms.id").
		Where("memberships.user_id = ?", userID).
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}
