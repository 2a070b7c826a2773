package repository

import (
	"context"
	"fmt"

	"github.com/adeebik/eraser/internal/models"

	"gorm.io/gorm"
)

// ChatRepositoryImpl stores each room's ordered mutation log.
//
// Query patterns:
//   - Log: initial scene load and relays to late joiners
//   - Append: create mutations
//   - ReplaceAt: position-addressed in-place updates
//   - ReplaceAll / DeleteAll: wholesale resync and canvas clear
type ChatRepositoryImpl struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *gorm.DB) *ChatRepositoryImpl {
	return &ChatRepositoryImpl{db: db}
}

// Log returns the room's mutation log in append order.
func (r *ChatRepositoryImpl) Log(ctx context.Context, roomID string) ([]models.Chat, error) {
	var chats []models.Chat
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load mutation log: %w", err)
	}
	return chats, nil
}

// Append adds one mutation to the end of the room's log.
func (r *ChatRepositoryImpl) Append(ctx context.Context, roomID, userID, message string) error {
	chat := &models.Chat{
		RoomID:  roomID,
		UserID:  userID,
		Message: message,
	}
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("failed to append mutation: %w", err)
	}
	return nil
}

// ReplaceAt overwrites the message at the given position in the room's
// ordered log. Positions beyond the log are an error.
func (r *ChatRepositoryImpl) ReplaceAt(ctx context.Context, roomID string, index int, message string) error {
	if index < 0 {
		return fmt.Errorf("mutation index %d out of range", index)
	}

	var target models.Chat
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Offset(index).
		First(&target).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("mutation index %d out of range", index)
		}
		return fmt.Errorf("failed to locate mutation: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", target.ID).
		Update("message", message).Error
	if err != nil {
		return fmt.Errorf("failed to replace mutation: %w", err)
	}
	return nil
}

// ReplaceAll atomically swaps the room's log for the given messages.
func (r *ChatRepositoryImpl) ReplaceAll(ctx context.Context, roomID, userID string, messages []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.Chat{}).Error; err != nil {
			return err
		}
		for _, msg := range messages {
			chat := &models.Chat{RoomID: roomID, UserID: userID, Message: msg}
			if err := tx.Create(chat).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace mutation log: %w", err)
	}
	return nil
}

// DeleteAll wipes the room's log.
func (r *ChatRepositoryImpl) DeleteAll(ctx context.Context, roomID string) error {
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&models.Chat{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete mutation log: %w", err)
	}
	return nil
}
