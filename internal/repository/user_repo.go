package repository

import (
	"context"
	"fmt"

	"github.com/adeebik/eraser/internal/models"

	"gorm.io/gorm"
)

// UserRepositoryImpl resolves user records created by the external
// identity service.
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// FindByID returns the user with the given ID.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// DisplayName returns the display name for a user, falling back to the
// ID when the record is missing.
func (r *UserRepositoryImpl) DisplayName(ctx context.Context, userID string) (string, error) {
	user, err := r.FindByID(ctx, userID)
	if err != nil {
		if err == ErrNotFound {
			return userID, nil
		}
		return "", err
	}
	return user.Name, nil
}
