package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// UserRepository handles persistence of accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := translate(r.db.WithContext(ctx).Create(user).Error); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail looks up a user by exact email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
