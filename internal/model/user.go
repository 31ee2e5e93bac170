package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" bson:"_id"`
	Name         string    `gorm:"not null" bson:"name"`
	Email        string    `gorm:"uniqueIndex;not null" bson:"email"`
	PasswordHash string    `gorm:"not null" bson:"password"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// BeforeCreate assigns the store id for SQL backends.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
