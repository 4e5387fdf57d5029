package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user can hold. Access checks compare against these values only.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User stores credentials for the shop.
// Email is stored trimmed and lowercased; PasswordHash is a bcrypt hash, never the plaintext.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsValidRole reports whether role is one the system knows about.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
