package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariasandoval/storelocator-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Role         enums.Role       `gorm:"column:role;type:user_role;not null;default:'viewer'"`
	Status       enums.UserStatus `gorm:"column:status;type:user_status;not null;default:'active'"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// IsActive reports whether the account may authenticate.
func (u User) IsActive() bool {
	return u.Status == enums.UserStatusActive
}
