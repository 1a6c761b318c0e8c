package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken persists the server-side state of an issued refresh token.
// The opaque secret half never touches the database; only its hash does.
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	TokenHash string    `gorm:"column:token_hash;not null"`
	IssuedAt  time.Time `gorm:"column:issued_at;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	Revoked   bool      `gorm:"column:revoked;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ExpiredAt reports whether the token lifetime has elapsed at the given instant.
func (t RefreshToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
