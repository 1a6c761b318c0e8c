package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
)

// RefreshTokenRepository handles refresh token persistence.
type RefreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository binds a GORM DB to refresh token operations.
func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create persists a freshly issued token row.
func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// FindByID loads a token by its identifier half.
func (r *RefreshTokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke flips the token to its terminal revoked state. Revoking an
// already-revoked token is a no-op.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

// DeleteExpiredBefore removes rows whose lifetime elapsed before the cutoff.
// Terminal states never resurrect, so hard deletion is safe housekeeping.
func (r *RefreshTokenRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
