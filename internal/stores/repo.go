package stores

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	"github.com/mariasandoval/storelocator-backend/pkg/geo"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByStoreID loads a store by its external identifier.
func (r *Repository) FindByStoreID(ctx context.Context, storeID string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// List returns one page of stores ordered by store_id, with the total count.
// Optional type and status filters narrow both the page and the count.
func (r *Repository) List(ctx context.Context, p pagination.Params, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Store{})
	if storeType != nil {
		query = query.Where("store_type = ?", *storeType)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var stores []models.Store
	if err := query.
		Order("store_id ASC").
		Offset(p.Offset()).
		Limit(p.PageSize).
		Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// FindWithinBox returns stores whose coordinates fall inside the bounding
// box. The box is a coarse prefilter; callers apply the exact distance cut.
func (r *Repository) FindWithinBox(ctx context.Context, box geo.BoundingBox, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, error) {
	query := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat).
		Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	if storeType != nil {
		query = query.Where("store_type = ?", *storeType)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var stores []models.Store
	if err := query.Order("store_id ASC").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}
