package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	"github.com/mariasandoval/storelocator-backend/pkg/geo"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS stores (
  store_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  store_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  address_street TEXT NOT NULL,
  address_city TEXT NOT NULL,
  address_state TEXT NOT NULL,
  address_postal_code TEXT NOT NULL,
  address_country TEXT NOT NULL DEFAULT 'US',
  phone TEXT,
  services TEXT,
  hours_mon TEXT NOT NULL DEFAULT 'closed',
  hours_tue TEXT NOT NULL DEFAULT 'closed',
  hours_wed TEXT NOT NULL DEFAULT 'closed',
  hours_thu TEXT NOT NULL DEFAULT 'closed',
  hours_fri TEXT NOT NULL DEFAULT 'closed',
  hours_sat TEXT NOT NULL DEFAULT 'closed',
  hours_sun TEXT NOT NULL DEFAULT 'closed',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM stores`).Error)
	return db
}

func seedStore(t *testing.T, repo *Repository, storeID string, lat, lon float64, storeType enums.StoreType, status enums.StoreStatus) *models.Store {
	t.Helper()
	store := &models.Store{
		StoreID:           storeID,
		Name:              "Store " + storeID,
		StoreType:         storeType,
		Status:            status,
		Latitude:          lat,
		Longitude:         lon,
		AddressStreet:     "1 Test Way",
		AddressCity:       "Testville",
		AddressState:      "CA",
		AddressPostalCode: "90001",
		AddressCountry:    "US",
		Services:          []string{"pickup"},
		HoursMon:          "09:00-17:00",
		HoursTue:          "closed",
		HoursWed:          "closed",
		HoursThu:          "closed",
		HoursFri:          "closed",
		HoursSat:          "closed",
		HoursSun:          "closed",
	}
	require.NoError(t, repo.Create(context.Background(), store))
	return store
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	seeded := seedStore(t, repo, "ST-100", 40.7, -74.0, enums.StoreTypeRegular, enums.StoreStatusActive)

	found, err := repo.FindByStoreID(context.Background(), "ST-100")
	require.NoError(t, err)
	assert.Equal(t, seeded.Name, found.Name)
	assert.Equal(t, enums.StoreTypeRegular, found.StoreType)
	assert.Equal(t, []string{"pickup"}, []string(found.Services))
	assert.Equal(t, "09:00-17:00", found.HoursMon)

	_, err = repo.FindByStoreID(context.Background(), "ST-999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdate(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	store := seedStore(t, repo, "ST-100", 40.7, -74.0, enums.StoreTypeRegular, enums.StoreStatusActive)

	store.Name = "Renamed"
	store.Status = enums.StoreStatusInactive
	require.NoError(t, repo.Update(context.Background(), store))

	found, err := repo.FindByStoreID(context.Background(), "ST-100")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Equal(t, enums.StoreStatusInactive, found.Status)
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	seedStore(t, repo, "ST-101", 40.0, -74.0, enums.StoreTypeRegular, enums.StoreStatusActive)
	seedStore(t, repo, "ST-102", 41.0, -74.0, enums.StoreTypeOutlet, enums.StoreStatusActive)
	seedStore(t, repo, "ST-103", 42.0, -74.0, enums.StoreTypeRegular, enums.StoreStatusInactive)

	all, total, err := repo.List(context.Background(), pagination.Params{Page: 1, PageSize: 10}, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, "ST-101", all[0].StoreID)

	regular := enums.StoreTypeRegular
	active := enums.StoreStatusActive
	filtered, total, err := repo.List(context.Background(), pagination.Params{Page: 1, PageSize: 10}, &regular, &active)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "ST-101", filtered[0].StoreID)

	page2, total, err := repo.List(context.Background(), pagination.Params{Page: 2, PageSize: 2}, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "ST-103", page2[0].StoreID)
}

func TestRepositoryFindWithinBox(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	seedStore(t, repo, "ST-201", 40.71, -74.00, enums.StoreTypeRegular, enums.StoreStatusActive)
	seedStore(t, repo, "ST-202", 40.80, -73.95, enums.StoreTypeRegular, enums.StoreStatusActive)
	seedStore(t, repo, "ST-203", 34.05, -118.24, enums.StoreTypeRegular, enums.StoreStatusActive)
	seedStore(t, repo, "ST-204", 40.72, -74.01, enums.StoreTypeRegular, enums.StoreStatusInactive)

	box := geo.BoxAround(types.Coordinates{Latitude: 40.75, Longitude: -73.98}, 10)
	active := enums.StoreStatusActive
	inBox, err := repo.FindWithinBox(context.Background(), box, nil, &active)
	require.NoError(t, err)
	require.Len(t, inBox, 2)
	assert.Equal(t, "ST-201", inBox[0].StoreID)
	assert.Equal(t, "ST-202", inBox[1].StoreID)
}
