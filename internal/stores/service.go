package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/db"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/geo"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByStoreID(ctx context.Context, storeID string) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	List(ctx context.Context, p pagination.Params, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, int64, error)
	FindWithinBox(ctx context.Context, box geo.BoundingBox, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, error)
}

type geocodeResolver interface {
	Resolve(ctx context.Context, input string) (types.Coordinates, error)
}

// Service exposes store CRUD operations.
type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error)
	GetByStoreID(ctx context.Context, storeID string) (*StoreDTO, error)
	List(ctx context.Context, input ListStoresInput) (*StorePageDTO, error)
	Update(ctx context.Context, storeID string, input UpdateStoreInput) (*StoreDTO, error)
	Deactivate(ctx context.Context, storeID string) error
}

type service struct {
	repo     storeRepository
	geocoder geocodeResolver
}

// NewService builds a store service with the provided dependencies.
func NewService(repo storeRepository, geocoder geocodeResolver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if geocoder == nil {
		return nil, fmt.Errorf("geocode resolver required")
	}
	return &service{repo: repo, geocoder: geocoder}, nil
}

// AddressInput is the postal address supplied on creation.
type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// HoursInput carries per-day hours overrides. Nil days are untouched on
// update and default to closed on creation.
type HoursInput struct {
	Mon *string
	Tue *string
	Wed *string
	Thu *string
	Fri *string
	Sat *string
	Sun *string
}

// CreateStoreInput captures the data required to register a store. When
// coordinates are absent the address is geocoded.
type CreateStoreInput struct {
	StoreID   string
	Name      string
	StoreType enums.StoreType
	Status    *enums.StoreStatus
	Latitude  *float64
	Longitude *float64
	Address   AddressInput
	Phone     *string
	Services  []string
	Hours     HoursInput
}

// UpdateStoreInput captures the mutable store fields. Address and
// coordinates are fixed after creation.
type UpdateStoreInput struct {
	Name     *string
	Status   *enums.StoreStatus
	Phone    *string
	Services *[]string
	Hours    HoursInput
}

// ListStoresInput filters and paginates the store listing.
type ListStoresInput struct {
	Page      pagination.Params
	StoreType *enums.StoreType
	Status    *enums.StoreStatus
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, error) {
	storeID := strings.TrimSpace(input.StoreID)
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.StoreType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store type")
	}
	if err := validateAddress(input.Address); err != nil {
		return nil, err
	}

	status := enums.StoreStatusActive
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store status")
		}
		status = *input.Status
	}

	store := &models.Store{
		StoreID:           storeID,
		Name:              name,
		StoreType:         input.StoreType,
		Status:            status,
		AddressStreet:     strings.TrimSpace(input.Address.Street),
		AddressCity:       strings.TrimSpace(input.Address.City),
		AddressState:      strings.TrimSpace(input.Address.State),
		AddressPostalCode: strings.TrimSpace(input.Address.PostalCode),
		AddressCountry:    countryOrDefault(input.Address.Country),
		Phone:             cloneStringPtr(input.Phone),
		Services:          cloneServices(input.Services),
		HoursMon:          HoursClosed,
		HoursTue:          HoursClosed,
		HoursWed:          HoursClosed,
		HoursThu:          HoursClosed,
		HoursFri:          HoursClosed,
		HoursSat:          HoursClosed,
		HoursSun:          HoursClosed,
	}
	if err := applyHours(store, input.Hours); err != nil {
		return nil, err
	}

	if input.Latitude != nil || input.Longitude != nil {
		if input.Latitude == nil || input.Longitude == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be provided together")
		}
		coords := types.Coordinates{Latitude: *input.Latitude, Longitude: *input.Longitude}
		if err := coords.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
		}
		store.Latitude = coords.Latitude
		store.Longitude = coords.Longitude
	} else {
		coords, err := s.geocoder.Resolve(ctx, formatAddress(input.Address))
		if err != nil {
			return nil, err
		}
		store.Latitude = coords.Latitude
		store.Longitude = coords.Longitude
	}

	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "store already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) GetByStoreID(ctx context.Context, storeID string) (*StoreDTO, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context, input ListStoresInput) (*StorePageDTO, error) {
	if input.StoreType != nil && !input.StoreType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store type")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store status")
	}

	params := pagination.Normalize(input.Page)
	stores, total, err := s.repo.List(ctx, params, input.StoreType, input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	page := &StorePageDTO{
		Stores:     make([]StoreDTO, 0, len(stores)),
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: pagination.TotalPages(int(total), params.PageSize),
	}
	for i := range stores {
		page.Stores = append(page.Stores, *FromModel(&stores[i]))
	}
	return page, nil
}

func (s *service) Update(ctx context.Context, storeID string, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		store.Name = name
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid store status")
		}
		store.Status = *input.Status
	}
	if input.Phone != nil {
		store.Phone = cloneStringPtr(input.Phone)
	}
	if input.Services != nil {
		store.Services = cloneServices(*input.Services)
	}
	if err := applyHours(store, input.Hours); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) Deactivate(ctx context.Context, storeID string) error {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return err
	}
	if store.Status == enums.StoreStatusInactive {
		return nil
	}
	store.Status = enums.StoreStatusInactive
	if err := s.repo.Update(ctx, store); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate store")
	}
	return nil
}

func (s *service) loadStore(ctx context.Context, storeID string) (*models.Store, error) {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store_id is required")
	}
	store, err := s.repo.FindByStoreID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func validateAddress(addr AddressInput) error {
	if strings.TrimSpace(addr.Street) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address street is required")
	}
	if strings.TrimSpace(addr.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address city is required")
	}
	if strings.TrimSpace(addr.State) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address state is required")
	}
	if strings.TrimSpace(addr.PostalCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address postal code is required")
	}
	return nil
}

func formatAddress(addr AddressInput) string {
	parts := []string{
		strings.TrimSpace(addr.Street),
		strings.TrimSpace(addr.City),
		strings.TrimSpace(addr.State),
		strings.TrimSpace(addr.PostalCode),
		countryOrDefault(addr.Country),
	}
	return strings.Join(parts, ", ")
}

func countryOrDefault(country string) string {
	country = strings.TrimSpace(country)
	if country == "" {
		return "US"
	}
	return country
}

func applyHours(store *models.Store, hours HoursInput) error {
	fields := []struct {
		value *string
		dst   *string
	}{
		{hours.Mon, &store.HoursMon},
		{hours.Tue, &store.HoursTue},
		{hours.Wed, &store.HoursWed},
		{hours.Thu, &store.HoursThu},
		{hours.Fri, &store.HoursFri},
		{hours.Sat, &store.HoursSat},
		{hours.Sun, &store.HoursSun},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		normalized := strings.ToLower(strings.TrimSpace(*f.value))
		if err := ValidateHours(normalized); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid hours")
		}
		if normalized == "" {
			normalized = HoursClosed
		}
		*f.dst = normalized
	}
	return nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}

func cloneServices(values []string) pq.StringArray {
	res := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		res = append(res, v)
	}
	return res
}
