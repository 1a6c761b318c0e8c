package stores

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/geo"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

type stubStoreRepo struct {
	store     *models.Store
	findErr   error
	createErr error
	updateErr error

	created *models.Store
	updated *models.Store
	listed  []models.Store
	total   int64
}

func (s *stubStoreRepo) Create(ctx context.Context, store *models.Store) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = store
	return nil
}

func (s *stubStoreRepo) FindByStoreID(ctx context.Context, storeID string) (*models.Store, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.store == nil || s.store.StoreID != storeID {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *s.store
	return &cpy, nil
}

func (s *stubStoreRepo) Update(ctx context.Context, store *models.Store) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = store
	return nil
}

func (s *stubStoreRepo) List(ctx context.Context, p pagination.Params, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, int64, error) {
	return s.listed, s.total, nil
}

func (s *stubStoreRepo) FindWithinBox(ctx context.Context, box geo.BoundingBox, storeType *enums.StoreType, status *enums.StoreStatus) ([]models.Store, error) {
	return s.listed, nil
}

type stubGeocoder struct {
	coords types.Coordinates
	err    error
	calls  int
	input  string
}

func (s *stubGeocoder) Resolve(ctx context.Context, input string) (types.Coordinates, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return types.Coordinates{}, s.err
	}
	return s.coords, nil
}

func baseStore() *models.Store {
	phone := "+1-555-0100"
	return &models.Store{
		StoreID:           "ST-001",
		Name:              "Downtown Market",
		StoreType:         enums.StoreTypeRegular,
		Status:            enums.StoreStatusActive,
		Latitude:          40.7128,
		Longitude:         -74.006,
		AddressStreet:     "123 Main St",
		AddressCity:       "New York",
		AddressState:      "NY",
		AddressPostalCode: "10001",
		AddressCountry:    "US",
		Phone:             &phone,
		Services:          []string{"pickup", "delivery"},
		HoursMon:          "09:00-17:00",
		HoursTue:          "09:00-17:00",
		HoursWed:          "closed",
		HoursThu:          "09:00-17:00",
		HoursFri:          "09:00-17:00",
		HoursSat:          "10:00-14:00",
		HoursSun:          "closed",
	}
}

func baseCreateInput() CreateStoreInput {
	lat := 40.7128
	lon := -74.006
	return CreateStoreInput{
		StoreID:   "ST-001",
		Name:      "Downtown Market",
		StoreType: enums.StoreTypeRegular,
		Latitude:  &lat,
		Longitude: &lon,
		Address: AddressInput{
			Street:     "123 Main St",
			City:       "New York",
			State:      "NY",
			PostalCode: "10001",
		},
		Services: []string{"pickup"},
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubGeocoder{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubStoreRepo{}, nil); err == nil {
		t.Fatal("expected error creating service without geocoder")
	}
}

func TestServiceCreateWithCoordinates(t *testing.T) {
	repo := &stubStoreRepo{}
	geocoder := &stubGeocoder{}
	svc, err := NewService(repo, geocoder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), baseCreateInput())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatalf("expected no geocode calls, got %d", geocoder.calls)
	}
	if dto.StoreID != "ST-001" {
		t.Fatalf("expected store id ST-001 got %s", dto.StoreID)
	}
	if dto.Status != enums.StoreStatusActive {
		t.Fatalf("expected default status active got %s", dto.Status)
	}
	if repo.created == nil || repo.created.AddressCountry != "US" {
		t.Fatal("expected country default US on created row")
	}
	if repo.created.HoursWed != HoursClosed {
		t.Fatalf("expected unset hours to default closed, got %q", repo.created.HoursWed)
	}
}

func TestServiceCreateGeocodesWhenCoordinatesMissing(t *testing.T) {
	repo := &stubStoreRepo{}
	geocoder := &stubGeocoder{coords: types.Coordinates{Latitude: 34.05, Longitude: -118.24}}
	svc, err := NewService(repo, geocoder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := baseCreateInput()
	input.Latitude = nil
	input.Longitude = nil

	dto, err := svc.Create(context.Background(), input)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if geocoder.calls != 1 {
		t.Fatalf("expected one geocode call, got %d", geocoder.calls)
	}
	if geocoder.input != "123 Main St, New York, NY, 10001, US" {
		t.Fatalf("unexpected geocode input %q", geocoder.input)
	}
	if dto.Latitude != 34.05 || dto.Longitude != -118.24 {
		t.Fatalf("expected geocoded coordinates, got %f,%f", dto.Latitude, dto.Longitude)
	}
}

func TestServiceCreateGeocodeFailurePropagates(t *testing.T) {
	geocoder := &stubGeocoder{err: pkgerrors.New(pkgerrors.CodeDependency, "geocoding provider unavailable")}
	svc, err := NewService(&stubStoreRepo{}, geocoder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	input := baseCreateInput()
	input.Latitude = nil
	input.Longitude = nil

	_, err = svc.Create(context.Background(), input)
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{}, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CreateStoreInput)
	}{
		{"missing store id", func(in *CreateStoreInput) { in.StoreID = " " }},
		{"missing name", func(in *CreateStoreInput) { in.Name = "" }},
		{"bad store type", func(in *CreateStoreInput) { in.StoreType = "warehouse" }},
		{"missing street", func(in *CreateStoreInput) { in.Address.Street = "" }},
		{"missing postal code", func(in *CreateStoreInput) { in.Address.PostalCode = "" }},
		{"lone latitude", func(in *CreateStoreInput) { in.Longitude = nil }},
		{"latitude out of range", func(in *CreateStoreInput) { bad := 91.0; in.Latitude = &bad }},
		{"bad hours", func(in *CreateStoreInput) { bad := "9am-5pm"; in.Hours.Mon = &bad }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseCreateInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			var coded *pkgerrors.Error
			if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceCreateDuplicateStoreID(t *testing.T) {
	repo := &stubStoreRepo{createErr: fmt.Errorf(`duplicate key value violates unique constraint "stores_pkey"`)}
	svc, err := NewService(repo, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Create(context.Background(), baseCreateInput())
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceGetByStoreIDNotFound(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{}, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetByStoreID(context.Background(), "missing")
	var coded *pkgerrors.Error
	if !errors.As(err, &coded) || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceUpdateMutableFieldsOnly(t *testing.T) {
	repo := &stubStoreRepo{store: baseStore()}
	svc, err := NewService(repo, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Uptown Market"
	status := enums.StoreStatusTemporarilyClosed
	services := []string{"pickup"}
	sun := "11:00-16:00"
	dto, err := svc.Update(context.Background(), "ST-001", UpdateStoreInput{
		Name:     &name,
		Status:   &status,
		Services: &services,
		Hours:    HoursInput{Sun: &sun},
	})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != name {
		t.Fatalf("expected name %q got %q", name, dto.Name)
	}
	if dto.Status != status {
		t.Fatalf("expected status %s got %s", status, dto.Status)
	}
	if dto.Hours.Sun != sun {
		t.Fatalf("expected sunday hours %q got %q", sun, dto.Hours.Sun)
	}
	// Untouched fields keep their stored values.
	if dto.Latitude != 40.7128 || dto.Address.Street != "123 Main St" {
		t.Fatal("expected address and coordinates to be unchanged")
	}
	if repo.updated == nil {
		t.Fatal("expected repository update")
	}
}

func TestServiceDeactivateIdempotent(t *testing.T) {
	store := baseStore()
	store.Status = enums.StoreStatusInactive
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Deactivate(context.Background(), "ST-001"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.updated != nil {
		t.Fatal("expected no update for already-inactive store")
	}

	repo.store = baseStore()
	if err := svc.Deactivate(context.Background(), "ST-001"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.updated == nil || repo.updated.Status != enums.StoreStatusInactive {
		t.Fatal("expected store to be marked inactive")
	}
}

func TestServiceListPaginates(t *testing.T) {
	repo := &stubStoreRepo{listed: []models.Store{*baseStore()}, total: 35}
	svc, err := NewService(repo, &stubGeocoder{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	page, err := svc.List(context.Background(), ListStoresInput{Page: pagination.Params{Page: 2, PageSize: 10}})
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if page.Page != 2 || page.PageSize != 10 {
		t.Fatalf("unexpected page meta %d/%d", page.Page, page.PageSize)
	}
	if page.Total != 35 || page.TotalPages != 4 {
		t.Fatalf("unexpected totals %d/%d", page.Total, page.TotalPages)
	}
	if len(page.Stores) != 1 || page.Stores[0].StoreID != "ST-001" {
		t.Fatal("expected the stubbed store row")
	}
}
