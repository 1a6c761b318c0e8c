package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
)

type stubStoreService struct {
	dto  *stores.StoreDTO
	page *stores.StorePageDTO
	err  error

	createInput *stores.CreateStoreInput
	updateInput *stores.UpdateStoreInput
	deactivated string
}

func (s *stubStoreService) Create(_ context.Context, input stores.CreateStoreInput) (*stores.StoreDTO, error) {
	s.createInput = &input
	return s.dto, s.err
}

func (s *stubStoreService) GetByStoreID(_ context.Context, storeID string) (*stores.StoreDTO, error) {
	return s.dto, s.err
}

func (s *stubStoreService) List(_ context.Context, _ stores.ListStoresInput) (*stores.StorePageDTO, error) {
	return s.page, s.err
}

func (s *stubStoreService) Update(_ context.Context, _ string, input stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	s.updateInput = &input
	return s.dto, s.err
}

func (s *stubStoreService) Deactivate(_ context.Context, storeID string) error {
	s.deactivated = storeID
	return s.err
}

func sampleStoreDTO() *stores.StoreDTO {
	return &stores.StoreDTO{
		StoreID:   "ST-001",
		Name:      "Downtown Market",
		StoreType: enums.StoreTypeRegular,
		Status:    enums.StoreStatusActive,
		Latitude:  40.7128,
		Longitude: -74.0060,
		Address: stores.AddressDTO{
			Street:     "123 Main St",
			City:       "New York",
			State:      "NY",
			PostalCode: "10001",
			Country:    "US",
		},
		Services:  []string{"pickup"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func storesTestRouter(svc stores.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/stores", StoreCreate(svc, nil))
	r.Get("/stores", StoreList(svc, nil))
	r.Get("/stores/{storeID}", StoreGet(svc, nil))
	r.Patch("/stores/{storeID}", StoreUpdate(svc, nil))
	r.Delete("/stores/{storeID}", StoreDeactivate(svc, nil))
	return r
}

func TestStoreCreateSuccess(t *testing.T) {
	svc := &stubStoreService{dto: sampleStoreDTO()}
	router := storesTestRouter(svc)

	payload := map[string]any{
		"store_id":   "ST-001",
		"name":       "Downtown Market",
		"store_type": "regular",
		"latitude":   40.7128,
		"longitude":  -74.0060,
		"services":   []string{"pickup"},
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/stores", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.createInput == nil {
		t.Fatal("expected create call")
	}
	if svc.createInput.StoreType != enums.StoreTypeRegular {
		t.Fatalf("unexpected store type %s", svc.createInput.StoreType)
	}
	var got stores.StoreDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.StoreID != "ST-001" {
		t.Fatalf("unexpected store id %s", got.StoreID)
	}
}

func TestStoreCreateRejectsUnknownType(t *testing.T) {
	svc := &stubStoreService{dto: sampleStoreDTO()}
	router := storesTestRouter(svc)

	body := []byte(`{"store_id":"ST-001","name":"X","store_type":"warehouse"}`)
	req := httptest.NewRequest(http.MethodPost, "/stores", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if svc.createInput != nil {
		t.Fatal("service must not be called")
	}
}

func TestStoreCreateRejectsMissingFields(t *testing.T) {
	router := storesTestRouter(&stubStoreService{})

	req := httptest.NewRequest(http.MethodPost, "/stores", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	svc := &stubStoreService{err: pkgerrors.New(pkgerrors.CodeNotFound, "store not found")}
	router := storesTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/stores/ST-404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestStoreListFiltersParsed(t *testing.T) {
	svc := &stubStoreService{page: &stores.StorePageDTO{Stores: []stores.StoreDTO{*sampleStoreDTO()}, Page: 1, PageSize: 10, Total: 1, TotalPages: 1}}
	router := storesTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/stores?store_type=regular&status=active&page=1&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var got stores.StorePageDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Total != 1 || len(got.Stores) != 1 {
		t.Fatalf("unexpected page %+v", got)
	}
}

func TestStoreListRejectsBadStatus(t *testing.T) {
	router := storesTestRouter(&stubStoreService{})

	req := httptest.NewRequest(http.MethodGet, "/stores?status=paused", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestStoreUpdatePassesMutableFields(t *testing.T) {
	svc := &stubStoreService{dto: sampleStoreDTO()}
	router := storesTestRouter(svc)

	body := []byte(`{"name":"Renamed","status":"inactive","services":["delivery"]}`)
	req := httptest.NewRequest(http.MethodPatch, "/stores/ST-001", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.updateInput == nil || svc.updateInput.Name == nil || *svc.updateInput.Name != "Renamed" {
		t.Fatalf("unexpected update input %+v", svc.updateInput)
	}
	if svc.updateInput.Status == nil || *svc.updateInput.Status != enums.StoreStatusInactive {
		t.Fatalf("expected inactive status, got %+v", svc.updateInput.Status)
	}
}

func TestStoreDeactivateReturnsEmptyBody(t *testing.T) {
	svc := &stubStoreService{}
	router := storesTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/stores/ST-001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.deactivated != "ST-001" {
		t.Fatalf("expected deactivate call, got %q", svc.deactivated)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rec.Body.String())
	}
}
