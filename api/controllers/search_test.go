package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mariasandoval/storelocator-backend/internal/search"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
)

type stubSearchService struct {
	page  *search.ResultPageDTO
	err   error
	input *search.Input
}

func (s *stubSearchService) Search(_ context.Context, input search.Input) (*search.ResultPageDTO, error) {
	s.input = &input
	return s.page, s.err
}

func TestStoreSearchByCoordinates(t *testing.T) {
	svc := &stubSearchService{page: &search.ResultPageDTO{Page: 1, PageSize: 10}}
	handler := StoreSearch(svc, nil)

	body := []byte(`{"location":{"latitude":40.7128,"longitude":-74.0060},"filters":{"radius_miles":5,"services":["pickup"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input == nil || svc.input.Location == nil {
		t.Fatal("expected location input")
	}
	if svc.input.Location.Latitude != 40.7128 {
		t.Fatalf("unexpected latitude %f", svc.input.Location.Latitude)
	}
	if svc.input.Filters.RadiusMiles != 5 {
		t.Fatalf("unexpected radius %f", svc.input.Filters.RadiusMiles)
	}
}

func TestStoreSearchByAddress(t *testing.T) {
	svc := &stubSearchService{page: &search.ResultPageDTO{Page: 1, PageSize: 10}}
	handler := StoreSearch(svc, nil)

	body := []byte(`{"address":"350 Fifth Ave, New York, NY","filters":{"store_type":"flagship"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.input == nil || svc.input.Address == "" || svc.input.Location != nil {
		t.Fatalf("expected address input, got %+v", svc.input)
	}
	if svc.input.Filters.StoreType == nil || *svc.input.Filters.StoreType != enums.StoreTypeFlagship {
		t.Fatalf("expected flagship filter, got %+v", svc.input.Filters.StoreType)
	}
}

func TestStoreSearchRejectsHalfCoordinates(t *testing.T) {
	svc := &stubSearchService{}
	handler := StoreSearch(svc, nil)

	body := []byte(`{"location":{"latitude":40.7128}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if svc.input != nil {
		t.Fatal("service must not be called")
	}
}

func TestStoreSearchRejectsUnknownStoreType(t *testing.T) {
	handler := StoreSearch(&stubSearchService{}, nil)

	body := []byte(`{"address":"somewhere","filters":{"store_type":"warehouse"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestStoreSearchPropagatesGeocodeFailure(t *testing.T) {
	svc := &stubSearchService{err: pkgerrors.New(pkgerrors.CodeNotFound, "address could not be resolved")}
	handler := StoreSearch(svc, nil)

	body := []byte(`{"address":"nowhere at all"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/stores/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}
